package models

// BookingEvent names a state transition worth telling the parties about.
type BookingEvent string

const (
	EventBookingCreated   BookingEvent = "booking_created"
	EventBookingConfirmed BookingEvent = "booking_confirmed"
	EventBookingApproved  BookingEvent = "booking_approved"
	EventBookingRejected  BookingEvent = "booking_rejected"
	EventBookingCancelled BookingEvent = "booking_cancelled"
	EventBookingCompleted BookingEvent = "booking_completed"
)

// BookingNotification is the payload queued for asynchronous delivery.
type BookingNotification struct {
	BookingID string       `json:"bookingId"`
	StudentID string       `json:"studentId"`
	TutorID   string       `json:"tutorId"`
	Event     BookingEvent `json:"event"`
	Date      string       `json:"date"`
	SlotID    string       `json:"slotId"`
	Subject   string       `json:"subject"`
}
