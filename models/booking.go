package models

import "time"

// BookingStatus is the closed set of lifecycle states for a booking.
// Transitions only move forward along:
//
//	pending -> tutor_confirmed -> approved -> completed
//	pending|tutor_confirmed    -> rejected | cancelled
type BookingStatus string

const (
	StatusPending        BookingStatus = "pending"
	StatusTutorConfirmed BookingStatus = "tutor_confirmed"
	StatusApproved       BookingStatus = "approved"
	StatusCompleted      BookingStatus = "completed"
	StatusRejected       BookingStatus = "rejected"
	StatusCancelled      BookingStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// Active reports whether the booking still occupies its (tutor, date, slot) key.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusTutorConfirmed || s == StatusApproved
}

// BookingMode distinguishes online lessons from in-person ones.
type BookingMode string

const (
	ModeOnline  BookingMode = "online"
	ModeOffline BookingMode = "offline"
)

// Booking is one student's reservation of a tutor's slot on a date.
// Rows are never deleted; terminal states are kept for history.
type Booking struct {
	ID           string        `bson:"id" json:"id"`
	StudentID    string        `bson:"student_id" json:"studentId"`
	TutorID      string        `bson:"tutor_id" json:"tutorId"`
	Date         string        `bson:"date" json:"date"` // "YYYY-MM-DD"
	SlotID       string        `bson:"slot_id" json:"slotId"`
	Start        int           `bson:"start" json:"start"` // minutes from midnight
	End          int           `bson:"end" json:"end"`
	Subject      string        `bson:"subject" json:"subject"`
	Mode         BookingMode   `bson:"mode" json:"mode"`
	Location     string        `bson:"location,omitempty" json:"location,omitempty"`
	Note         string        `bson:"note,omitempty" json:"note,omitempty"`
	Status       BookingStatus `bson:"status" json:"status"`
	Price        float64       `bson:"price" json:"price"`
	MeetLink     string        `bson:"meet_link,omitempty" json:"meetLink,omitempty"`
	ComboOrderID string        `bson:"combo_order_id,omitempty" json:"comboOrderId,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}

// EndsBefore reports whether the booking's date+end time lies before t.
func (b Booking) EndsBefore(t time.Time) bool {
	day, err := time.ParseInLocation("2006-01-02", b.Date, t.Location())
	if err != nil {
		return false
	}
	return day.Add(time.Duration(b.End) * time.Minute).Before(t)
}
