package bookingRepo

import (
	"context"
	"errors"
	"time"

	"tutorhub/models"
)

var (
	// ErrNotFound is returned when no booking matches the requested id.
	ErrNotFound = errors.New("booking not found")
	// ErrKeyTaken is returned by Insert when an active booking already
	// occupies the (tutor, date, slot) key.
	ErrKeyTaken = errors.New("slot already taken by an active booking")
	// ErrStaleStatus is returned by UpdateStatus when the booking exists but
	// its status no longer matches the expected value.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)

// Repository stores bookings. Rows are never deleted; a terminal status is
// the end of the road. The mongo implementation backs the mutual-exclusion
// guarantee with a partial unique index over active statuses.
type Repository interface {
	// Insert persists a new booking, failing with ErrKeyTaken if an active
	// booking already holds the same (tutor, date, slot) key.
	Insert(ctx context.Context, b *models.Booking) error
	// FindByID returns the booking or ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	// FindActiveByKey returns the active booking occupying the key, or
	// ErrNotFound when the key is free.
	FindActiveByKey(ctx context.Context, tutorID, date, slotID string) (*models.Booking, error)
	// ListActiveByTutorDate returns all active bookings for the tutor's day.
	ListActiveByTutorDate(ctx context.Context, tutorID, date string) ([]models.Booking, error)
	// ListByStudent and ListByTutor include terminal bookings (history).
	ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	ListByTutor(ctx context.Context, tutorID string) ([]models.Booking, error)
	// UpdateStatus applies a compare-and-set transition: the update only
	// lands if the stored status equals from. Extra fields in set are
	// written together with the status. Returns the updated booking,
	// ErrNotFound, or ErrStaleStatus.
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, set map[string]interface{}) (*models.Booking, error)
	// ListApprovedEndedBefore returns approved bookings whose date+end time
	// lies before t. Used by the completion sweep.
	ListApprovedEndedBefore(ctx context.Context, t time.Time) ([]models.Booking, error)
}
