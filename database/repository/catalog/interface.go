package catalogRepo

import (
	"context"
	"errors"

	"tutorhub/models"
)

// ErrNotFound is returned when no slot matches the requested id.
var ErrNotFound = errors.New("timeslot not found")

// Repository is the read-mostly store of canonical daily time windows.
// The catalog is seeded once at startup and shared by every tutor.
type Repository interface {
	// Seed upserts the given slots; safe to call on every boot.
	Seed(ctx context.Context, slots []models.TimeSlot) error
	// List returns all catalog slots ordered by start time.
	List(ctx context.Context) ([]models.TimeSlot, error)
	// GetByID returns a single slot or ErrNotFound.
	GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error)
}
