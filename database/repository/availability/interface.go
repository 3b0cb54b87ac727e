package availabilityRepo

import (
	"context"

	"tutorhub/models"
)

// Repository stores each tutor's published open slots per date.
// At most one row may exist per (tutorId, date, slotId); the mongo
// implementation enforces this with a unique index.
type Repository interface {
	// ReplaceDay swaps the tutor's full slot set for the date in one
	// transaction (add missing, remove unselected) and returns the new rows.
	ReplaceDay(ctx context.Context, tutorID, date string, slotIDs []string) ([]models.Availability, error)
	// ListByDate returns the tutor's published slots for a single date.
	ListByDate(ctx context.Context, tutorID, date string) ([]models.Availability, error)
	// ListRange returns published slots for dates in [from, to], inclusive.
	ListRange(ctx context.Context, tutorID, from, to string) ([]models.Availability, error)
	// Exists reports whether the tutor has published the slot on the date.
	Exists(ctx context.Context, tutorID, date, slotID string) (bool, error)
}
