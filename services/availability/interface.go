package availability

import (
	"context"
	"time"

	availabilityRepo "tutorhub/database/repository/availability"
	bookingRepo "tutorhub/database/repository/booking"
	catalogRepo "tutorhub/database/repository/catalog"
	"tutorhub/models"
	"tutorhub/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service owns each tutor's published open slots. Writes are whole-day set
// reconciliations, never per-slot toggles, so a tutor's day changes
// atomically or not at all.
type Service interface {
	// SetAvailability replaces the tutor's slot set for the date. Retracting
	// a slot that an active booking occupies fails and leaves the day
	// untouched.
	SetAvailability(ctx context.Context, tutorID, date string, slotIDs []string) ([]models.Availability, error)
	// ListAvailability returns the tutor's published slots for [from, to].
	ListAvailability(ctx context.Context, tutorID, from, to string) ([]models.Availability, error)
	// ListCatalog exposes the shared slot catalog.
	ListCatalog(ctx context.Context) ([]models.TimeSlot, error)
}

// DefaultAvailabilityService implements Service.
type DefaultAvailabilityService struct {
	Avail    availabilityRepo.Repository
	Bookings bookingRepo.Repository
	Catalog  catalogRepo.Repository
	Locker   utils.KeyLocker
	Cache    *redis.Client // optional, shared with the booking engine's grid cache
	Logger   *zap.Logger
	LockTTL  time.Duration
}
