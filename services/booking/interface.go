package booking

import (
	"context"
	"time"

	availabilityRepo "tutorhub/database/repository/availability"
	bookingRepo "tutorhub/database/repository/booking"
	catalogRepo "tutorhub/database/repository/catalog"
	creditRepo "tutorhub/database/repository/credit"
	"tutorhub/models"
	"tutorhub/services/notification"
	"tutorhub/services/payment"
	"tutorhub/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service is the booking engine: slot conflict resolution, race-free
// reservation, and the three-party approval state machine.
type Service interface {
	// SlotStatus classifies every catalog slot of the tutor's day as
	// available, unavailable or taken.
	SlotStatus(ctx context.Context, tutorID, date string) ([]models.SlotStatusEntry, error)
	// Reserve attempts to book a (tutor, date, slot) key for a student.
	// Exactly one of any set of concurrent attempts on the same key wins.
	Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error)
	// TutorConfirm moves a pending booking to tutor_confirmed or rejected.
	TutorConfirm(ctx context.Context, req ConfirmRequest) (*models.Booking, error)
	// AdminApprove moves a tutor_confirmed booking to approved or rejected.
	AdminApprove(ctx context.Context, req ApproveRequest) (*models.Booking, error)
	// Cancel ends a pending or tutor_confirmed booking at the request of
	// its student or tutor.
	Cancel(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	// SweepCompletion advances approved bookings whose end time has passed
	// to completed, returning the number advanced. Idempotent.
	SweepCompletion(ctx context.Context, now time.Time) (int, error)
	// GetBooking returns one booking, terminal or not.
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	// ListByStudent and ListByTutor include terminal bookings (history).
	ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	ListByTutor(ctx context.Context, tutorID string) ([]models.Booking, error)
}

// DefaultBookingService implements Service.
type DefaultBookingService struct {
	Bookings bookingRepo.Repository
	Avail    availabilityRepo.Repository
	Catalog  catalogRepo.Repository
	Credits  creditRepo.Repository
	Locker   utils.KeyLocker
	Notifier notification.Service
	Payments payment.Processor
	Cache    *redis.Client // optional slot-grid cache
	Logger   *zap.Logger

	LockTTL   time.Duration
	GridTTL   time.Duration
	BasePrice float64
}
