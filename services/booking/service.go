package booking

import (
	"context"
	"fmt"

	bookingRepo "tutorhub/database/repository/booking"
	"tutorhub/models"
	"tutorhub/services"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.FindByID(ctx, id)
	if err != nil {
		if err == bookingRepo.ErrNotFound {
			return nil, services.NewNotFoundError("booking %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return b, nil
}

func (s *DefaultBookingService) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	if studentID == "" {
		return nil, services.NewValidationError("student id is required")
	}
	return s.Bookings.ListByStudent(ctx, studentID)
}

func (s *DefaultBookingService) ListByTutor(ctx context.Context, tutorID string) ([]models.Booking, error) {
	if tutorID == "" {
		return nil, services.NewValidationError("tutor id is required")
	}
	return s.Bookings.ListByTutor(ctx, tutorID)
}

// notify fires a lifecycle event at the notification port. Delivery is the
// port's problem; a transition never waits on it or fails because of it.
func (s *DefaultBookingService) notify(ctx context.Context, b *models.Booking, event models.BookingEvent) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.NotifyBookingEvent(ctx, b, event)
}

// restoreCombo credits back the single unit debited at reservation time.
// Called on every rejected/cancelled transition of a combo-backed booking;
// those transitions only happen before approval, so the pairing in both
// directions is exact.
func (s *DefaultBookingService) restoreCombo(ctx context.Context, b *models.Booking) {
	if b.ComboOrderID == "" {
		return
	}
	if err := s.Credits.Credit(ctx, b.StudentID, b.ComboOrderID, 1); err != nil {
		// The transition already landed; flag the orphaned debit for
		// reconciliation instead of failing the request.
		s.Logger.Error("failed to restore combo credit",
			zap.String("bookingId", b.ID),
			zap.String("comboOrderId", b.ComboOrderID),
			zap.Error(err))
	}
}
