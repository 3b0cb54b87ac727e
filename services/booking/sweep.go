package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "tutorhub/database/repository/booking"
	"tutorhub/models"

	"go.uber.org/zap"
)

// SweepCompletion moves approved bookings whose date+end time has passed to
// completed. Each advance is a CAS, so concurrent sweeps cannot double-apply
// a transition; with no eligible bookings the sweep is a no-op.
func (s *DefaultBookingService) SweepCompletion(ctx context.Context, now time.Time) (int, error) {
	due, err := s.Bookings.ListApprovedEndedBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due bookings: %w", err)
	}

	completed := 0
	for i := range due {
		b := due[i]
		updated, err := s.Bookings.UpdateStatus(ctx, b.ID, models.StatusApproved, models.StatusCompleted, nil)
		if err != nil {
			// Lost a race with another sweep or a concurrent transition;
			// the booking is no longer ours to advance.
			if err == bookingRepo.ErrStaleStatus || err == bookingRepo.ErrNotFound {
				continue
			}
			return completed, fmt.Errorf("failed to complete booking %s: %w", b.ID, err)
		}
		completed++
		s.notify(ctx, updated, models.EventBookingCompleted)
	}

	if completed > 0 {
		s.Logger.Info("completion sweep finished", zap.Int("completed", completed))
	}
	return completed, nil
}
