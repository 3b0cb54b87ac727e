package notification

import (
	"context"

	"tutorhub/models"
)

// Service is the one-way effect sink for booking lifecycle events. The
// booking engine never blocks on delivery and never fails a transition
// because a notification could not be sent.
type Service interface {
	NotifyBookingEvent(ctx context.Context, b *models.Booking, event models.BookingEvent)
}
