package notification

import (
	"context"
	"encoding/json"

	"tutorhub/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeBookingNotify is the asynq task type for queued booking notifications.
const TypeBookingNotify = "notify:booking"

// AsynqNotifier enqueues booking events for the background worker, which
// delivers them over FCM. Enqueue failures are logged and swallowed.
type AsynqNotifier struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewAsynqNotifier(client *asynq.Client, logger *zap.Logger) *AsynqNotifier {
	return &AsynqNotifier{Client: client, Logger: logger}
}

func (n *AsynqNotifier) NotifyBookingEvent(ctx context.Context, b *models.Booking, event models.BookingEvent) {
	payload := models.BookingNotification{
		BookingID: b.ID,
		StudentID: b.StudentID,
		TutorID:   b.TutorID,
		Event:     event,
		Date:      b.Date,
		SlotID:    b.SlotID,
		Subject:   b.Subject,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		n.Logger.Error("failed to marshal booking notification",
			zap.String("bookingId", b.ID), zap.Error(err))
		return
	}

	task := asynq.NewTask(TypeBookingNotify, data)
	if _, err := n.Client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		n.Logger.Error("failed to enqueue booking notification",
			zap.String("bookingId", b.ID), zap.String("event", string(event)), zap.Error(err))
	}
}
