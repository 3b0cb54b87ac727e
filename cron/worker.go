package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tutorhub/config"
	"tutorhub/models"
	"tutorhub/services/booking"
	"tutorhub/services/notification"
	"tutorhub/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeBookingSweep is the asynq task type for the periodic completion sweep.
const TypeBookingSweep = "booking:sweep"

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewQueueClient returns the asynq client used to enqueue notification tasks.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// InitWorker runs the asynq server and the periodic sweep scheduler in the
// background. The worker owns two task types: the completion sweep and
// queued booking notifications.
func InitWorker(bookingSvc booking.Service, logger *zap.Logger) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingSweep, handleSweepTask(bookingSvc, logger))
	mux.HandleFunc(notification.TypeBookingNotify, handleNotifyTask(logger))

	go func() {
		log.Println("[Worker] starting async worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] failed to start worker: %v", err)
		}
	}()

	scheduler := asynq.NewScheduler(redisOpts(), nil)
	cronspec := fmt.Sprintf("@every %dm", config.AppConfig.SweepIntervalMin)
	if _, err := scheduler.Register(cronspec, asynq.NewTask(TypeBookingSweep, nil)); err != nil {
		log.Fatalf("[Worker] failed to register sweep schedule: %v", err)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[Worker] failed to start scheduler: %v", err)
		}
	}()
}

func handleSweepTask(bookingSvc booking.Service, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := bookingSvc.SweepCompletion(ctx, time.Now())
		if err != nil {
			logger.Error("completion sweep failed", zap.Error(err))
			return err
		}
		if n > 0 {
			logger.Info("completion sweep advanced bookings", zap.Int("completed", n))
		}
		return nil
	}
}

// handleNotifyTask delivers a queued booking event to both parties over FCM
// topics. Delivery failures are logged; the transition they announce has
// already committed and is never rolled back.
func handleNotifyTask(logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BookingNotification
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid notification payload", zap.Error(err))
			return err
		}

		if utils.FCMClient == nil {
			logger.Warn("FCM client not initialized, dropping notification",
				zap.String("bookingId", p.BookingID))
			return nil
		}

		data := map[string]string{
			"bookingId": p.BookingID,
			"event":     string(p.Event),
			"date":      p.Date,
			"slotId":    p.SlotID,
			"subject":   p.Subject,
		}
		for _, userID := range []string{p.StudentID, p.TutorID} {
			msg := &messaging.Message{
				Topic: "user-" + userID,
				Notification: &messaging.Notification{
					Title: notificationTitle(p.Event),
					Body:  fmt.Sprintf("%s on %s", p.Subject, p.Date),
				},
				Data: data,
			}
			if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
				logger.Error("failed to send FCM message",
					zap.String("bookingId", p.BookingID),
					zap.String("userId", userID),
					zap.Error(err))
			}
		}
		return nil
	}
}

func notificationTitle(event models.BookingEvent) string {
	switch event {
	case models.EventBookingCreated:
		return "New booking request"
	case models.EventBookingConfirmed:
		return "Your tutor confirmed the booking"
	case models.EventBookingApproved:
		return "Booking approved"
	case models.EventBookingRejected:
		return "Booking rejected"
	case models.EventBookingCancelled:
		return "Booking cancelled"
	case models.EventBookingCompleted:
		return "Lesson completed"
	default:
		return "Booking update"
	}
}
