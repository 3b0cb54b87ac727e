package payment

import (
	"context"

	"tutorhub/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Processor is the outbound payment collaborator. The engine only records a
// payment reference for approved non-combo bookings; capture and refunds
// live outside this service.
type Processor interface {
	CreateBookingIntent(ctx context.Context, b *models.Booking)
}

// StripeProcessor creates a PaymentIntent per approved booking so the client
// can settle out of band. Failures are logged and swallowed; a missing
// intent never rolls back an approval.
type StripeProcessor struct {
	Logger *zap.Logger
}

func NewStripeProcessor(logger *zap.Logger) *StripeProcessor {
	return &StripeProcessor{Logger: logger}
}

func (p *StripeProcessor) CreateBookingIntent(ctx context.Context, b *models.Booking) {
	if b.Price <= 0 {
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(b.Price)),
		Currency: stripe.String(string(stripe.CurrencyVND)),
	}
	params.AddMetadata("bookingId", b.ID)
	params.AddMetadata("studentId", b.StudentID)
	params.AddMetadata("tutorId", b.TutorID)

	intent, err := paymentintent.New(params)
	if err != nil {
		p.Logger.Error("failed to create payment intent",
			zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	p.Logger.Info("payment intent created",
		zap.String("bookingId", b.ID), zap.String("intentId", intent.ID))
}
