package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "tutorhub/database/repository/booking"
	catalogRepo "tutorhub/database/repository/catalog"
	creditRepo "tutorhub/database/repository/credit"
	"tutorhub/models"
	"tutorhub/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReserveRequest carries everything needed to attempt a reservation.
type ReserveRequest struct {
	StudentID    string
	TutorID      string
	Date         string
	SlotID       string
	Subject      string
	Mode         models.BookingMode
	Location     string
	Note         string
	ComboOrderID string
}

func (req ReserveRequest) validate() error {
	switch {
	case req.StudentID == "":
		return services.NewValidationError("student id is required")
	case req.TutorID == "":
		return services.NewValidationError("tutor id is required")
	case req.SlotID == "":
		return services.NewValidationError("slot is required")
	case req.Subject == "":
		return services.NewValidationError("subject is required")
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return services.NewValidationError("invalid date %q, want YYYY-MM-DD", req.Date)
	}
	switch req.Mode {
	case models.ModeOnline:
	case models.ModeOffline:
		if req.Location == "" {
			return services.NewValidationError("location is required for offline bookings")
		}
	default:
		return services.NewValidationError("mode must be online or offline")
	}
	return nil
}

func reserveKey(tutorID, date, slotID string) string {
	return fmt.Sprintf("reserve:%s:%s:%s", tutorID, date, slotID)
}

// Reserve serializes all attempts on a (tutor, date, slot) key behind a
// lease, re-validates the slot inside the exclusivity window, then commits.
// The partial unique index on active bookings backs the same invariant at
// the store, so a check-then-write race cannot slip through even if the
// lease expires mid-flight.
func (s *DefaultBookingService) Reserve(ctx context.Context, req ReserveRequest) (*models.Booking, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	slot, err := s.Catalog.GetByID(ctx, req.SlotID)
	if err != nil {
		if err == catalogRepo.ErrNotFound {
			return nil, services.NewNotFoundError("unknown slot %s", req.SlotID)
		}
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot.End <= slot.Start {
		return nil, services.NewValidationError("slot %s has end time before start time", slot.ID)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.LockTTL)
	defer cancel()
	release, err := s.Locker.Acquire(lockCtx, reserveKey(req.TutorID, req.Date, req.SlotID), s.LockTTL)
	if err != nil {
		return nil, services.NewConflictError("slot is contended, try again: %v", err)
	}
	defer release()

	// Re-validate now that we hold exclusivity on the key.
	status, err := s.statusOf(ctx, req.TutorID, req.Date, req.SlotID)
	if err != nil {
		return nil, err
	}
	switch status {
	case models.SlotUnavailable:
		return nil, services.NewConflictError("tutor has not published slot %s on %s", req.SlotID, req.Date)
	case models.SlotTaken:
		return nil, services.NewConflictError("slot %s on %s is already taken", req.SlotID, req.Date)
	}

	price := s.BasePrice
	if req.ComboOrderID != "" {
		if err := s.Credits.Debit(ctx, req.StudentID, req.ComboOrderID, 1); err != nil {
			switch err {
			case creditRepo.ErrInsufficient:
				return nil, services.NewInsufficientCreditError("combo order %s has no remaining slots", req.ComboOrderID)
			case creditRepo.ErrNotFound:
				return nil, services.NewNotFoundError("combo order %s not found", req.ComboOrderID)
			default:
				return nil, fmt.Errorf("failed to debit combo credit: %w", err)
			}
		}
		price = 0
	}

	now := time.Now()
	b := &models.Booking{
		ID:           uuid.New().String(),
		StudentID:    req.StudentID,
		TutorID:      req.TutorID,
		Date:         req.Date,
		SlotID:       req.SlotID,
		Start:        slot.Start,
		End:          slot.End,
		Subject:      req.Subject,
		Mode:         req.Mode,
		Location:     req.Location,
		Note:         req.Note,
		Status:       models.StatusPending,
		Price:        price,
		ComboOrderID: req.ComboOrderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Bookings.Insert(ctx, b); err != nil {
		// All-or-nothing: a failed insert must not leave the combo debited.
		s.restoreDebitOnFailure(ctx, req)
		if err == bookingRepo.ErrKeyTaken {
			return nil, services.NewConflictError("slot %s on %s is already taken", req.SlotID, req.Date)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.invalidateGrid(ctx, req.TutorID, req.Date)
	s.notify(ctx, b, models.EventBookingCreated)
	s.Logger.Info("booking reserved",
		zap.String("bookingId", b.ID),
		zap.String("tutorId", b.TutorID),
		zap.String("date", b.Date),
		zap.String("slotId", b.SlotID))
	return b, nil
}

func (s *DefaultBookingService) restoreDebitOnFailure(ctx context.Context, req ReserveRequest) {
	if req.ComboOrderID == "" {
		return
	}
	if err := s.Credits.Credit(ctx, req.StudentID, req.ComboOrderID, 1); err != nil {
		s.Logger.Error("failed to refund combo debit after aborted reservation",
			zap.String("comboOrderId", req.ComboOrderID), zap.Error(err))
	}
}
