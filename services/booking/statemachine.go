package booking

import (
	"context"
	"fmt"

	bookingRepo "tutorhub/database/repository/booking"
	"tutorhub/models"
	"tutorhub/services"

	"go.uber.org/zap"
)

// ConfirmRequest is the tutor's answer to a pending booking.
type ConfirmRequest struct {
	BookingID string
	ActorID   string
	Confirmed bool
	MeetLink  string
	Note      string
}

// ApproveRequest is the platform admin's answer to a tutor-confirmed booking.
type ApproveRequest struct {
	BookingID string
	Approved  bool
	MeetLink  string
	Note      string
}

// TutorConfirm handles pending -> tutor_confirmed | rejected. Only the
// booking's tutor may call it; any other starting status fails without
// mutating anything.
func (s *DefaultBookingService) TutorConfirm(ctx context.Context, req ConfirmRequest) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.TutorID != req.ActorID {
		return nil, services.NewAuthorizationError("only the booking's tutor may confirm it")
	}

	set := map[string]interface{}{}
	if req.Note != "" {
		set["note"] = req.Note
	}

	if !req.Confirmed {
		updated, err := s.transition(ctx, req.BookingID, models.StatusPending, models.StatusRejected, set)
		if err != nil {
			return nil, err
		}
		s.restoreCombo(ctx, updated)
		s.invalidateGrid(ctx, updated.TutorID, updated.Date)
		s.notify(ctx, updated, models.EventBookingRejected)
		return updated, nil
	}

	if req.MeetLink != "" && b.Mode == models.ModeOnline {
		set["meet_link"] = req.MeetLink
	}
	updated, err := s.transition(ctx, req.BookingID, models.StatusPending, models.StatusTutorConfirmed, set)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, updated, models.EventBookingConfirmed)
	return updated, nil
}

// AdminApprove handles tutor_confirmed -> approved | rejected. Route-level
// auth guarantees the caller is an admin. Approving an online booking
// requires a meet link, supplied now or attached earlier by the tutor.
func (s *DefaultBookingService) AdminApprove(ctx context.Context, req ApproveRequest) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	set := map[string]interface{}{}
	if req.Note != "" {
		set["note"] = req.Note
	}

	if !req.Approved {
		updated, err := s.transition(ctx, req.BookingID, models.StatusTutorConfirmed, models.StatusRejected, set)
		if err != nil {
			return nil, err
		}
		s.restoreCombo(ctx, updated)
		s.invalidateGrid(ctx, updated.TutorID, updated.Date)
		s.notify(ctx, updated, models.EventBookingRejected)
		return updated, nil
	}

	if b.Mode == models.ModeOnline {
		link := req.MeetLink
		if link == "" {
			link = b.MeetLink
		}
		if link == "" {
			return nil, services.NewValidationError("an online booking cannot be approved without a meet link")
		}
		set["meet_link"] = link
	}

	updated, err := s.transition(ctx, req.BookingID, models.StatusTutorConfirmed, models.StatusApproved, set)
	if err != nil {
		return nil, err
	}
	if s.Payments != nil && updated.ComboOrderID == "" {
		s.Payments.CreateBookingIntent(ctx, updated)
	}
	s.notify(ctx, updated, models.EventBookingApproved)
	return updated, nil
}

// Cancel handles pending|tutor_confirmed -> cancelled, at the request of the
// booking's student or tutor. Approved bookings cannot be cancelled here;
// that needs a refund policy this engine does not own.
func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != b.StudentID && actorID != b.TutorID {
		return nil, services.NewAuthorizationError("only the booking's student or tutor may cancel it")
	}
	if b.Status != models.StatusPending && b.Status != models.StatusTutorConfirmed {
		return nil, services.NewInvalidStateError("booking %s cannot be cancelled from status %s", bookingID, b.Status)
	}

	updated, err := s.transition(ctx, bookingID, b.Status, models.StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	s.restoreCombo(ctx, updated)
	s.invalidateGrid(ctx, updated.TutorID, updated.Date)
	s.notify(ctx, updated, models.EventBookingCancelled)
	return updated, nil
}

// transition applies one CAS status update and maps repo errors onto the
// engine's taxonomy. A stale read loses the race and mutates nothing.
func (s *DefaultBookingService) transition(ctx context.Context, id string, from, to models.BookingStatus, set map[string]interface{}) (*models.Booking, error) {
	updated, err := s.Bookings.UpdateStatus(ctx, id, from, to, set)
	if err != nil {
		switch err {
		case bookingRepo.ErrNotFound:
			return nil, services.NewNotFoundError("booking %s not found", id)
		case bookingRepo.ErrStaleStatus:
			return nil, services.NewInvalidStateError("booking %s is no longer %s", id, from)
		default:
			return nil, fmt.Errorf("failed to transition booking %s: %w", id, err)
		}
	}
	s.Logger.Info("booking transitioned",
		zap.String("bookingId", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return updated, nil
}
