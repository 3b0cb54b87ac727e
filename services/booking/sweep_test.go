package booking

import (
	"context"
	"testing"
	"time"

	"tutorhub/models"
)

func approveBooking(t *testing.T, env *testEnv, req ReserveRequest) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b := reservePending(t, env, req)
	if _, err := env.svc.TutorConfirm(ctx, ConfirmRequest{
		BookingID: b.ID, ActorID: req.TutorID, Confirmed: true, MeetLink: "https://meet.example/s",
	}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	approved, err := env.svc.AdminApprove(ctx, ApproveRequest{BookingID: b.ID, Approved: true})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	return approved
}

func TestSweepCompletesPastApprovedBookings(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	past := validReserve()
	past.Date = "2026-08-01"
	approveBooking(t, env, past)

	future := validReserve()
	future.StudentID = "student-2"
	future.Date = "2026-12-01"
	stillApproved := approveBooking(t, env, future)

	now, _ := time.Parse("2006-01-02", "2026-09-01")
	n, err := env.svc.SweepCompletion(ctx, now)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 completed, got %d", n)
	}

	got, err := env.svc.GetBooking(ctx, stillApproved.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Fatalf("future booking must stay approved, got %s", got.Status)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	past := validReserve()
	past.Date = "2026-08-01"
	approveBooking(t, env, past)

	now, _ := time.Parse("2006-01-02", "2026-09-01")
	if n, err := env.svc.SweepCompletion(ctx, now); err != nil || n != 1 {
		t.Fatalf("first sweep: want 1, got %d (%v)", n, err)
	}
	if n, err := env.svc.SweepCompletion(ctx, now); err != nil || n != 0 {
		t.Fatalf("second sweep must be a no-op, got %d (%v)", n, err)
	}
}

// A booking ending later the same day is not due until its end time passes.
func TestSweepRespectsEndTime(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	req := validReserve() // slot-09 ends at 10:00
	req.Date = "2026-09-01"
	approveBooking(t, env, req)

	day, _ := time.Parse("2006-01-02", "2026-09-01")

	before := day.Add(9*time.Hour + 30*time.Minute)
	if n, _ := env.svc.SweepCompletion(ctx, before); n != 0 {
		t.Fatalf("booking still in progress, want 0 completed, got %d", n)
	}

	after := day.Add(10*time.Hour + 1*time.Minute)
	if n, _ := env.svc.SweepCompletion(ctx, after); n != 1 {
		t.Fatalf("booking ended, want 1 completed, got %d", n)
	}
}
