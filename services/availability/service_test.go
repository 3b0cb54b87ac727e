package availability

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	bookingRepo "tutorhub/database/repository/booking"
	catalogRepo "tutorhub/database/repository/catalog"
	"tutorhub/models"
	"tutorhub/services"

	"go.uber.org/zap"
)

// stubAvailRepo keeps one slot set per tutor+date.
type stubAvailRepo struct {
	mu        sync.Mutex
	published map[string][]string // tutorID|date -> sorted slotIDs
}

func newStubAvailRepo() *stubAvailRepo {
	return &stubAvailRepo{published: make(map[string][]string)}
}

func (r *stubAvailRepo) key(tutorID, date string) string { return tutorID + "|" + date }

func (r *stubAvailRepo) ReplaceDay(ctx context.Context, tutorID, date string, slotIDs []string) ([]models.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]string(nil), slotIDs...)
	sort.Strings(sorted)
	r.published[r.key(tutorID, date)] = sorted
	rows := make([]models.Availability, 0, len(sorted))
	for _, id := range sorted {
		rows = append(rows, models.Availability{TutorID: tutorID, Date: date, SlotID: id})
	}
	return rows, nil
}

func (r *stubAvailRepo) ListByDate(ctx context.Context, tutorID, date string) ([]models.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []models.Availability
	for _, id := range r.published[r.key(tutorID, date)] {
		rows = append(rows, models.Availability{TutorID: tutorID, Date: date, SlotID: id})
	}
	return rows, nil
}

func (r *stubAvailRepo) ListRange(ctx context.Context, tutorID, from, to string) ([]models.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []models.Availability
	for key, ids := range r.published {
		date := key[len(tutorID)+1:]
		if key != r.key(tutorID, date) || date < from || date > to {
			continue
		}
		for _, id := range ids {
			rows = append(rows, models.Availability{TutorID: tutorID, Date: date, SlotID: id})
		}
	}
	return rows, nil
}

func (r *stubAvailRepo) Exists(ctx context.Context, tutorID, date, slotID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.published[r.key(tutorID, date)] {
		if id == slotID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAvailRepo) slots(tutorID, date string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.published[r.key(tutorID, date)]...)
}

// stubBookingRepo only answers FindActiveByKey; the retraction guard is the
// single booking query this service makes.
type stubBookingRepo struct {
	active map[string]*models.Booking // tutorID|date|slotID
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{active: make(map[string]*models.Booking)}
}

func (r *stubBookingRepo) occupy(tutorID, date, slotID string) {
	r.active[tutorID+"|"+date+"|"+slotID] = &models.Booking{
		TutorID: tutorID, Date: date, SlotID: slotID, Status: models.StatusPending,
	}
}

func (r *stubBookingRepo) FindActiveByKey(ctx context.Context, tutorID, date, slotID string) (*models.Booking, error) {
	if b, ok := r.active[tutorID+"|"+date+"|"+slotID]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *stubBookingRepo) Insert(ctx context.Context, b *models.Booking) error { return nil }
func (r *stubBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}
func (r *stubBookingRepo) ListActiveByTutorDate(ctx context.Context, tutorID, date string) ([]models.Booking, error) {
	return nil, nil
}
func (r *stubBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	return nil, nil
}
func (r *stubBookingRepo) ListByTutor(ctx context.Context, tutorID string) ([]models.Booking, error) {
	return nil, nil
}
func (r *stubBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, set map[string]interface{}) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}
func (r *stubBookingRepo) ListApprovedEndedBefore(ctx context.Context, t time.Time) ([]models.Booking, error) {
	return nil, nil
}

type stubCatalogRepo struct {
	slots []models.TimeSlot
}

func (r *stubCatalogRepo) Seed(ctx context.Context, slots []models.TimeSlot) error { return nil }
func (r *stubCatalogRepo) List(ctx context.Context) ([]models.TimeSlot, error)     { return r.slots, nil }
func (r *stubCatalogRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	for i := range r.slots {
		if r.slots[i].ID == slotID {
			return &r.slots[i], nil
		}
	}
	return nil, catalogRepo.ErrNotFound
}

// noopLocker grants every lease immediately.
type noopLocker struct {
	acquired []string
}

func (l *noopLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.acquired = append(l.acquired, key)
	return func() {}, nil
}

type availEnv struct {
	svc      *DefaultAvailabilityService
	avail    *stubAvailRepo
	bookings *stubBookingRepo
	locker   *noopLocker
}

func newAvailEnv() *availEnv {
	env := &availEnv{
		avail:    newStubAvailRepo(),
		bookings: newStubBookingRepo(),
		locker:   &noopLocker{},
	}
	env.svc = &DefaultAvailabilityService{
		Avail:    env.avail,
		Bookings: env.bookings,
		Catalog:  &stubCatalogRepo{slots: models.DefaultCatalog()},
		Locker:   env.locker,
		Logger:   zap.NewNop(),
		LockTTL:  time.Second,
	}
	return env
}

func TestSetAvailabilityValidation(t *testing.T) {
	env := newAvailEnv()
	ctx := context.Background()

	if _, err := env.svc.SetAvailability(ctx, "", "2026-09-01", nil); !services.IsCode(err, services.CodeValidation) {
		t.Fatalf("want validation error for empty tutor, got %v", err)
	}
	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "bad", nil); !services.IsCode(err, services.CodeValidation) {
		t.Fatalf("want validation error for bad date, got %v", err)
	}
	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01", []string{"slot-99"}); !services.IsCode(err, services.CodeNotFound) {
		t.Fatalf("want not-found error for unknown slot, got %v", err)
	}
}

func TestSetAvailabilityDedupesAndSorts(t *testing.T) {
	env := newAvailEnv()
	rows, err := env.svc.SetAvailability(context.Background(), "tutor-1", "2026-09-01",
		[]string{"slot-10", "slot-09", "slot-10", "slot-09"})
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows after dedupe, got %d", len(rows))
	}
	if rows[0].SlotID != "slot-09" || rows[1].SlotID != "slot-10" {
		t.Fatalf("rows not sorted: %v", rows)
	}
}

func TestSetAvailabilityReconcilesWholeDay(t *testing.T) {
	env := newAvailEnv()
	ctx := context.Background()

	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01",
		[]string{"slot-09", "slot-10", "slot-11"}); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01",
		[]string{"slot-10", "slot-12"}); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	got := env.avail.slots("tutor-1", "2026-09-01")
	want := []string{"slot-10", "slot-12"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("day not reconciled: got %v, want %v", got, want)
	}
}

func TestSetAvailabilityRetractionGuard(t *testing.T) {
	env := newAvailEnv()
	ctx := context.Background()

	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01",
		[]string{"slot-09", "slot-10"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	env.bookings.occupy("tutor-1", "2026-09-01", "slot-09")

	// Retracting the booked slot fails and leaves the day untouched.
	_, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01", []string{"slot-10"})
	if !services.IsCode(err, services.CodeConflict) {
		t.Fatalf("want conflict retracting booked slot, got %v", err)
	}
	got := env.avail.slots("tutor-1", "2026-09-01")
	if len(got) != 2 {
		t.Fatalf("day mutated by failed retraction: %v", got)
	}

	// Keeping the booked slot while dropping the free one is fine.
	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01", []string{"slot-09"}); err != nil {
		t.Fatalf("retracting free slot failed: %v", err)
	}
}

// Retraction must hold the same per-key leases the reservation path uses.
func TestSetAvailabilityLocksRetractedKeys(t *testing.T) {
	env := newAvailEnv()
	ctx := context.Background()

	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01",
		[]string{"slot-09", "slot-10"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	env.locker.acquired = nil

	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01", []string{"slot-10"}); err != nil {
		t.Fatalf("retraction failed: %v", err)
	}
	if len(env.locker.acquired) != 1 || env.locker.acquired[0] != "reserve:tutor-1:2026-09-01:slot-09" {
		t.Fatalf("want lease on retracted key, got %v", env.locker.acquired)
	}
}

func TestListAvailabilityRangeValidation(t *testing.T) {
	env := newAvailEnv()
	ctx := context.Background()

	if _, err := env.svc.ListAvailability(ctx, "tutor-1", "2026-09-10", "2026-09-01"); !services.IsCode(err, services.CodeValidation) {
		t.Fatalf("want validation error for inverted range, got %v", err)
	}
	if _, err := env.svc.ListAvailability(ctx, "tutor-1", "bad", "2026-09-01"); !services.IsCode(err, services.CodeValidation) {
		t.Fatalf("want validation error for bad from date, got %v", err)
	}
}

func TestListAvailabilityRange(t *testing.T) {
	env := newAvailEnv()
	ctx := context.Background()

	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-01", []string{"slot-09"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-09-05", []string{"slot-10"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := env.svc.SetAvailability(ctx, "tutor-1", "2026-10-01", []string{"slot-11"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	rows, err := env.svc.ListAvailability(ctx, "tutor-1", "2026-09-01", "2026-09-30")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows in September, got %d", len(rows))
	}
}
