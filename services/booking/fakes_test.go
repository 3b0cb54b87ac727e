package booking

import (
	"context"
	"strings"
	"sync"
	"time"

	bookingRepo "tutorhub/database/repository/booking"
	catalogRepo "tutorhub/database/repository/catalog"
	creditRepo "tutorhub/database/repository/credit"
	"tutorhub/models"
)

// fakeBookingRepo is an in-memory bookingRepo.Repository. Insert and
// UpdateStatus hold the same mutex so the key-uniqueness and CAS semantics
// of the mongo implementation carry over.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (r *fakeBookingRepo) Insert(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.TutorID == b.TutorID && existing.Date == b.Date &&
			existing.SlotID == b.SlotID && existing.Status.Active() {
			return bookingRepo.ErrKeyTaken
		}
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookingRepo) FindActiveByKey(ctx context.Context, tutorID, date, slotID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.TutorID == tutorID && b.Date == date && b.SlotID == slotID && b.Status.Active() {
			clone := *b
			return &clone, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) ListActiveByTutorDate(ctx context.Context, tutorID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.TutorID == tutorID && b.Date == date && b.Status.Active() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.StudentID == studentID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByTutor(ctx context.Context, tutorID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.TutorID == tutorID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus, set map[string]interface{}) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status != from {
		return nil, bookingRepo.ErrStaleStatus
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	for k, v := range set {
		switch k {
		case "note":
			b.Note = v.(string)
		case "meet_link":
			b.MeetLink = v.(string)
		}
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookingRepo) ListApprovedEndedBefore(ctx context.Context, t time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.StatusApproved && b.EndsBefore(t) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeAvailRepo keys published slots by tutor+date.
type fakeAvailRepo struct {
	mu        sync.Mutex
	published map[string]map[string]bool // tutorID|date -> slotID set
}

func newFakeAvailRepo() *fakeAvailRepo {
	return &fakeAvailRepo{published: make(map[string]map[string]bool)}
}

func availKey(tutorID, date string) string { return tutorID + "|" + date }

func (r *fakeAvailRepo) publish(tutorID, date string, slotIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]bool, len(slotIDs))
	for _, id := range slotIDs {
		set[id] = true
	}
	r.published[availKey(tutorID, date)] = set
}

func (r *fakeAvailRepo) ReplaceDay(ctx context.Context, tutorID, date string, slotIDs []string) ([]models.Availability, error) {
	r.publish(tutorID, date, slotIDs...)
	rows := make([]models.Availability, 0, len(slotIDs))
	for _, id := range slotIDs {
		rows = append(rows, models.Availability{TutorID: tutorID, Date: date, SlotID: id})
	}
	return rows, nil
}

func (r *fakeAvailRepo) ListByDate(ctx context.Context, tutorID, date string) ([]models.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []models.Availability
	for id := range r.published[availKey(tutorID, date)] {
		rows = append(rows, models.Availability{TutorID: tutorID, Date: date, SlotID: id})
	}
	return rows, nil
}

func (r *fakeAvailRepo) ListRange(ctx context.Context, tutorID, from, to string) ([]models.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []models.Availability
	for key, set := range r.published {
		parts := strings.SplitN(key, "|", 2)
		if parts[0] != tutorID || parts[1] < from || parts[1] > to {
			continue
		}
		for id := range set {
			rows = append(rows, models.Availability{TutorID: tutorID, Date: parts[1], SlotID: id})
		}
	}
	return rows, nil
}

func (r *fakeAvailRepo) Exists(ctx context.Context, tutorID, date, slotID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published[availKey(tutorID, date)][slotID], nil
}

// fakeCatalogRepo serves a fixed slot list.
type fakeCatalogRepo struct {
	slots []models.TimeSlot
}

func newFakeCatalogRepo(slots ...models.TimeSlot) *fakeCatalogRepo {
	if len(slots) == 0 {
		slots = models.DefaultCatalog()
	}
	return &fakeCatalogRepo{slots: slots}
}

func (r *fakeCatalogRepo) Seed(ctx context.Context, slots []models.TimeSlot) error {
	r.slots = slots
	return nil
}

func (r *fakeCatalogRepo) List(ctx context.Context) ([]models.TimeSlot, error) {
	return r.slots, nil
}

func (r *fakeCatalogRepo) GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error) {
	for i := range r.slots {
		if r.slots[i].ID == slotID {
			clone := r.slots[i]
			return &clone, nil
		}
	}
	return nil, catalogRepo.ErrNotFound
}

// fakeCreditRepo tracks balances and every debit/credit call.
type fakeCreditRepo struct {
	mu       sync.Mutex
	balances map[string]int // studentID|comboOrderID -> remaining
	debits   int
	credits  int
}

func newFakeCreditRepo() *fakeCreditRepo {
	return &fakeCreditRepo{balances: make(map[string]int)}
}

func creditKey(studentID, comboOrderID string) string { return studentID + "|" + comboOrderID }

func (r *fakeCreditRepo) fund(studentID, comboOrderID string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[creditKey(studentID, comboOrderID)] = n
}

func (r *fakeCreditRepo) balance(studentID, comboOrderID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[creditKey(studentID, comboOrderID)]
}

func (r *fakeCreditRepo) Debit(ctx context.Context, studentID, comboOrderID string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := creditKey(studentID, comboOrderID)
	remaining, ok := r.balances[key]
	if !ok {
		return creditRepo.ErrNotFound
	}
	if remaining < n {
		return creditRepo.ErrInsufficient
	}
	r.balances[key] = remaining - n
	r.debits++
	return nil
}

func (r *fakeCreditRepo) Credit(ctx context.Context, studentID, comboOrderID string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := creditKey(studentID, comboOrderID)
	if _, ok := r.balances[key]; !ok {
		return creditRepo.ErrNotFound
	}
	r.balances[key] += n
	r.credits++
	return nil
}

func (r *fakeCreditRepo) Get(ctx context.Context, studentID, comboOrderID string) (*models.CreditAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	remaining, ok := r.balances[creditKey(studentID, comboOrderID)]
	if !ok {
		return nil, creditRepo.ErrNotFound
	}
	return &models.CreditAccount{
		StudentID:      studentID,
		ComboOrderID:   comboOrderID,
		RemainingSlots: remaining,
	}, nil
}

// mutexLocker is an in-process utils.KeyLocker: one mutex per key, so
// concurrent Reserve calls in tests serialize the way the Redis lease does.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	km, ok := l.locks[key]
	if !ok {
		km = &sync.Mutex{}
		l.locks[key] = km
	}
	l.mu.Unlock()

	km.Lock()
	var once sync.Once
	return func() { once.Do(km.Unlock) }, nil
}

// recordingNotifier captures every lifecycle event fired at the port.
type recordingNotifier struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func (n *recordingNotifier) NotifyBookingEvent(ctx context.Context, b *models.Booking, event models.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) recorded() []models.BookingEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.BookingEvent, len(n.events))
	copy(out, n.events)
	return out
}

// recordingProcessor captures payment intent requests.
type recordingProcessor struct {
	mu       sync.Mutex
	bookings []string
}

func (p *recordingProcessor) CreateBookingIntent(ctx context.Context, b *models.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bookings = append(p.bookings, b.ID)
}

func (p *recordingProcessor) intents() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bookings)
}
