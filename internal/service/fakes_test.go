package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkashlan/muallim/internal/model"
	"github.com/mkashlan/muallim/internal/queue"
	"github.com/mkashlan/muallim/internal/repository"
	"github.com/mkashlan/muallim/internal/schedule"
)

func testLogger() *zap.Logger { return zap.NewNop() }

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// fakeInstructorStore mirrors the repository contract in memory: lookups
// return (nil, nil) for missing rows and guarded updates report whether
// they applied.
type fakeInstructorStore struct {
	mu          sync.Mutex
	seq         int64
	instructors map[int64]*model.Instructor
}

func newFakeInstructorStore() *fakeInstructorStore {
	return &fakeInstructorStore{instructors: make(map[int64]*model.Instructor)}
}

func cloneInstructor(in *model.Instructor) *model.Instructor {
	out := *in
	out.WeeklySchedule = make(model.WeeklySchedule, len(in.WeeklySchedule))
	for k, v := range in.WeeklySchedule {
		out.WeeklySchedule[k] = append([]string(nil), v...)
	}
	out.Overrides = make(model.DayOverrides, len(in.Overrides))
	for k, v := range in.Overrides {
		out.Overrides[k] = append([]string(nil), v...)
	}
	return &out
}

func (f *fakeInstructorStore) Create(_ context.Context, instructor *model.Instructor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	instructor.ID = f.seq
	instructor.CreatedAt = time.Now()
	instructor.UpdatedAt = instructor.CreatedAt
	f.instructors[instructor.ID] = cloneInstructor(instructor)
	return nil
}

func (f *fakeInstructorStore) GetByID(_ context.Context, id int64) (*model.Instructor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.instructors[id]
	if !ok {
		return nil, nil
	}
	return cloneInstructor(in), nil
}

func (f *fakeInstructorStore) SaveProposedSchedule(_ context.Context, id int64, ws model.WeeklySchedule) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.instructors[id]
	if !ok || in.ScheduleStatus == model.ScheduleStatusPending {
		return false, nil
	}
	in.WeeklySchedule = ws
	in.ScheduleStatus = model.ScheduleStatusPending
	in.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeInstructorStore) SetScheduleStatus(_ context.Context, id int64, from, to model.ScheduleStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.instructors[id]
	if !ok || in.ScheduleStatus != from {
		return false, nil
	}
	in.ScheduleStatus = to
	in.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeInstructorStore) SetOverrideDay(_ context.Context, id int64, dayKey string, times []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.instructors[id]
	if !ok {
		return nil
	}
	if in.Overrides == nil {
		in.Overrides = model.DayOverrides{}
	}
	in.Overrides[dayKey] = append([]string(nil), times...)
	in.UpdatedAt = time.Now()
	return nil
}

// fakeBookingStore enforces the active-slot uniqueness the partial index
// provides in Postgres, so concurrency tests exercise the same contract.
type fakeBookingStore struct {
	mu       sync.Mutex
	seq      int64
	bookings map[int64]*model.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[int64]*model.Booking)}
}

func cloneBooking(b *model.Booking) *model.Booking {
	out := *b
	return &out
}

func (f *fakeBookingStore) Create(_ context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.InstructorID == booking.InstructorID && b.Date.Equal(booking.Date) &&
			b.Time == booking.Time && b.Status.Active() {
			return repository.ErrSlotTaken
		}
	}
	f.seq++
	booking.ID = f.seq
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	f.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(b), nil
}

func (f *fakeBookingStore) GetActiveBySlot(_ context.Context, instructorID int64, date time.Time, clock string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.InstructorID == instructorID && b.Date.Equal(date) && b.Time == clock && b.Status.Active() {
			return cloneBooking(b), nil
		}
	}
	return nil, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id int64, from, to model.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeBookingStore) MarkPaid(_ context.Context, id int64, receiptRef, shipping string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != model.BookingStatusAwaitingPayment {
		return false, nil
	}
	b.Status = model.BookingStatusAwaitingReview
	b.ReceiptRef = &receiptRef
	if shipping != "" {
		b.ShippingInfo = &shipping
	}
	b.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeBookingStore) SetSessionID(_ context.Context, id int64, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return "", nil
	}
	if b.SessionID != nil {
		return *b.SessionID, nil
	}
	b.SessionID = &token
	b.UpdatedAt = time.Now()
	return token, nil
}

func (f *fakeBookingStore) ListByGuardianID(_ context.Context, guardianID int64) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.GuardianID == guardianID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBookingStore) ListActiveByInstructorRange(_ context.Context, instructorID int64, from, to time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.InstructorID == instructorID && b.Status.Active() &&
			!b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (f *fakeBookingStore) SetProgressNotes(_ context.Context, id int64, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		b.ProgressNote = &notes
		b.UpdatedAt = time.Now()
	}
	return nil
}

type fakeReviewStore struct {
	mu      sync.Mutex
	seq     int64
	reviews []*model.Review
}

func newFakeReviewStore() *fakeReviewStore { return &fakeReviewStore{} }

func (f *fakeReviewStore) Create(_ context.Context, review *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	review.ID = f.seq
	review.CreatedAt = time.Now()
	stored := *review
	f.reviews = append(f.reviews, &stored)
	return nil
}

func (f *fakeReviewStore) ListByInstructorID(_ context.Context, instructorID int64) ([]*model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Review
	for _, r := range f.reviews {
		if r.InstructorID == instructorID {
			stored := *r
			out = append(out, &stored)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeReviewStore) AverageByInstructorID(_ context.Context, instructorID int64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, n int
	for _, r := range f.reviews {
		if r.InstructorID == instructorID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []queue.BookingConfirmedEvent
}

func (f *fakePublisher) PublishBookingConfirmed(_ context.Context, event queue.BookingConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []queue.BookingConfirmedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.BookingConfirmedEvent(nil), f.events...)
}

// fixedResolver serves a static slot set keyed by date and minute.
type fixedResolver struct {
	slots map[string]string // "2026-01-06#600" -> published time string
}

func newFixedResolver() *fixedResolver { return &fixedResolver{slots: make(map[string]string)} }

func (f *fixedResolver) add(date time.Time, clock string) {
	minutes, err := schedule.ClockMinutes(clock)
	if err != nil {
		panic(err)
	}
	f.slots[slotKey(date, minutes)] = clock
}

func (f *fixedResolver) ResolveSlot(_ context.Context, _ int64, date time.Time, clock string) (string, bool, error) {
	minutes, err := schedule.ClockMinutes(clock)
	if err != nil {
		return "", false, err
	}
	published, ok := f.slots[slotKey(date, minutes)]
	return published, ok, nil
}

func slotKey(date time.Time, minutes int) string {
	return schedule.DateOnly(date).Format(time.DateOnly) + "#" + strconv.Itoa(minutes)
}
