package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkashlan/muallim/internal/model"
	"github.com/mkashlan/muallim/internal/queue"
	"github.com/mkashlan/muallim/internal/repository"
	"github.com/mkashlan/muallim/internal/schedule"
)

const slotLockStripes = 64

// BookingStore is the persistence contract for bookings. Create must
// fail with repository.ErrSlotTaken when an active booking already holds
// the same (instructor, date, time); lookups return (nil, nil) when the
// booking does not exist.
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetActiveBySlot(ctx context.Context, instructorID int64, date time.Time, clock string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.BookingStatus) (bool, error)
	MarkPaid(ctx context.Context, id int64, receiptRef, shipping string) (bool, error)
	SetSessionID(ctx context.Context, id int64, token string) (string, error)
	SetProgressNotes(ctx context.Context, id int64, notes string) error
	ListByGuardianID(ctx context.Context, guardianID int64) ([]*model.Booking, error)
	ListActiveByInstructorRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Booking, error)
}

// SlotResolver matches a requested (date, time) against an instructor's
// currently bookable slots, returning the published time string of the
// matching slot. Implemented by AvailabilityService.
type SlotResolver interface {
	ResolveSlot(ctx context.Context, instructorID int64, date time.Time, clock string) (string, bool, error)
}

// EventPublisher hands events to the notification collaborator.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}

// PriceRef is an opaque reference to a priced catalog item. The catalog
// itself lives outside this engine; only the cent amount matters here.
type PriceRef struct {
	ID         int64
	PriceCents int64
}

type CreateBookingRequest struct {
	StudentID    int64
	GuardianID   int64
	InstructorID int64
	ChildID      int64
	Package      PriceRef
	Extras       []PriceRef
	Date         time.Time
	Time         string
}

type BookingService struct {
	bookings  BookingStore
	slots     SlotResolver
	publisher EventPublisher
	clock     Clock
	logger    *zap.Logger

	// Striped per-instructor locks serialize check-then-insert between
	// concurrent CreateBooking calls in this process; the store's unique
	// index backstops racers on other instances.
	slotLocks [slotLockStripes]sync.Mutex
}

// NewBookingService wires the booking engine. publisher may be nil when
// no broker is configured; clock may be nil to use the wall clock.
func NewBookingService(bookings BookingStore, slots SlotResolver, publisher EventPublisher, clock Clock, logger *zap.Logger) *BookingService {
	if clock == nil {
		clock = time.Now
	}
	return &BookingService{
		bookings:  bookings,
		slots:     slots,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

func (s *BookingService) lockFor(instructorID int64) *sync.Mutex {
	return &s.slotLocks[uint64(instructorID)%slotLockStripes]
}

// CreateBooking reserves a concrete slot for a guardian's child. The slot
// must resolve from the instructor's availability and must not be held by
// an active booking; exactly one of any set of concurrent callers for the
// same slot succeeds. The booking starts in awaiting_payment.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*model.Booking, error) {
	if !schedule.ValidClock(req.Time) {
		return nil, fmt.Errorf("%w: time %q", ErrInvalidInput, req.Time)
	}
	if req.Package.PriceCents < 0 {
		return nil, fmt.Errorf("%w: negative package price", ErrInvalidInput)
	}

	date := schedule.DateOnly(req.Date)

	lock := s.lockFor(req.InstructorID)
	lock.Lock()
	defer lock.Unlock()

	slotTime, bookable, err := s.slots.ResolveSlot(ctx, req.InstructorID, date, req.Time)
	if err != nil {
		return nil, err
	}
	if !bookable {
		return nil, fmt.Errorf("%w: %s %s is not offered by instructor %d",
			ErrSlotUnavailable, date.Format(time.DateOnly), req.Time, req.InstructorID)
	}

	held, err := s.bookings.GetActiveBySlot(ctx, req.InstructorID, date, slotTime)
	if err != nil {
		return nil, fmt.Errorf("check slot holder: %w", err)
	}
	if held != nil {
		return nil, fmt.Errorf("%w: already booked", ErrSlotUnavailable)
	}

	total := req.Package.PriceCents
	for _, extra := range req.Extras {
		if extra.PriceCents < 0 {
			return nil, fmt.Errorf("%w: negative extra price", ErrInvalidInput)
		}
		total += extra.PriceCents
	}

	booking := &model.Booking{
		StudentID:    req.StudentID,
		GuardianID:   req.GuardianID,
		InstructorID: req.InstructorID,
		PackageID:    req.Package.ID,
		ChildID:      req.ChildID,
		Date:         date,
		Time:         slotTime,
		Status:       model.BookingStatusAwaitingPayment,
		TotalCents:   total,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, fmt.Errorf("%w: already booked", ErrSlotUnavailable)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("guardian_id", booking.GuardianID),
		zap.Int64("instructor_id", booking.InstructorID),
		zap.String("date", date.Format(time.DateOnly)),
		zap.String("time", booking.Time),
		zap.Int64("total_cents", total),
	)

	return booking, nil
}

// GetBooking returns the booking with the given id.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	return booking, nil
}

// ConfirmPayment is invoked by the payment collaborator once proof of
// payment is verified. It moves awaiting_payment to awaiting_review and
// records the opaque receipt and shipping details.
func (s *BookingService) ConfirmPayment(ctx context.Context, bookingID int64, receiptRef, shipping string) error {
	applied, err := s.bookings.MarkPaid(ctx, bookingID, receiptRef, shipping)
	if err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}

	if !applied {
		booking, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: booking is %s, not awaiting_payment", ErrInvalidState, booking.Status)
	}

	s.logger.Info("Payment confirmed",
		zap.Int64("booking_id", bookingID),
		zap.String("receipt_ref", receiptRef),
	)

	return nil
}

// SetStatus is the general transition entry point for admins and
// instructors: awaiting_review -> confirmed, confirmed -> completed, and
// cancellation from any non-cancelled status. Cancelling needs the
// explicit confirm flag; the payment transitions go through
// ConfirmPayment, never through here. A confirmed transition emits a
// BookingConfirmed event; a failed publish does not undo the transition.
func (s *BookingService) SetStatus(ctx context.Context, bookingID int64, next model.BookingStatus, confirmed bool) error {
	if !next.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, next)
	}
	if next == model.BookingStatusAwaitingPayment || next == model.BookingStatusAwaitingReview {
		return fmt.Errorf("%w: %s is not reachable via status updates", ErrInvalidState, next)
	}
	if next == model.BookingStatusCancelled && !confirmed {
		return fmt.Errorf("%w: cancellation is irreversible", ErrConfirmationRequired)
	}

	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, booking.Status, next)
	}

	applied, err := s.bookings.UpdateStatus(ctx, bookingID, booking.Status, next)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if !applied {
		// Someone else transitioned first.
		return fmt.Errorf("%w: booking is no longer %s", ErrInvalidState, booking.Status)
	}

	s.logger.Info("Booking status changed",
		zap.Int64("booking_id", bookingID),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(next)),
	)

	if next == model.BookingStatusConfirmed {
		s.publishConfirmed(ctx, booking)
	}

	return nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	event := queue.BookingConfirmedEvent{
		BookingID:    booking.ID,
		UserID:       booking.GuardianID,
		InstructorID: booking.InstructorID,
		Date:         booking.Date.Format(time.DateOnly),
		Time:         booking.Time,
		TotalCents:   booking.TotalCents,
		Message:      fmt.Sprintf("Your session on %s at %s is confirmed", booking.Date.Format(time.DateOnly), booking.Time),
		ConfirmedAt:  s.clock().UTC().Format(time.RFC3339),
	}

	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		s.logger.Warn("Booking confirmed event not delivered",
			zap.Int64("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}

// IssueSessionLink returns the booking's session-link token, generating
// and persisting one on first call. Repeat calls return the same token.
func (s *BookingService) IssueSessionLink(ctx context.Context, bookingID int64) (string, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.Status == model.BookingStatusCancelled {
		return "", fmt.Errorf("%w: booking is cancelled", ErrInvalidState)
	}
	if booking.SessionID != nil {
		return *booking.SessionID, nil
	}

	token, err := s.bookings.SetSessionID(ctx, bookingID, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("issue session link: %w", err)
	}

	s.logger.Info("Session link issued", zap.Int64("booking_id", bookingID))

	return token, nil
}

// ListGuardianBookings returns a guardian's bookings, newest first.
func (s *BookingService) ListGuardianBookings(ctx context.Context, guardianID int64) ([]*model.Booking, error) {
	bookings, err := s.bookings.ListByGuardianID(ctx, guardianID)
	if err != nil {
		return nil, fmt.Errorf("list guardian bookings: %w", err)
	}
	return bookings, nil
}

// ListInstructorAgenda returns an instructor's active bookings within
// [from, to], ordered by date then time.
func (s *BookingService) ListInstructorAgenda(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Booking, error) {
	from, to = schedule.DateOnly(from), schedule.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalidInput)
	}

	bookings, err := s.bookings.ListActiveByInstructorRange(ctx, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list instructor agenda: %w", err)
	}
	return bookings, nil
}

// SetProgressNotes overwrites the instructor's progress notes for the
// session. Allowed in any non-cancelled state.
func (s *BookingService) SetProgressNotes(ctx context.Context, bookingID int64, notes string) error {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == model.BookingStatusCancelled {
		return fmt.Errorf("%w: booking is cancelled", ErrInvalidState)
	}

	if err := s.bookings.SetProgressNotes(ctx, bookingID, notes); err != nil {
		return fmt.Errorf("set progress notes: %w", err)
	}

	s.logger.Info("Progress notes updated", zap.Int64("booking_id", bookingID))

	return nil
}
