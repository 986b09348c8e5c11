package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mkashlan/muallim/internal/model"
	"github.com/mkashlan/muallim/internal/schedule"
)

// InstructorStore is the persistence contract the availability workflow
// needs. Lookups return (nil, nil) when the instructor does not exist;
// the boolean results report whether a guarded update was applied.
type InstructorStore interface {
	Create(ctx context.Context, instructor *model.Instructor) error
	GetByID(ctx context.Context, id int64) (*model.Instructor, error)
	SaveProposedSchedule(ctx context.Context, id int64, ws model.WeeklySchedule) (bool, error)
	SetScheduleStatus(ctx context.Context, id int64, from, to model.ScheduleStatus) (bool, error)
	SetOverrideDay(ctx context.Context, id int64, dayKey string, times []string) error
}

// SlotCache is an optional read-through cache for resolved slot lists.
type SlotCache interface {
	Get(ctx context.Context, instructorID int64, from, to time.Time) ([]schedule.Slot, bool)
	Set(ctx context.Context, instructorID int64, from, to time.Time, slots []schedule.Slot)
	Invalidate(ctx context.Context, instructorID int64)
}

type AvailabilityService struct {
	instructors InstructorStore
	cache       SlotCache
	clock       Clock
	logger      *zap.Logger
}

// NewAvailabilityService wires the availability workflow. cache may be
// nil to disable caching; clock may be nil to use the wall clock.
func NewAvailabilityService(instructors InstructorStore, cache SlotCache, clock Clock, logger *zap.Logger) *AvailabilityService {
	if clock == nil {
		clock = time.Now
	}
	return &AvailabilityService{
		instructors: instructors,
		cache:       cache,
		clock:       clock,
		logger:      logger,
	}
}

// CreateInstructor onboards a new instructor with an unset schedule.
func (s *AvailabilityService) CreateInstructor(ctx context.Context, name, specialty string) (*model.Instructor, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: instructor name is required", ErrInvalidInput)
	}

	instructor := &model.Instructor{
		Name:           name,
		Specialty:      specialty,
		WeeklySchedule: model.WeeklySchedule{},
		ScheduleStatus: model.ScheduleStatusUnset,
		Overrides:      model.DayOverrides{},
	}

	if err := s.instructors.Create(ctx, instructor); err != nil {
		return nil, fmt.Errorf("create instructor: %w", err)
	}

	s.logger.Info("Instructor created",
		zap.Int64("instructor_id", instructor.ID),
		zap.String("name", name),
	)

	return instructor, nil
}

// GetInstructor returns the instructor with the given id.
func (s *AvailabilityService) GetInstructor(ctx context.Context, instructorID int64) (*model.Instructor, error) {
	instructor, err := s.instructors.GetByID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return nil, fmt.Errorf("%w: instructor %d", ErrNotFound, instructorID)
	}
	return instructor, nil
}

// ProposeWeeklySchedule stores a new weekly template and flips the
// schedule to pending review. A proposal already under review blocks
// re-submission so the admin's review target cannot change underneath
// them.
func (s *AvailabilityService) ProposeWeeklySchedule(ctx context.Context, instructorID int64, ws model.WeeklySchedule) error {
	if err := validateWeeklySchedule(ws); err != nil {
		return err
	}

	instructor, err := s.GetInstructor(ctx, instructorID)
	if err != nil {
		return err
	}
	if instructor.ScheduleStatus == model.ScheduleStatusPending {
		return ErrAlreadyPending
	}

	applied, err := s.instructors.SaveProposedSchedule(ctx, instructorID, ws)
	if err != nil {
		return fmt.Errorf("save proposed schedule: %w", err)
	}
	if !applied {
		// Lost a race with another proposal that is now pending.
		return ErrAlreadyPending
	}

	s.invalidateSlots(ctx, instructorID)

	s.logger.Info("Weekly schedule proposed",
		zap.Int64("instructor_id", instructorID),
		zap.Int("days", len(ws)),
	)

	return nil
}

// ApproveSchedule moves a pending schedule to approved. Approving an
// already-approved schedule is a no-op so admin retries stay cheap.
func (s *AvailabilityService) ApproveSchedule(ctx context.Context, instructorID int64) error {
	applied, err := s.instructors.SetScheduleStatus(ctx, instructorID,
		model.ScheduleStatusPending, model.ScheduleStatusApproved)
	if err != nil {
		return fmt.Errorf("approve schedule: %w", err)
	}

	if !applied {
		instructor, err := s.GetInstructor(ctx, instructorID)
		if err != nil {
			return err
		}
		if instructor.ScheduleStatus == model.ScheduleStatusApproved {
			return nil
		}
		return fmt.Errorf("%w: schedule is %s, not pending", ErrInvalidState, instructor.ScheduleStatus)
	}

	s.invalidateSlots(ctx, instructorID)

	s.logger.Info("Weekly schedule approved", zap.Int64("instructor_id", instructorID))

	return nil
}

// RejectSchedule moves a pending schedule to rejected.
func (s *AvailabilityService) RejectSchedule(ctx context.Context, instructorID int64) error {
	applied, err := s.instructors.SetScheduleStatus(ctx, instructorID,
		model.ScheduleStatusPending, model.ScheduleStatusRejected)
	if err != nil {
		return fmt.Errorf("reject schedule: %w", err)
	}

	if !applied {
		instructor, err := s.GetInstructor(ctx, instructorID)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: schedule is %s, not pending", ErrInvalidState, instructor.ScheduleStatus)
	}

	s.invalidateSlots(ctx, instructorID)

	s.logger.Info("Weekly schedule rejected", zap.Int64("instructor_id", instructorID))

	return nil
}

// SetOverrideSlots writes one-off slots for a day of the month, bypassing
// the approval gate. The schedule status is untouched.
func (s *AvailabilityService) SetOverrideSlots(ctx context.Context, instructorID int64, dayKey string, times []string) error {
	day, err := strconv.Atoi(dayKey)
	if err != nil || day < 1 || day > 31 {
		return fmt.Errorf("%w: day key %q", ErrInvalidInput, dayKey)
	}
	for _, t := range times {
		if !schedule.ValidClock(t) {
			return fmt.Errorf("%w: time %q", ErrInvalidInput, t)
		}
	}

	if _, err := s.GetInstructor(ctx, instructorID); err != nil {
		return err
	}

	if err := s.instructors.SetOverrideDay(ctx, instructorID, dayKey, times); err != nil {
		return fmt.Errorf("set override slots: %w", err)
	}

	s.invalidateSlots(ctx, instructorID)

	s.logger.Info("Override slots set",
		zap.Int64("instructor_id", instructorID),
		zap.String("day", dayKey),
		zap.Int("times", len(times)),
	)

	return nil
}

// ListBookableSlots resolves the instructor's availability over
// [from, to] inclusive: the weekly template contributes only while
// approved, overrides contribute regardless of approval state, and both
// merge additively with duplicates removed.
func (s *AvailabilityService) ListBookableSlots(ctx context.Context, instructorID int64, from, to time.Time) ([]schedule.Slot, error) {
	from, to = schedule.DateOnly(from), schedule.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalidInput)
	}

	if s.cache != nil {
		if slots, ok := s.cache.Get(ctx, instructorID, from, to); ok {
			return slots, nil
		}
	}

	instructor, err := s.GetInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	var weekly []schedule.Slot
	if instructor.ScheduleStatus == model.ScheduleStatusApproved {
		weekly = schedule.ExpandWeekly(instructor.WeeklySchedule, from, to)
	}

	var overrides []schedule.Slot
	for cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location()); !cursor.After(to); cursor = cursor.AddDate(0, 1, 0) {
		for _, slot := range schedule.ExpandOverrides(instructor.Overrides, cursor.Year(), cursor.Month(), from.Location()) {
			if !slot.Date.Before(from) && !slot.Date.After(to) {
				overrides = append(overrides, slot)
			}
		}
	}

	slots := schedule.Merge(weekly, overrides)

	if s.cache != nil {
		s.cache.Set(ctx, instructorID, from, to, slots)
	}

	return slots, nil
}

// ResolveSlot matches (date, clock) against the instructor's bookable
// slots and returns the published time string of the matching slot.
// Times match on minutes since midnight, so "10:00 ص" resolves a slot
// published as "10:00"; the published spelling is the one bookings
// store, which keeps slot identity canonical.
func (s *AvailabilityService) ResolveSlot(ctx context.Context, instructorID int64, date time.Time, clock string) (string, bool, error) {
	wanted, err := schedule.ClockMinutes(clock)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	date = schedule.DateOnly(date)
	slots, err := s.ListBookableSlots(ctx, instructorID, date, date)
	if err != nil {
		return "", false, err
	}

	for _, slot := range slots {
		minutes, err := schedule.ClockMinutes(slot.Time)
		if err == nil && minutes == wanted {
			return slot.Time, true, nil
		}
	}
	return "", false, nil
}

// NextOccurrence returns the next date on or after "now" matching the
// weekday key.
func (s *AvailabilityService) NextOccurrence(weekdayKey string) (time.Time, error) {
	weekday, ok := model.ParseWeekdayKey(weekdayKey)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: weekday %q", ErrInvalidInput, weekdayKey)
	}
	return schedule.NextWeekday(s.clock(), weekday), nil
}

func (s *AvailabilityService) invalidateSlots(ctx context.Context, instructorID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, instructorID)
	}
}

func validateWeeklySchedule(ws model.WeeklySchedule) error {
	for key, times := range ws {
		if _, ok := model.ParseWeekdayKey(key); !ok {
			return fmt.Errorf("%w: weekday %q", ErrInvalidInput, key)
		}
		for _, t := range times {
			if !schedule.ValidClock(t) {
				return fmt.Errorf("%w: time %q on %s", ErrInvalidInput, t, key)
			}
		}
	}
	return nil
}
