package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkashlan/muallim/internal/model"
)

type InstructorRepository struct {
	pool *pgxpool.Pool
}

func NewInstructorRepository(pool *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{pool: pool}
}

// Create inserts a new instructor with an unset schedule.
func (r *InstructorRepository) Create(ctx context.Context, instructor *model.Instructor) error {
	query := `
		INSERT INTO instructors (name, specialty, weekly_schedule, schedule_status, overrides)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	if instructor.WeeklySchedule == nil {
		instructor.WeeklySchedule = model.WeeklySchedule{}
	}
	if instructor.Overrides == nil {
		instructor.Overrides = model.DayOverrides{}
	}
	if instructor.ScheduleStatus == "" {
		instructor.ScheduleStatus = model.ScheduleStatusUnset
	}

	err := r.pool.QueryRow(
		ctx, query,
		instructor.Name,
		instructor.Specialty,
		instructor.WeeklySchedule,
		instructor.ScheduleStatus,
		instructor.Overrides,
	).Scan(&instructor.ID, &instructor.CreatedAt, &instructor.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}

	return nil
}

// GetByID returns the instructor or nil when it does not exist.
func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*model.Instructor, error) {
	query := `
		SELECT id, name, specialty, weekly_schedule, schedule_status, overrides, created_at, updated_at
		FROM instructors
		WHERE id = $1
	`

	var instructor model.Instructor
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&instructor.ID,
		&instructor.Name,
		&instructor.Specialty,
		&instructor.WeeklySchedule,
		&instructor.ScheduleStatus,
		&instructor.Overrides,
		&instructor.CreatedAt,
		&instructor.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get instructor by id: %w", err)
	}

	return &instructor, nil
}

// SaveProposedSchedule stores a proposed weekly schedule and flips the
// schedule status to pending in one statement. It refuses to overwrite an
// in-flight proposal: when the status is already pending no row is
// updated and false is returned.
func (r *InstructorRepository) SaveProposedSchedule(ctx context.Context, id int64, ws model.WeeklySchedule) (bool, error) {
	query := `
		UPDATE instructors
		SET weekly_schedule = $2, schedule_status = 'pending', updated_at = now()
		WHERE id = $1 AND schedule_status <> 'pending'
	`

	result, err := r.pool.Exec(ctx, query, id, ws)
	if err != nil {
		return false, fmt.Errorf("save proposed schedule: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SetScheduleStatus is a compare-and-set on schedule_status. It reports
// whether the transition from -> to was applied.
func (r *InstructorRepository) SetScheduleStatus(ctx context.Context, id int64, from, to model.ScheduleStatus) (bool, error) {
	query := `
		UPDATE instructors
		SET schedule_status = $3, updated_at = now()
		WHERE id = $1 AND schedule_status = $2
	`

	result, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("set schedule status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SetOverrideDay writes the override slots for one day-of-month key.
// Overrides bypass the approval workflow and never touch schedule_status.
func (r *InstructorRepository) SetOverrideDay(ctx context.Context, id int64, dayKey string, times []string) error {
	query := `
		UPDATE instructors
		SET overrides = jsonb_set(overrides, ARRAY[$2], $3, true), updated_at = now()
		WHERE id = $1
	`

	if times == nil {
		times = []string{}
	}

	result, err := r.pool.Exec(ctx, query, id, dayKey, times)
	if err != nil {
		return fmt.Errorf("set override day: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("instructor not found")
	}

	return nil
}
