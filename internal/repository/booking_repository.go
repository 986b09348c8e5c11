package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkashlan/muallim/internal/model"
)

const bookingColumns = `
	id, student_id, guardian_id, instructor_id, package_id, child_id,
	date, time, status, total_cents, session_id, progress_notes,
	receipt_ref, shipping_info, created_at, updated_at
`

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.StudentID,
		&b.GuardianID,
		&b.InstructorID,
		&b.PackageID,
		&b.ChildID,
		&b.Date,
		&b.Time,
		&b.Status,
		&b.TotalCents,
		&b.SessionID,
		&b.ProgressNote,
		&b.ReceiptRef,
		&b.ShippingInfo,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new booking. The partial unique index on active
// bookings makes a losing racer fail here with ErrSlotTaken.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (student_id, guardian_id, instructor_id, package_id, child_id, date, time, status, total_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		booking.StudentID,
		booking.GuardianID,
		booking.InstructorID,
		booking.PackageID,
		booking.ChildID,
		booking.Date,
		booking.Time,
		booking.Status,
		booking.TotalCents,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID returns the booking or nil when it does not exist.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetActiveBySlot returns the non-cancelled booking holding the given
// slot, or nil when the slot is free.
func (r *BookingRepository) GetActiveBySlot(ctx context.Context, instructorID int64, date time.Time, clock string) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE instructor_id = $1 AND date = $2 AND time = $3 AND status <> 'cancelled'
		LIMIT 1
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, instructorID, date, clock))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active booking by slot: %w", err)
	}

	return booking, nil
}

// UpdateStatus is a compare-and-set on the booking status. It reports
// whether the transition from -> to was applied.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to model.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`

	result, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkPaid records proof of payment and moves the booking from
// awaiting_payment to awaiting_review in one statement.
func (r *BookingRepository) MarkPaid(ctx context.Context, id int64, receiptRef, shipping string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'awaiting_review', receipt_ref = $2, shipping_info = NULLIF($3, ''), updated_at = now()
		WHERE id = $1 AND status = 'awaiting_payment'
	`

	result, err := r.pool.Exec(ctx, query, id, receiptRef, shipping)
	if err != nil {
		return false, fmt.Errorf("mark booking paid: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SetSessionID assigns the session-link token once. When another caller
// already assigned one, the stored token is returned instead.
func (r *BookingRepository) SetSessionID(ctx context.Context, id int64, token string) (string, error) {
	query := `
		UPDATE bookings
		SET session_id = $2, updated_at = now()
		WHERE id = $1 AND session_id IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, token)
	if err != nil {
		return "", fmt.Errorf("set session id: %w", err)
	}

	if result.RowsAffected() > 0 {
		return token, nil
	}

	var stored string
	err = r.pool.QueryRow(ctx, `SELECT session_id FROM bookings WHERE id = $1`, id).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("read stored session id: %w", err)
	}

	return stored, nil
}

// SetProgressNotes overwrites the progress notes, last write wins.
func (r *BookingRepository) SetProgressNotes(ctx context.Context, id int64, notes string) error {
	query := `
		UPDATE bookings
		SET progress_notes = $2, updated_at = now()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, notes)
	if err != nil {
		return fmt.Errorf("set progress notes: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// ListByGuardianID returns all bookings created by a guardian, newest
// first.
func (r *BookingRepository) ListByGuardianID(ctx context.Context, guardianID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guardian_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, guardianID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by guardian: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// ListActiveByInstructorRange returns non-cancelled bookings for an
// instructor within [from, to], ordered by date then time.
func (r *BookingRepository) ListActiveByInstructorRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE instructor_id = $1 AND status <> 'cancelled' AND date >= $2 AND date <= $3
		ORDER BY date, time
	`

	rows, err := r.pool.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings by instructor: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
