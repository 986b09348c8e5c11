package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkashlan/muallim/internal/model"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create appends a review. Uniqueness per (user, instructor) is a UX
// concern left to callers, not a store constraint.
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (instructor_id, user_id, student_name, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		review.InstructorID,
		review.UserID,
		review.StudentName,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)

	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

// ListByInstructorID returns all reviews for an instructor, newest first.
func (r *ReviewRepository) ListByInstructorID(ctx context.Context, instructorID int64) ([]*model.Review, error) {
	query := `
		SELECT id, instructor_id, user_id, student_name, rating, comment, created_at
		FROM reviews
		WHERE instructor_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by instructor: %w", err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		var review model.Review
		err := rows.Scan(
			&review.ID,
			&review.InstructorID,
			&review.UserID,
			&review.StudentName,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, rows.Err()
}

// AverageByInstructorID returns the mean rating, 0 when unreviewed.
func (r *ReviewRepository) AverageByInstructorID(ctx context.Context, instructorID int64) (float64, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE instructor_id = $1
	`

	var avg float64
	err := r.pool.QueryRow(ctx, query, instructorID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average rating by instructor: %w", err)
	}

	return avg, nil
}
