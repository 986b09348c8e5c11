package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkashlan/muallim/internal/model"
)

// ReviewStore is the persistence contract for reviews.
type ReviewStore interface {
	Create(ctx context.Context, review *model.Review) error
	ListByInstructorID(ctx context.Context, instructorID int64) ([]*model.Review, error)
	AverageByInstructorID(ctx context.Context, instructorID int64) (float64, error)
}

type AddReviewRequest struct {
	InstructorID int64
	UserID       int64
	StudentName  string
	Rating       int
	Comment      string
}

type ReviewService struct {
	reviews ReviewStore
	logger  *zap.Logger
}

func NewReviewService(reviews ReviewStore, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, logger: logger}
}

// AddReview appends a rating for an instructor. The caller is trusted to
// have verified the underlying booking reached completed.
func (s *ReviewService) AddReview(ctx context.Context, req AddReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating %d must be between 1 and 5", ErrInvalidInput, req.Rating)
	}

	review := &model.Review{
		InstructorID: req.InstructorID,
		UserID:       req.UserID,
		StudentName:  req.StudentName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("Review added",
		zap.Int64("review_id", review.ID),
		zap.Int64("instructor_id", req.InstructorID),
		zap.Int("rating", req.Rating),
	)

	return review, nil
}

// ListReviews returns all reviews for an instructor, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, instructorID int64) ([]*model.Review, error) {
	return s.reviews.ListByInstructorID(ctx, instructorID)
}

// AverageRating returns the arithmetic mean rating, 0 when unreviewed.
func (s *ReviewService) AverageRating(ctx context.Context, instructorID int64) (float64, error) {
	avg, err := s.reviews.AverageByInstructorID(ctx, instructorID)
	if err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}
