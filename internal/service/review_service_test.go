package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReviewRatingBounds(t *testing.T) {
	svc := NewReviewService(newFakeReviewStore(), testLogger())
	ctx := context.Background()

	for _, rating := range []int{-1, 0, 6, 100} {
		_, err := svc.AddReview(ctx, AddReviewRequest{InstructorID: 1, Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidInput, "rating %d", rating)
	}

	for rating := 1; rating <= 5; rating++ {
		review, err := svc.AddReview(ctx, AddReviewRequest{InstructorID: 1, Rating: rating})
		require.NoError(t, err, "rating %d", rating)
		assert.NotZero(t, review.ID)
	}
}

func TestAverageRating(t *testing.T) {
	svc := NewReviewService(newFakeReviewStore(), testLogger())
	ctx := context.Background()

	// Unreviewed instructors average to zero.
	avg, err := svc.AverageRating(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, avg)

	for _, rating := range []int{5, 4, 3} {
		_, err := svc.AddReview(ctx, AddReviewRequest{InstructorID: 7, UserID: 2, Rating: rating})
		require.NoError(t, err)
	}
	// A different instructor's rating must not bleed in.
	_, err = svc.AddReview(ctx, AddReviewRequest{InstructorID: 8, UserID: 2, Rating: 1})
	require.NoError(t, err)

	avg, err = svc.AverageRating(ctx, 7)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)
}

func TestListReviews(t *testing.T) {
	svc := NewReviewService(newFakeReviewStore(), testLogger())
	ctx := context.Background()

	_, err := svc.AddReview(ctx, AddReviewRequest{InstructorID: 7, UserID: 2, StudentName: "Omar", Rating: 5, Comment: "excellent"})
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, AddReviewRequest{InstructorID: 7, UserID: 3, StudentName: "Lina", Rating: 4})
	require.NoError(t, err)

	reviews, err := svc.ListReviews(ctx, 7)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	// Newest first.
	assert.Equal(t, "Lina", reviews[0].StudentName)
	assert.Equal(t, "Omar", reviews[1].StudentName)
	assert.Equal(t, "excellent", reviews[1].Comment)
}

// The same guardian may review the same instructor more than once; each
// submission counts toward the average.
func TestRepeatReviewsAllowed(t *testing.T) {
	svc := NewReviewService(newFakeReviewStore(), testLogger())
	ctx := context.Background()

	_, err := svc.AddReview(ctx, AddReviewRequest{InstructorID: 7, UserID: 2, Rating: 5})
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, AddReviewRequest{InstructorID: 7, UserID: 2, Rating: 3})
	require.NoError(t, err)

	avg, err := svc.AverageRating(ctx, 7)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, avg, 1e-9)
}
