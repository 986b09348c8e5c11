package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkashlan/muallim/internal/model"
)

// Full guardian journey: the instructor proposes availability, the admin
// approves it, a guardian books a resolved slot, pays, gets the session
// link, the instructor completes the session and the guardian leaves a
// review.
func TestBookingJourney(t *testing.T) {
	ctx := context.Background()
	// Thursday.
	now := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	clock := fixedClock(now)

	availability := NewAvailabilityService(newFakeInstructorStore(), nil, clock, testLogger())
	publisher := &fakePublisher{}
	bookings := NewBookingService(newFakeBookingStore(), availability, publisher, clock, testLogger())
	reviews := NewReviewService(newFakeReviewStore(), testLogger())

	instructor, err := availability.CreateInstructor(ctx, "Huda", "quran")
	require.NoError(t, err)

	require.NoError(t, availability.ProposeWeeklySchedule(ctx, instructor.ID,
		model.WeeklySchedule{"sunday": {"10:00 ص"}}))
	require.NoError(t, availability.ApproveSchedule(ctx, instructor.ID))

	from := now
	to := now.AddDate(0, 0, 14)
	slots, err := availability.ListBookableSlots(ctx, instructor.ID, from, to)
	require.NoError(t, err)
	// Two Sundays fall within the next fourteen days.
	require.Len(t, slots, 2)
	assert.Equal(t, time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC), slots[0].Date)
	assert.Equal(t, time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC), slots[1].Date)
	assert.Equal(t, "10:00 ص", slots[0].Time)

	req := CreateBookingRequest{
		StudentID:    100,
		GuardianID:   200,
		InstructorID: instructor.ID,
		ChildID:      300,
		Package:      PriceRef{ID: 1, PriceCents: 20000},
		Date:         slots[0].Date,
		Time:         slots[0].Time,
	}
	booking, err := bookings.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusAwaitingPayment, booking.Status)

	// A second guardian racing for the same slot loses.
	rival := req
	rival.GuardianID = 201
	_, err = bookings.CreateBooking(ctx, rival)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	require.NoError(t, bookings.ConfirmPayment(ctx, booking.ID, "rcpt-900", "Jeddah"))
	require.NoError(t, bookings.SetStatus(ctx, booking.ID, model.BookingStatusConfirmed, false))

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, booking.ID, events[0].BookingID)
	assert.Equal(t, "2026-01-04", events[0].Date)

	link, err := bookings.IssueSessionLink(ctx, booking.ID)
	require.NoError(t, err)
	require.NotEmpty(t, link)

	require.NoError(t, bookings.SetProgressNotes(ctx, booking.ID, "strong recitation"))
	require.NoError(t, bookings.SetStatus(ctx, booking.ID, model.BookingStatusCompleted, false))

	_, err = reviews.AddReview(ctx, AddReviewRequest{
		InstructorID: instructor.ID,
		UserID:       req.GuardianID,
		StudentName:  "Yusuf",
		Rating:       5,
		Comment:      "wonderful teacher",
	})
	require.NoError(t, err)

	avg, err := reviews.AverageRating(ctx, instructor.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, avg, 1e-9)

	// The completed booking still holds its slot against rebooking.
	_, err = bookings.CreateBooking(ctx, rival)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}
