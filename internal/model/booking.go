package model

import "time"

type BookingStatus string

const (
	BookingStatusAwaitingPayment BookingStatus = "awaiting_payment"
	BookingStatusAwaitingReview  BookingStatus = "awaiting_review"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusCancelled       BookingStatus = "cancelled"
)

// bookingTransitions is the single source of truth for legal status
// changes. Statuses are never assigned outside of it.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusAwaitingPayment: {BookingStatusAwaitingReview, BookingStatusCancelled},
	BookingStatusAwaitingReview:  {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:       {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:       {BookingStatusCancelled},
	BookingStatusCancelled:       {},
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// Active reports whether a booking in this status still holds its slot.
func (s BookingStatus) Active() bool {
	return s != BookingStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID           int64         `json:"id"`
	StudentID    int64         `json:"student_id"`
	GuardianID   int64         `json:"guardian_id"`
	InstructorID int64         `json:"instructor_id"`
	PackageID    int64         `json:"package_id"`
	ChildID      int64         `json:"child_id"`
	Date         time.Time     `json:"date"` // calendar date, midnight in the operating location
	Time         string        `json:"time"` // time-of-day string, e.g. "10:00 ص"
	Status       BookingStatus `json:"status"`
	TotalCents   int64         `json:"total_cents"`
	SessionID    *string       `json:"session_id"`     // opaque session-link token, assigned once
	ProgressNote *string       `json:"progress_notes"` // free text, last write wins
	ReceiptRef   *string       `json:"receipt_ref"`    // external payment reference
	ShippingInfo *string       `json:"shipping_info"`  // opaque passthrough from the payment collaborator
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
