// Package queue defines message payloads handed to the notification
// collaborator over the message broker.
package queue

// BookingConfirmedEvent is published when a booking reaches confirmed.
// Delivery is fire-and-forget: a failed publish never rolls back the
// status transition that produced it.
type BookingConfirmedEvent struct {
	BookingID    int64  `json:"booking_id"`
	UserID       int64  `json:"user_id"` // the guardian who booked
	InstructorID int64  `json:"instructor_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	TotalCents   int64  `json:"total_cents"`
	Message      string `json:"message"`
	ConfirmedAt  string `json:"confirmed_at"`
}
