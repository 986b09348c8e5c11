// Package service implements the availability, booking and review
// operations on top of the stores. The sentinel errors below are the
// engine's business error kinds; callers branch on them with errors.Is
// and translate them into user-facing responses. Infrastructure failures
// are wrapped separately and never masquerade as business errors.
package service

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput covers malformed time strings, unknown weekday or
	// day-of-month keys and out-of-range ratings.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState signals a transition that is illegal for the
	// entity's current status.
	ErrInvalidState = errors.New("invalid state")

	// ErrSlotUnavailable means the requested slot is not resolvable from
	// the instructor's availability or is already held by an active
	// booking.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrAlreadyPending rejects a schedule proposal while a previous one
	// still awaits review.
	ErrAlreadyPending = errors.New("schedule proposal already pending")

	// ErrConfirmationRequired gates cancellation behind an explicit
	// confirmation flag from the operator.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrNotFound is returned when the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// Clock supplies the current time. Injected so date-dependent behavior
// is deterministic in tests; nil falls back to time.Now.
type Clock func() time.Time
