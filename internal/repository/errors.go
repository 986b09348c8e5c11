// Package repository implements PostgreSQL persistence for instructors,
// bookings and reviews. Sentinel errors below are part of the store
// contract; services branch on them with errors.Is.
package repository

import "errors"

// ErrSlotTaken is returned when inserting a booking collides with an
// active booking for the same (instructor, date, time). It is backed by
// the partial unique index on bookings.
var ErrSlotTaken = errors.New("slot already taken")
