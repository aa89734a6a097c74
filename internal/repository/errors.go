// Package repository defines error types reused across repositories.
// These sentinel values let handlers distinguish failure scenarios and
// map them to HTTP responses: ErrForbidden becomes 403, ErrConflict and
// ErrSlotUnavailable become 409, the not-found values become 404.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a time slot that has ever had a
// booking attached to it.
var ErrConflict = errors.New("conflict")

// ErrSlotUnavailable is returned when a booking is attempted against a
// slot whose availability flag is already false.
var ErrSlotUnavailable = errors.New("time slot is not available")

// ErrSlotNotFound is returned when a referenced time slot id does not exist.
var ErrSlotNotFound = errors.New("time slot not found")

// ErrBookingNotFound is returned when a referenced booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEmailExists is returned on registration with a duplicate email.
var ErrEmailExists = errors.New("email already exists")
