package model

import (
	"errors"
	"time"
)

// BookingStatus is the closed set of states a booking moves through.
// Values match the strings stored in the bookings.status column and
// accepted on the status update endpoint.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusApproved  BookingStatus = "Approved"
	StatusRejected  BookingStatus = "Rejected"
	StatusCancelled BookingStatus = "Cancelled"
	StatusCompleted BookingStatus = "Completed"
)

// ErrUnknownStatus is returned by ParseStatus for any value outside the
// defined enum. Unknown statuses are rejected instead of being stored
// as free text.
var ErrUnknownStatus = errors.New("unknown booking status")

// ErrInvalidTransition is returned when a requested status change is
// not permitted from the booking's current state.
var ErrInvalidTransition = errors.New("invalid status transition")

// ParseStatus validates a raw status string against the enum.
func ParseStatus(raw string) (BookingStatus, error) {
	switch BookingStatus(raw) {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return BookingStatus(raw), nil
	}
	return "", ErrUnknownStatus
}

// CanTransitionTo reports whether a booking in status s may move to
// next. Pending bookings can be approved, rejected or cancelled;
// approved bookings can be cancelled or completed. Rejected, Cancelled
// and Completed are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected || next == StatusCancelled
	case StatusApproved:
		return next == StatusCancelled || next == StatusCompleted
	}
	return false
}

// IsTerminal reports whether no further status change is defined from s.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled || s == StatusCompleted
}

// ReleasesSlot reports whether entering status s hands the time slot
// back to the available pool.
func (s BookingStatus) ReleasesSlot() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Booking records a user's request to occupy a time slot together with
// the approval workflow state. Bookings are never hard-deleted; a
// cancelled or rejected booking stays attached to its slot for history,
// which is also why slot deletion is refused once any booking exists.
//
// Fields:
//  ID                 – primary key identifier.
//  TimeSlotID         – the slot this booking occupies (one booking per slot).
//  UserID             – user who requested the consultation.
//  Topic              – required subject of the consultation.
//  Description        – optional details supplied by the booker.
//  Status             – current workflow state.
//  MeetingUrl         – set when the booking is approved.
//  CancellationReason – set when the booking is rejected or cancelled.
//  CreatedAt          – when the booking was requested.
//  ApprovedAt         – when it was approved (null until then).
//  CancelledAt        – when it was cancelled (null until then).
type Booking struct {
	ID                 uint64        // bookings.id
	TimeSlotID         uint64        // bookings.time_slot_id
	UserID             uint64        // bookings.user_id
	Topic              string        // bookings.topic
	Description        *string       // bookings.description (nullable)
	Status             BookingStatus // bookings.status
	MeetingUrl         *string       // bookings.meeting_url (nullable)
	CancellationReason *string       // bookings.cancellation_reason (nullable)
	CreatedAt          time.Time     // bookings.created_at
	ApprovedAt         *time.Time    // bookings.approved_at (nullable)
	CancelledAt        *time.Time    // bookings.cancelled_at (nullable)
}
