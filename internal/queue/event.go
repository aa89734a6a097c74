// Package queue defines the messages exchanged over the broker and the
// background consumer that records them.
package queue

// Event kinds published on the booking.events queue.
const (
	KindBookingRequested = "booking.requested"
	KindBookingApproved  = "booking.approved"
	KindBookingRejected  = "booking.rejected"
	KindBookingCancelled = "booking.cancelled"
)

// BookingEvent is emitted whenever a booking is created or changes
// state. It carries enough context for downstream consumers (audit log,
// notifications) to act without querying the primary database.
type BookingEvent struct {
	Kind           string  `json:"kind"`
	BookingID      uint64  `json:"booking_id"`
	TimeSlotID     uint64  `json:"time_slot_id"`
	UserID         uint64  `json:"user_id"`
	UserName       string  `json:"user_name"`
	InstructorID   uint64  `json:"instructor_id"`
	InstructorName string  `json:"instructor_name"`
	Topic          string  `json:"topic"`
	Status         string  `json:"status"`
	StartsAt       string  `json:"starts_at"`
	EndsAt         string  `json:"ends_at"`
	MeetingURL     *string `json:"meeting_url,omitempty"`
	Reason         *string `json:"reason,omitempty"`
	OccurredAt     string  `json:"occurred_at"`
}
