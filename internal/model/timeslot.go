package model

import "time"

// TimeSlot is a bounded interval published by an instructor that can be
// booked by exactly one user at a time. Availability is stored rather
// than derived: IsAvailable flips to false when a booking is created
// against the slot and back to true when that booking is rejected or
// cancelled. Only the booking operations mutate the flag.
//
// Fields:
//  ID           – primary key identifier.
//  InstructorID – instructor who owns the slot.
//  StartTime    – when the consultation begins (UTC).
//  EndTime      – when it ends; always after StartTime.
//  IsAvailable  – whether a new booking may be created against the slot.
//  Notes        – optional free text shown to bookers.
//  CreatedAt    – creation timestamp.
type TimeSlot struct {
	ID           uint64    // time_slots.id
	InstructorID uint64    // time_slots.instructor_id
	StartTime    time.Time // time_slots.start_time
	EndTime      time.Time // time_slots.end_time
	IsAvailable  bool      // time_slots.is_available
	Notes        *string   // time_slots.notes (nullable)
	CreatedAt    time.Time // time_slots.created_at
}
