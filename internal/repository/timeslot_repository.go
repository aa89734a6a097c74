package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/consultant-booking/internal/model"
	"github.com/iliyamo/consultant-booking/internal/schedule"
)

// TimeSlotRepo provides CRUD operations for instructor time slots.
// Availability is stored on the row and mutated only by the booking
// operations; every such mutation runs inside a transaction together
// with the booking change it belongs to.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo returns a TimeSlotRepo bound to the given database.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning slot and booking mutations.
func (r *TimeSlotRepo) DB() *sql.DB { return r.db }

// Create inserts a single slot for an instructor and returns the stored
// record. The caller must have validated that end is after start.
func (r *TimeSlotRepo) Create(ctx context.Context, instructorID uint64, start, end time.Time, notes *string) (model.TimeSlot, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO time_slots (instructor_id, start_time, end_time, is_available, notes) VALUES (?, ?, ?, 1, ?)`,
		instructorID, start.UTC(), end.UTC(), notes)
	if err != nil {
		return model.TimeSlot{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TimeSlot{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// CreateBatch persists all intervals produced by the slot generator in
// one multi-row insert and returns the created records in start-time
// order. MySQL allocates consecutive ids for a single multi-row insert,
// so the created rows are read back by id range.
func (r *TimeSlotRepo) CreateBatch(ctx context.Context, instructorID uint64, intervals []schedule.Interval) ([]model.TimeSlot, error) {
	if len(intervals) == 0 {
		return []model.TimeSlot{}, nil
	}
	query := `INSERT INTO time_slots (instructor_id, start_time, end_time, is_available) VALUES `
	args := make([]interface{}, 0, len(intervals)*3)
	for i, iv := range intervals {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, 1)"
		args = append(args, instructorID, iv.Start.UTC(), iv.End.UTC())
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	firstID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	const sel = `SELECT id, instructor_id, start_time, end_time, is_available, notes, created_at
                 FROM time_slots
                 WHERE id >= ? AND id < ? AND instructor_id = ?
                 ORDER BY start_time, id`
	rows, err := r.db.QueryContext(ctx, sel, firstID, firstID+int64(len(intervals)), instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TimeSlot, 0, len(intervals))
	for rows.Next() {
		var ts model.TimeSlot
		var notes sql.NullString
		if err := rows.Scan(&ts.ID, &ts.InstructorID, &ts.StartTime, &ts.EndTime, &ts.IsAvailable, &notes, &ts.CreatedAt); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			ts.Notes = &n
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a single slot. ErrSlotNotFound is returned when the id
// does not exist.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (model.TimeSlot, error) {
	return scanSlot(r.db.QueryRowContext(ctx,
		`SELECT id, instructor_id, start_time, end_time, is_available, notes, created_at FROM time_slots WHERE id = ?`, id))
}

// GetByIDForUpdateTx loads a slot within the given transaction while
// acquiring a row lock. Concurrent booking attempts on the same slot
// serialize on this lock, so the second caller observes the flipped
// availability flag instead of double-booking.
func (r *TimeSlotRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.TimeSlot, error) {
	return scanSlot(tx.QueryRowContext(ctx,
		`SELECT id, instructor_id, start_time, end_time, is_available, notes, created_at FROM time_slots WHERE id = ? FOR UPDATE`, id))
}

type slotScanner interface{ Scan(dest ...interface{}) error }

func scanSlot(row slotScanner) (model.TimeSlot, error) {
	var ts model.TimeSlot
	var notes sql.NullString
	err := row.Scan(&ts.ID, &ts.InstructorID, &ts.StartTime, &ts.EndTime, &ts.IsAvailable, &notes, &ts.CreatedAt)
	if err == sql.ErrNoRows {
		return model.TimeSlot{}, ErrSlotNotFound
	}
	if err != nil {
		return model.TimeSlot{}, err
	}
	if notes.Valid {
		n := notes.String
		ts.Notes = &n
	}
	return ts, nil
}

// SetAvailabilityTx flips the availability flag within a transaction.
// This is the only write path for time_slots.is_available.
func (r *TimeSlotRepo) SetAvailabilityTx(ctx context.Context, tx *sql.Tx, id uint64, available bool) error {
	_, err := tx.ExecContext(ctx, `UPDATE time_slots SET is_available = ? WHERE id = ?`, available, id)
	return err
}

// TimeSlotDetail is a slot row enriched with the instructor's display
// name and, on instructor-facing listings, the booking attached to it.
type TimeSlotDetail struct {
	ID             uint64         `json:"id"`
	InstructorID   uint64         `json:"instructor_id"`
	InstructorName string         `json:"instructor_name"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time"`
	IsAvailable    bool           `json:"is_available"`
	Notes          *string        `json:"notes,omitempty"`
	Booking        *BookingDetail `json:"booking,omitempty"`
}

// ListAvailable returns slots that are open and start in the future,
// ordered by start time ascending. When instructorID is non-nil the
// listing is scoped to that instructor.
func (r *TimeSlotRepo) ListAvailable(ctx context.Context, instructorID *uint64) ([]TimeSlotDetail, error) {
	q := `SELECT ts.id, ts.instructor_id, u.full_name, ts.start_time, ts.end_time, ts.is_available, ts.notes
          FROM time_slots ts
          JOIN users u ON u.id = ts.instructor_id
          WHERE ts.is_available = 1 AND ts.start_time > UTC_TIMESTAMP()`
	args := []interface{}{}
	if instructorID != nil {
		q += ` AND ts.instructor_id = ?`
		args = append(args, *instructorID)
	}
	q += ` ORDER BY ts.start_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TimeSlotDetail, 0)
	for rows.Next() {
		var d TimeSlotDetail
		var notes sql.NullString
		if err := rows.Scan(&d.ID, &d.InstructorID, &d.InstructorName, &d.StartTime, &d.EndTime, &d.IsAvailable, &notes); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			d.Notes = &n
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForInstructor returns an instructor's own slots from seven days
// in the past onward, each with its booking (and the booker's identity)
// when one exists. Recent history is included so instructors can still
// see consultations that just happened.
func (r *TimeSlotRepo) ListForInstructor(ctx context.Context, instructorID uint64) ([]TimeSlotDetail, error) {
	const q = `SELECT ts.id, ts.instructor_id, iu.full_name, ts.start_time, ts.end_time, ts.is_available, ts.notes,
                      b.id, b.user_id, bu.full_name, bu.email, b.topic, b.description, b.status,
                      b.meeting_url, b.cancellation_reason, b.created_at, b.approved_at, b.cancelled_at
               FROM time_slots ts
               JOIN users iu ON iu.id = ts.instructor_id
               LEFT JOIN bookings b ON b.time_slot_id = ts.id
               LEFT JOIN users bu ON bu.id = b.user_id
               WHERE ts.instructor_id = ? AND ts.start_time > UTC_TIMESTAMP() - INTERVAL 7 DAY
               ORDER BY ts.start_time`
	rows, err := r.db.QueryContext(ctx, q, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TimeSlotDetail, 0)
	for rows.Next() {
		var d TimeSlotDetail
		var notes sql.NullString
		var (
			bID                sql.NullInt64
			bUserID            sql.NullInt64
			bUserName, bEmail  sql.NullString
			bTopic, bDesc      sql.NullString
			bStatus            sql.NullString
			bMeetingURL        sql.NullString
			bReason            sql.NullString
			bCreated           sql.NullTime
			bApproved, bCancel sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.InstructorID, &d.InstructorName, &d.StartTime, &d.EndTime, &d.IsAvailable, &notes,
			&bID, &bUserID, &bUserName, &bEmail, &bTopic, &bDesc, &bStatus,
			&bMeetingURL, &bReason, &bCreated, &bApproved, &bCancel); err != nil {
			return nil, err
		}
		if notes.Valid {
			n := notes.String
			d.Notes = &n
		}
		if bID.Valid {
			bd := &BookingDetail{
				ID:             uint64(bID.Int64),
				TimeSlotID:     d.ID,
				UserID:         uint64(bUserID.Int64),
				UserName:       bUserName.String,
				UserEmail:      bEmail.String,
				InstructorID:   d.InstructorID,
				InstructorName: d.InstructorName,
				StartTime:      d.StartTime,
				EndTime:        d.EndTime,
				Topic:          bTopic.String,
				Status:         bStatus.String,
				CreatedAt:      bCreated.Time,
			}
			if bDesc.Valid {
				v := bDesc.String
				bd.Description = &v
			}
			if bMeetingURL.Valid {
				v := bMeetingURL.String
				bd.MeetingUrl = &v
			}
			if bReason.Valid {
				v := bReason.String
				bd.CancellationReason = &v
			}
			if bApproved.Valid {
				t := bApproved.Time
				bd.ApprovedAt = &t
			}
			if bCancel.Valid {
				t := bCancel.Time
				bd.CancelledAt = &t
			}
			d.Booking = bd
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDAndOwner removes a slot owned by the given instructor.
// Admins may delete any slot. Deletion is refused with ErrConflict
// whenever any booking row references the slot, regardless of that
// booking's status: bookings are kept for history and a slot that was
// ever booked stays on record. Returns ErrSlotNotFound for unknown ids
// and ErrForbidden when the slot belongs to someone else.
func (r *TimeSlotRepo) DeleteByIDAndOwner(ctx context.Context, id, requesterID uint64, isAdmin bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var instructorID uint64
	err = tx.QueryRowContext(ctx, `SELECT instructor_id FROM time_slots WHERE id = ? FOR UPDATE`, id).Scan(&instructorID)
	if err == sql.ErrNoRows {
		return ErrSlotNotFound
	}
	if err != nil {
		return err
	}
	if instructorID != requesterID && !isAdmin {
		return ErrForbidden
	}
	var bookings int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE time_slot_id = ?`, id).Scan(&bookings); err != nil {
		return err
	}
	if bookings > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slots WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
