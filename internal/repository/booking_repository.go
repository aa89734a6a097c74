package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/consultant-booking/internal/model"
)

// BookingRepo provides persistence for consultation bookings. Creation
// and every status transition run inside a caller-supplied transaction
// so the booking change and the matching slot-availability flip commit
// or roll back together.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for opening transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a Pending booking within the provided transaction
// and populates the generated id and created_at on the record. The
// caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (time_slot_id, user_id, topic, description, status) VALUES (?, ?, ?, ?, ?)`,
		b.TimeSlotID, b.UserID, b.Topic, b.Description, model.StatusPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.StatusPending
	return tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt)
}

// GetForUpdateTx loads a booking and the instructor owning its slot
// within a transaction, locking both the booking row and the slot row.
// Status transitions serialize on these locks. ErrBookingNotFound is
// returned for unknown ids.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Booking, uint64, error) {
	const q = `SELECT b.id, b.time_slot_id, b.user_id, b.topic, b.description, b.status,
                      b.meeting_url, b.cancellation_reason, b.created_at, b.approved_at, b.cancelled_at,
                      ts.instructor_id
               FROM bookings b
               JOIN time_slots ts ON ts.id = b.time_slot_id
               WHERE b.id = ?
               FOR UPDATE`
	var (
		b            model.Booking
		desc, url    sql.NullString
		reason       sql.NullString
		approved     sql.NullTime
		cancelled    sql.NullTime
		status       string
		instructorID uint64
	)
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.TimeSlotID, &b.UserID, &b.Topic, &desc, &status,
		&url, &reason, &b.CreatedAt, &approved, &cancelled,
		&instructorID,
	)
	if err == sql.ErrNoRows {
		return model.Booking{}, 0, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, 0, err
	}
	b.Status = model.BookingStatus(status)
	if desc.Valid {
		v := desc.String
		b.Description = &v
	}
	if url.Valid {
		v := url.String
		b.MeetingUrl = &v
	}
	if reason.Valid {
		v := reason.String
		b.CancellationReason = &v
	}
	if approved.Valid {
		t := approved.Time
		b.ApprovedAt = &t
	}
	if cancelled.Valid {
		t := cancelled.Time
		b.CancelledAt = &t
	}
	return b, instructorID, nil
}

// ApproveTx marks a booking approved, recording the approval time and
// the meeting URL the instructor supplied (may be nil; it can be added
// later by approving staff out of band).
func (r *BookingRepo) ApproveTx(ctx context.Context, tx *sql.Tx, id uint64, meetingURL *string, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, meeting_url = ?, approved_at = ? WHERE id = ?`,
		model.StatusApproved, meetingURL, at.UTC(), id)
	return err
}

// RejectTx marks a booking rejected with the given reason. The caller
// releases the slot in the same transaction.
func (r *BookingRepo) RejectTx(ctx context.Context, tx *sql.Tx, id uint64, reason *string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancellation_reason = ? WHERE id = ?`,
		model.StatusRejected, reason, id)
	return err
}

// CancelTx marks a booking cancelled, recording the reason and the
// cancellation time. The caller releases the slot in the same
// transaction.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64, reason *string, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancellation_reason = ?, cancelled_at = ? WHERE id = ?`,
		model.StatusCancelled, reason, at.UTC(), id)
	return err
}

// CompleteTx marks an approved booking completed. No other field
// changes and the slot stays unavailable.
func (r *BookingRepo) CompleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, model.StatusCompleted, id)
	return err
}

// BookingDetail is a booking enriched with the slot interval and the
// identities on both sides, as returned by the listing endpoints.
type BookingDetail struct {
	ID                 uint64     `json:"id"`
	TimeSlotID         uint64     `json:"time_slot_id"`
	UserID             uint64     `json:"user_id"`
	UserName           string     `json:"user_name"`
	UserEmail          string     `json:"user_email"`
	InstructorID       uint64     `json:"instructor_id"`
	InstructorName     string     `json:"instructor_name"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Topic              string     `json:"topic"`
	Description        *string    `json:"description,omitempty"`
	Status             string     `json:"status"`
	MeetingUrl         *string    `json:"meeting_url,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

const bookingDetailQuery = `SELECT b.id, b.time_slot_id, b.user_id, bu.full_name, bu.email,
                                   ts.instructor_id, iu.full_name, ts.start_time, ts.end_time,
                                   b.topic, b.description, b.status, b.meeting_url,
                                   b.cancellation_reason, b.created_at, b.approved_at, b.cancelled_at
                            FROM bookings b
                            JOIN time_slots ts ON ts.id = b.time_slot_id
                            JOIN users bu ON bu.id = b.user_id
                            JOIN users iu ON iu.id = ts.instructor_id`

// ListByUser returns all bookings made by a user, newest slot start
// first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := bookingDetailQuery + ` WHERE b.user_id = ? ORDER BY ts.start_time DESC`
	return r.listDetails(ctx, q, userID)
}

// ListByInstructor returns all bookings against any of an instructor's
// slots, newest slot start first.
func (r *BookingRepo) ListByInstructor(ctx context.Context, instructorID uint64) ([]BookingDetail, error) {
	q := bookingDetailQuery + ` WHERE ts.instructor_id = ? ORDER BY ts.start_time DESC`
	return r.listDetails(ctx, q, instructorID)
}

// GetDetail loads a single booking with its enrichment, used to build
// responses after a mutation. ErrBookingNotFound for unknown ids.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (BookingDetail, error) {
	details, err := r.listDetails(ctx, bookingDetailQuery+` WHERE b.id = ?`, id)
	if err != nil {
		return BookingDetail{}, err
	}
	if len(details) == 0 {
		return BookingDetail{}, ErrBookingNotFound
	}
	return details[0], nil
}

func (r *BookingRepo) listDetails(ctx context.Context, query string, arg interface{}) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d                  BookingDetail
			desc, url, reason  sql.NullString
			approved, cancelld sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.TimeSlotID, &d.UserID, &d.UserName, &d.UserEmail,
			&d.InstructorID, &d.InstructorName, &d.StartTime, &d.EndTime,
			&d.Topic, &desc, &d.Status, &url,
			&reason, &d.CreatedAt, &approved, &cancelld); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			d.Description = &v
		}
		if url.Valid {
			v := url.String
			d.MeetingUrl = &v
		}
		if reason.Valid {
			v := reason.String
			d.CancellationReason = &v
		}
		if approved.Valid {
			t := approved.Time
			d.ApprovedAt = &t
		}
		if cancelld.Valid {
			t := cancelld.Time
			d.CancelledAt = &t
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
