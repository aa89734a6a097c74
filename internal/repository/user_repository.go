package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/consultant-booking/internal/model"
	"github.com/iliyamo/consultant-booking/internal/utils"
)

// UserRepo provides persistence for users. Besides the auth lookups it
// serves the consultant directory: the public listing of active
// instructors annotated with how many future slots each one has open.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. The email is normalized to
// lower case; a duplicate yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, role, fullName string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, full_name) VALUES (?,?,?,?)",
		email, hash, role, fullName)
	if err != nil {
		// MySQL error 1062 is a duplicate key violation.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,full_name,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,full_name,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FullName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Consultant is one row of the public consultant directory. The count
// of open future slots is computed at query time, never stored.
type Consultant struct {
	ID                  uint64 `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	AvailableSlotsCount int    `json:"available_slots_count"`
}

// ListConsultants returns all active instructors together with the
// number of available slots starting in the future. A single grouped
// query avoids one count query per instructor.
func (r *UserRepo) ListConsultants(ctx context.Context) ([]Consultant, error) {
	const q = `SELECT u.id, u.full_name, u.email, COUNT(ts.id)
               FROM users u
               LEFT JOIN time_slots ts
                 ON ts.instructor_id = u.id
                AND ts.is_available = 1
                AND ts.start_time > UTC_TIMESTAMP()
               WHERE u.role = ? AND u.is_active = 1
               GROUP BY u.id, u.full_name, u.email
               ORDER BY u.full_name, u.id`
	rows, err := r.DB.QueryContext(ctx, q, model.RoleInstructor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Consultant, 0)
	for rows.Next() {
		var c Consultant
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.AvailableSlotsCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
