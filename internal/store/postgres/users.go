package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusfolio/platform/internal/records"
)

// UserStore implements records.UserStore on Postgres.
type UserStore struct {
	db DB
}

// NewUserStore constructs a UserStore over an existing pool.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, tenant_id, name, email, password_hash, role, department, created_at`

// Create inserts a user row.
func (s *UserStore) Create(ctx context.Context, u records.User) error {
	const q = `
INSERT INTO users (id, tenant_id, name, email, password_hash, role, department, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := s.db.Exec(ctx, q,
		u.ID, u.TenantID, u.Name, strings.ToLower(u.Email),
		u.PasswordHash, string(u.Role), u.Department, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// QueryByID fetches a user row.
func (s *UserStore) QueryByID(ctx context.Context, userID uuid.UUID) (records.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.one(ctx, q, userID)
}

// QueryByEmail fetches a user row by email, case-insensitively.
func (s *UserStore) QueryByEmail(ctx context.Context, email string) (records.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.one(ctx, q, strings.ToLower(email))
}

// FindReviewActor returns an admin of the tenant if one exists, else any
// faculty member, else ErrNotFound.
func (s *UserStore) FindReviewActor(ctx context.Context, tenantID uuid.UUID) (records.User, error) {
	q := `SELECT ` + userColumns + ` FROM users
WHERE tenant_id = $1 AND role IN ('admin','faculty')
ORDER BY CASE role WHEN 'admin' THEN 0 ELSE 1 END, created_at
LIMIT 1`
	return s.one(ctx, q, tenantID)
}

func (s *UserStore) one(ctx context.Context, q string, args ...any) (records.User, error) {
	var (
		u    records.User
		role string
	)
	err := s.db.QueryRow(ctx, q, args...).Scan(
		&u.ID, &u.TenantID, &u.Name, &u.Email, &u.PasswordHash,
		&role, &u.Department, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return records.User{}, records.ErrNotFound
		}
		return records.User{}, fmt.Errorf("query user: %w", err)
	}
	u.Role = records.Role(role)
	return u, nil
}
