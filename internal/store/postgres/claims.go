package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusfolio/platform/internal/records"
)

// ClaimStore implements records.ClaimStore on Postgres.
type ClaimStore struct {
	db DB
}

// NewClaimStore constructs a ClaimStore over an existing pool.
func NewClaimStore(db DB) *ClaimStore {
	return &ClaimStore{db: db}
}

const claimColumns = `id, tenant_id, student_id, category, title, description, occurred_at,
proof_ref, status, reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

// Create inserts a claim row.
func (s *ClaimStore) Create(ctx context.Context, c records.Claim) error {
	const q = `
INSERT INTO claims (id, tenant_id, student_id, category, title, description, occurred_at,
	proof_ref, status, reviewed_by, reviewed_at, rejection_reason, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := s.db.Exec(ctx, q,
		c.ID, c.TenantID, c.StudentID, string(c.Category), c.Title, c.Description, c.OccurredAt,
		c.ProofRef, string(c.Status), c.ReviewedBy, c.ReviewedAt, c.RejectionReason, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// QueryByID fetches a claim row.
func (s *ClaimStore) QueryByID(ctx context.Context, claimID uuid.UUID) (records.Claim, error) {
	q := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	c, err := scanClaim(s.db.QueryRow(ctx, q, claimID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return records.Claim{}, records.ErrNotFound
		}
		return records.Claim{}, fmt.Errorf("query claim: %w", err)
	}
	return c, nil
}

// ListByStudent returns a student's claims, newest first.
func (s *ClaimStore) ListByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]records.Claim, error) {
	q := `SELECT ` + claimColumns + ` FROM claims
WHERE tenant_id = $1 AND student_id = $2 ORDER BY created_at DESC`
	return s.list(ctx, q, tenantID, studentID)
}

// ListPending returns the tenant's pending claims, newest first.
func (s *ClaimStore) ListPending(ctx context.Context, tenantID uuid.UUID) ([]records.Claim, error) {
	q := `SELECT ` + claimColumns + ` FROM claims
WHERE tenant_id = $1 AND status = 'pending' ORDER BY created_at DESC`
	return s.list(ctx, q, tenantID)
}

// ListApprovedByStudent returns approved claims ordered by occurrence date.
func (s *ClaimStore) ListApprovedByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]records.Claim, error) {
	q := `SELECT ` + claimColumns + ` FROM claims
WHERE tenant_id = $1 AND student_id = $2 AND status = 'approved' ORDER BY occurred_at`
	return s.list(ctx, q, tenantID, studentID)
}

// TransitionFromPending updates the row only while its status is still
// pending, so the state check and mutation are one statement.
func (s *ClaimStore) TransitionFromPending(ctx context.Context, c records.Claim) error {
	const q = `
UPDATE claims
SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5, updated_at = $6
WHERE id = $1 AND status = 'pending'`
	tag, err := s.db.Exec(ctx, q,
		c.ID, string(c.Status), c.ReviewedBy, c.ReviewedAt, c.RejectionReason, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("transition claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.transitionFailure(ctx, c.ID)
	}
	return nil
}

func (s *ClaimStore) transitionFailure(ctx context.Context, id uuid.UUID) error {
	var status string
	err := s.db.QueryRow(ctx, `SELECT status FROM claims WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query claim status: %w", err)
	}
	return records.NewConflictError("claim already " + status)
}

func (s *ClaimStore) list(ctx context.Context, q string, args ...any) ([]records.Claim, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var out []records.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}

func scanClaim(row pgx.Row) (records.Claim, error) {
	var (
		c        records.Claim
		category string
		status   string
	)
	err := row.Scan(
		&c.ID, &c.TenantID, &c.StudentID, &category, &c.Title, &c.Description, &c.OccurredAt,
		&c.ProofRef, &status, &c.ReviewedBy, &c.ReviewedAt, &c.RejectionReason, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return records.Claim{}, err
	}
	c.Category = records.Category(category)
	c.Status = records.ApprovalStatus(status)
	return c, nil
}
