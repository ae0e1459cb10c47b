package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusfolio/platform/internal/records"
)

// AnnouncementStore implements records.AnnouncementStore on Postgres.
type AnnouncementStore struct {
	db DB
}

// NewAnnouncementStore constructs an AnnouncementStore over an existing pool.
func NewAnnouncementStore(db DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

const announcementColumns = `id, tenant_id, title, body, category, source_url, starts_at, ends_at,
external_key, status, created_by, reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

const insertAnnouncement = `
INSERT INTO announcements (id, tenant_id, title, body, category, source_url, starts_at, ends_at,
	external_key, status, created_by, reviewed_by, reviewed_at, rejection_reason, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

// Create inserts an announcement row unconditionally.
func (s *AnnouncementStore) Create(ctx context.Context, a records.Announcement) error {
	if _, err := s.db.Exec(ctx, insertAnnouncement, announcementArgs(a)...); err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

// CreateIfAbsent relies on the (tenant_id, external_key) unique constraint:
// ON CONFLICT DO NOTHING makes the insert atomic under concurrent runs, and
// a zero row count means the key was already seen.
func (s *AnnouncementStore) CreateIfAbsent(ctx context.Context, a records.Announcement) (bool, error) {
	q := insertAnnouncement + `
ON CONFLICT (tenant_id, external_key) DO NOTHING`
	tag, err := s.db.Exec(ctx, q, announcementArgs(a)...)
	if err != nil {
		return false, fmt.Errorf("insert announcement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// QueryByID fetches an announcement row.
func (s *AnnouncementStore) QueryByID(ctx context.Context, id uuid.UUID) (records.Announcement, error) {
	q := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	a, err := scanAnnouncement(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return records.Announcement{}, records.ErrNotFound
		}
		return records.Announcement{}, fmt.Errorf("query announcement: %w", err)
	}
	return a, nil
}

// ListPending returns the tenant's pending announcements, newest first.
func (s *AnnouncementStore) ListPending(ctx context.Context, tenantID uuid.UUID) ([]records.Announcement, error) {
	q := `SELECT ` + announcementColumns + ` FROM announcements
WHERE tenant_id = $1 AND status = 'pending' ORDER BY created_at DESC`
	return s.list(ctx, q, tenantID)
}

// ListApproved returns approved announcements, most recently approved first.
func (s *AnnouncementStore) ListApproved(ctx context.Context, tenantID uuid.UUID, limit int) ([]records.Announcement, error) {
	q := `SELECT ` + announcementColumns + ` FROM announcements
WHERE tenant_id = $1 AND status = 'approved' ORDER BY reviewed_at DESC LIMIT $2`
	return s.list(ctx, q, tenantID, limit)
}

// TransitionFromPending updates the row only while its status is still
// pending, so the state check and mutation are one statement.
func (s *AnnouncementStore) TransitionFromPending(ctx context.Context, a records.Announcement) error {
	const q = `
UPDATE announcements
SET status = $2, source_url = $3, ends_at = $4, reviewed_by = $5, reviewed_at = $6,
	rejection_reason = $7, updated_at = $8
WHERE id = $1 AND status = 'pending'`
	tag, err := s.db.Exec(ctx, q,
		a.ID, string(a.Status), a.SourceURL, a.EndsAt, a.ReviewedBy, a.ReviewedAt,
		a.RejectionReason, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("transition announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.transitionFailure(ctx, a.ID)
	}
	return nil
}

// Delete removes an announcement row permanently.
func (s *AnnouncementStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (s *AnnouncementStore) transitionFailure(ctx context.Context, id uuid.UUID) error {
	var status string
	err := s.db.QueryRow(ctx, `SELECT status FROM announcements WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query announcement status: %w", err)
	}
	return records.NewConflictError("announcement already " + status)
}

func (s *AnnouncementStore) list(ctx context.Context, q string, args ...any) ([]records.Announcement, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query announcements: %w", err)
	}
	defer rows.Close()

	var out []records.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate announcements: %w", err)
	}
	return out, nil
}

func announcementArgs(a records.Announcement) []any {
	var externalKey *string
	if a.ExternalKey != "" {
		externalKey = &a.ExternalKey
	}
	return []any{
		a.ID, a.TenantID, a.Title, a.Body, string(a.Category), a.SourceURL, a.StartsAt, a.EndsAt,
		externalKey, string(a.Status), a.CreatedBy, a.ReviewedBy, a.ReviewedAt,
		a.RejectionReason, a.CreatedAt, a.UpdatedAt,
	}
}

func scanAnnouncement(row pgx.Row) (records.Announcement, error) {
	var (
		a           records.Announcement
		category    string
		status      string
		externalKey *string
	)
	err := row.Scan(
		&a.ID, &a.TenantID, &a.Title, &a.Body, &category, &a.SourceURL, &a.StartsAt, &a.EndsAt,
		&externalKey, &status, &a.CreatedBy, &a.ReviewedBy, &a.ReviewedAt,
		&a.RejectionReason, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return records.Announcement{}, err
	}
	a.Category = records.Category(category)
	a.Status = records.ApprovalStatus(status)
	if externalKey != nil {
		a.ExternalKey = *externalKey
	}
	return a, nil
}
