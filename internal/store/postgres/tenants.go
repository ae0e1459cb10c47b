package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusfolio/platform/internal/records"
)

// TenantStore implements records.TenantStore on Postgres.
type TenantStore struct {
	db DB
}

// NewTenantStore constructs a TenantStore over an existing pool.
func NewTenantStore(db DB) *TenantStore {
	return &TenantStore{db: db}
}

const tenantColumns = `id, name, website, allowed_domains, crawl_targets, crawl_enabled, enabled, created_at, updated_at`

// Create inserts a tenant row.
func (s *TenantStore) Create(ctx context.Context, t records.Tenant) error {
	const q = `
INSERT INTO tenants (id, name, website, allowed_domains, crawl_targets, crawl_enabled, enabled, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := s.db.Exec(ctx, q,
		t.ID, t.Name, t.Website, t.AllowedDomains, t.CrawlTargets,
		t.CrawlEnabled, t.Enabled, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// QueryByID fetches a tenant row.
func (s *TenantStore) QueryByID(ctx context.Context, tenantID uuid.UUID) (records.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	t, err := scanTenant(s.db.QueryRow(ctx, q, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return records.Tenant{}, records.ErrNotFound
		}
		return records.Tenant{}, fmt.Errorf("query tenant: %w", err)
	}
	return t, nil
}

// ListEnabled returns all enabled tenants.
func (s *TenantStore) ListEnabled(ctx context.Context) ([]records.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE enabled ORDER BY created_at`
	return s.list(ctx, q)
}

// ListCrawlEnabled returns enabled tenants with crawling switched on.
func (s *TenantStore) ListCrawlEnabled(ctx context.Context) ([]records.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE enabled AND crawl_enabled ORDER BY created_at`
	return s.list(ctx, q)
}

func (s *TenantStore) list(ctx context.Context, q string) ([]records.Tenant, error) {
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var out []records.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return out, nil
}

func scanTenant(row pgx.Row) (records.Tenant, error) {
	var t records.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Website, &t.AllowedDomains, &t.CrawlTargets,
		&t.CrawlEnabled, &t.Enabled, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
