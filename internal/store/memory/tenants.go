// Package memory contains in-memory store implementations for development
// and testing.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/campusfolio/platform/internal/records"
)

// TenantStore keeps tenants in a mutex-guarded map.
type TenantStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]records.Tenant
}

// NewTenantStore constructs a TenantStore.
func NewTenantStore() *TenantStore {
	return &TenantStore{tenants: make(map[uuid.UUID]records.Tenant)}
}

// Create stores a new tenant.
func (s *TenantStore) Create(_ context.Context, t records.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = cloneTenant(t)
	return nil
}

// QueryByID fetches a tenant by ID.
func (s *TenantStore) QueryByID(_ context.Context, tenantID uuid.UUID) (records.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[tenantID]
	if !ok {
		return records.Tenant{}, records.ErrNotFound
	}
	return cloneTenant(t), nil
}

// ListEnabled returns all enabled tenants.
func (s *TenantStore) ListEnabled(_ context.Context) ([]records.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Tenant
	for _, t := range s.tenants {
		if t.Enabled {
			out = append(out, cloneTenant(t))
		}
	}
	return out, nil
}

// ListCrawlEnabled returns enabled tenants with crawling switched on.
func (s *TenantStore) ListCrawlEnabled(_ context.Context) ([]records.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Tenant
	for _, t := range s.tenants {
		if t.Enabled && t.CrawlEnabled {
			out = append(out, cloneTenant(t))
		}
	}
	return out, nil
}

func cloneTenant(t records.Tenant) records.Tenant {
	cp := t
	cp.AllowedDomains = append([]string(nil), t.AllowedDomains...)
	cp.CrawlTargets = append([]string(nil), t.CrawlTargets...)
	return cp
}
