package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/campusfolio/platform/internal/records"
)

// AnnouncementStore keeps announcements in a mutex-guarded map. A secondary
// index on (tenant, external key) backs the idempotent-insert primitive.
type AnnouncementStore struct {
	mu            sync.RWMutex
	announcements map[uuid.UUID]records.Announcement
	byExternalKey map[string]uuid.UUID
}

// NewAnnouncementStore constructs an AnnouncementStore.
func NewAnnouncementStore() *AnnouncementStore {
	return &AnnouncementStore{
		announcements: make(map[uuid.UUID]records.Announcement),
		byExternalKey: make(map[string]uuid.UUID),
	}
}

func dedupKey(tenantID uuid.UUID, externalKey string) string {
	return tenantID.String() + "/" + externalKey
}

// Create stores a new announcement unconditionally (manual submissions carry
// no external key).
func (s *AnnouncementStore) Create(_ context.Context, a records.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ExternalKey != "" {
		key := dedupKey(a.TenantID, a.ExternalKey)
		if _, exists := s.byExternalKey[key]; exists {
			return records.ErrDuplicateKey
		}
		s.byExternalKey[key] = a.ID
	}
	s.announcements[a.ID] = a
	return nil
}

// CreateIfAbsent inserts unless (tenant, external key) already exists. The
// existing row is never modified; the whole check-and-insert runs under one
// lock so concurrent runs for the same key cannot both create.
func (s *AnnouncementStore) CreateIfAbsent(_ context.Context, a records.Announcement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dedupKey(a.TenantID, a.ExternalKey)
	if _, exists := s.byExternalKey[key]; exists {
		return false, nil
	}
	s.byExternalKey[key] = a.ID
	s.announcements[a.ID] = a
	return true, nil
}

// QueryByID fetches an announcement by ID.
func (s *AnnouncementStore) QueryByID(_ context.Context, id uuid.UUID) (records.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.announcements[id]
	if !ok {
		return records.Announcement{}, records.ErrNotFound
	}
	return a, nil
}

// ListPending returns the tenant's pending announcements, newest first.
func (s *AnnouncementStore) ListPending(_ context.Context, tenantID uuid.UUID) ([]records.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Announcement
	for _, a := range s.announcements {
		if a.TenantID == tenantID && a.Status == records.StatusPending {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListApproved returns the tenant's approved announcements, most recently
// approved first, capped at limit.
func (s *AnnouncementStore) ListApproved(_ context.Context, tenantID uuid.UUID, limit int) ([]records.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Announcement
	for _, a := range s.announcements {
		if a.TenantID == tenantID && a.Status == records.StatusApproved {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].ReviewedAt, out[j].ReviewedAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TransitionFromPending replaces the announcement only while its stored
// status is still pending.
func (s *AnnouncementStore) TransitionFromPending(_ context.Context, a records.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.announcements[a.ID]
	if !ok {
		return records.ErrNotFound
	}
	if cur.Status != records.StatusPending {
		return records.NewConflictError("announcement already processed")
	}
	s.announcements[a.ID] = a
	return nil
}

// Delete removes an announcement permanently.
func (s *AnnouncementStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.announcements[id]
	if !ok {
		return records.ErrNotFound
	}
	if a.ExternalKey != "" {
		delete(s.byExternalKey, dedupKey(a.TenantID, a.ExternalKey))
	}
	delete(s.announcements, id)
	return nil
}
