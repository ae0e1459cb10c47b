package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/campusfolio/platform/internal/records"
)

// ClaimStore keeps achievement claims in a mutex-guarded map.
type ClaimStore struct {
	mu     sync.RWMutex
	claims map[uuid.UUID]records.Claim
}

// NewClaimStore constructs a ClaimStore.
func NewClaimStore() *ClaimStore {
	return &ClaimStore{claims: make(map[uuid.UUID]records.Claim)}
}

// Create stores a new claim.
func (s *ClaimStore) Create(_ context.Context, c records.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[c.ID] = c
	return nil
}

// QueryByID fetches a claim by ID.
func (s *ClaimStore) QueryByID(_ context.Context, claimID uuid.UUID) (records.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[claimID]
	if !ok {
		return records.Claim{}, records.ErrNotFound
	}
	return c, nil
}

// ListByStudent returns a student's claims, newest first.
func (s *ClaimStore) ListByStudent(_ context.Context, tenantID, studentID uuid.UUID) ([]records.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Claim
	for _, c := range s.claims {
		if c.TenantID == tenantID && c.StudentID == studentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListPending returns the tenant's pending claims, newest first.
func (s *ClaimStore) ListPending(_ context.Context, tenantID uuid.UUID) ([]records.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Claim
	for _, c := range s.claims {
		if c.TenantID == tenantID && c.Status == records.StatusPending {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListApprovedByStudent returns approved claims ordered by occurrence date
// ascending, the order the portfolio export consumes.
func (s *ClaimStore) ListApprovedByStudent(_ context.Context, tenantID, studentID uuid.UUID) ([]records.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []records.Claim
	for _, c := range s.claims {
		if c.TenantID == tenantID && c.StudentID == studentID && c.Status == records.StatusApproved {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

// TransitionFromPending replaces the claim only while its stored status is
// still pending.
func (s *ClaimStore) TransitionFromPending(_ context.Context, c records.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.claims[c.ID]
	if !ok {
		return records.ErrNotFound
	}
	if cur.Status != records.StatusPending {
		return records.NewConflictError("claim already processed")
	}
	s.claims[c.ID] = c
	return nil
}
