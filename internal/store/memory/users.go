package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/campusfolio/platform/internal/records"
)

// UserStore keeps users in a mutex-guarded map with an email index.
type UserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]records.User
	byEmail map[string]uuid.UUID
}

// NewUserStore constructs a UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[uuid.UUID]records.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create stores a new user. Emails are unique, case-insensitively.
func (s *UserStore) Create(_ context.Context, u records.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, exists := s.byEmail[email]; exists {
		return records.ErrDuplicateKey
	}
	u.Email = email
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return nil
}

// QueryByID fetches a user by ID.
func (s *UserStore) QueryByID(_ context.Context, userID uuid.UUID) (records.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return records.User{}, records.ErrNotFound
	}
	return u, nil
}

// QueryByEmail fetches a user by email, case-insensitively.
func (s *UserStore) QueryByEmail(_ context.Context, email string) (records.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return records.User{}, records.ErrNotFound
	}
	return s.users[id], nil
}

// FindReviewActor returns an admin of the tenant if one exists, else any
// faculty member, else ErrNotFound.
func (s *UserStore) FindReviewActor(_ context.Context, tenantID uuid.UUID) (records.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var faculty *records.User
	for _, u := range s.users {
		if u.TenantID != tenantID {
			continue
		}
		switch u.Role {
		case records.RoleAdmin:
			return u, nil
		case records.RoleFaculty:
			if faculty == nil {
				cp := u
				faculty = &cp
			}
		}
	}
	if faculty != nil {
		return *faculty, nil
	}
	return records.User{}, records.ErrNotFound
}
