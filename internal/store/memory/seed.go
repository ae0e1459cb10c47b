package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusfolio/platform/internal/records"
)

// SeedDemo loads the demo tenant and its users so a fresh memory-backed
// instance is usable immediately: Demo University with crawling enabled,
// one student, two faculty, one admin (all with password "Pass@123"), and
// a pending faculty-authored announcement.
func SeedDemo(
	ctx context.Context,
	tenants *TenantStore,
	users *UserStore,
	announcements *AnnouncementStore,
	eventsURL string,
) error {
	now := time.Now().UTC()

	tenant := records.Tenant{
		ID:             uuid.New(),
		Name:           "Demo University",
		Website:        "https://demo.edu",
		AllowedDomains: []string{"demo.edu", "localhost", "127.0.0.1"},
		CrawlTargets:   []string{eventsURL},
		CrawlEnabled:   true,
		Enabled:        true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tenants.Create(ctx, tenant); err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Pass@123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	seedUsers := []records.User{
		{Name: "Student One", Email: "student1@example.com", Role: records.RoleStudent},
		{Name: "Faculty One", Email: "faculty1@example.com", Role: records.RoleFaculty},
		{Name: "Faculty Two", Email: "faculty2@example.com", Role: records.RoleFaculty},
		{Name: "Org Admin", Email: "admin1@example.com", Role: records.RoleAdmin},
	}
	var faculty records.User
	for _, u := range seedUsers {
		u.ID = uuid.New()
		u.TenantID = tenant.ID
		u.PasswordHash = hash
		u.CreatedAt = now
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		if u.Role == records.RoleFaculty && faculty.ID == uuid.Nil {
			faculty = u
		}
	}

	sample := records.Announcement{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Title:     "Inter-College Hackathon",
		Body:      "48-hour hackathon this weekend. Form teams of 3-5. Prizes and internships on offer.",
		Category:  records.CategoryCompetition,
		Status:    records.StatusPending,
		CreatedBy: faculty.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := announcements.Create(ctx, sample); err != nil {
		return fmt.Errorf("seed announcement: %w", err)
	}
	return nil
}
