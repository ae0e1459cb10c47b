// Package records holds the core domain model shared by the ingestion and
// approval components: tenants, users, achievement claims, announcements,
// and the interfaces the rest of the service is wired through.
package records

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role classifies a user within their tenant.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// ApprovalStatus is the shared state machine for claims and announcements.
// Records start pending and move to exactly one of approved or rejected.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// Category is the closed enumeration shared by claims and announcements.
type Category string

const (
	CategoryConference       Category = "conference"
	CategoryWorkshop         Category = "workshop"
	CategoryCertification    Category = "certification"
	CategoryClub             Category = "club"
	CategoryVolunteering     Category = "volunteering"
	CategoryCompetition      Category = "competition"
	CategoryLeadership       Category = "leadership"
	CategoryInternship       Category = "internship"
	CategoryCommunityService Category = "community-service"
	CategoryOther            Category = "other"

	// CategoryGeneral is valid for announcements only and is the default the
	// crawler assigns when a source page carries no category.
	CategoryGeneral Category = "general"
)

var claimCategories = map[Category]struct{}{
	CategoryConference:       {},
	CategoryWorkshop:         {},
	CategoryCertification:    {},
	CategoryClub:             {},
	CategoryVolunteering:     {},
	CategoryCompetition:      {},
	CategoryLeadership:       {},
	CategoryInternship:       {},
	CategoryCommunityService: {},
	CategoryOther:            {},
}

// ValidClaimCategory reports whether c may be used on an achievement claim.
func ValidClaimCategory(c Category) bool {
	_, ok := claimCategories[c]
	return ok
}

// ValidAnnouncementCategory reports whether c may be used on an announcement.
func ValidAnnouncementCategory(c Category) bool {
	return c == CategoryGeneral || ValidClaimCategory(c)
}

// Tenant is an isolated institutional scope. Every record and user belongs
// to exactly one tenant; the allowed-domain set and crawl targets drive the
// allowlist validator and the crawl engine.
type Tenant struct {
	ID             uuid.UUID
	Name           string
	Website        string
	AllowedDomains []string
	CrawlTargets   []string
	CrawlEnabled   bool
	Enabled        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizedDomains returns the allowed-domain set lowercased and trimmed.
func (t Tenant) NormalizedDomains() []string {
	out := make([]string, 0, len(t.AllowedDomains))
	for _, d := range t.AllowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// User is a tenant member. PasswordHash is a bcrypt hash.
type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Email        string
	PasswordHash []byte
	Role         Role
	Department   string
	CreatedAt    time.Time
}

// Identity is the authenticated caller triple every workflow operation
// trusts verbatim once the transport layer has verified it.
type Identity struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
	Name     string
	Email    string
}

// Claim is a student-submitted achievement record awaiting institutional
// verification. Claims are never deleted.
type Claim struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	StudentID       uuid.UUID
	Category        Category
	Title           string
	Description     string
	OccurredAt      time.Time
	ProofRef        string
	Status          ApprovalStatus
	ReviewedBy      *uuid.UUID
	ReviewedAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OwnerTenant implements the workflow record contract.
func (c Claim) OwnerTenant() uuid.UUID { return c.TenantID }

// ApprovalState implements the workflow record contract.
func (c Claim) ApprovalState() ApprovalStatus { return c.Status }

// Announcement is a tenant-scoped notice, either authored by faculty or
// discovered by the crawler. When ExternalKey is set, (TenantID, ExternalKey)
// is unique and is the crawler's dedup key.
type Announcement struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	Title           string
	Body            string
	Category        Category
	SourceURL       string
	StartsAt        *time.Time
	EndsAt          *time.Time
	ExternalKey     string
	Status          ApprovalStatus
	CreatedBy       uuid.UUID
	ReviewedBy      *uuid.UUID
	ReviewedAt      *time.Time
	RejectionReason string
	DeletedBy       *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OwnerTenant implements the workflow record contract.
func (a Announcement) OwnerTenant() uuid.UUID { return a.TenantID }

// ApprovalState implements the workflow record contract.
func (a Announcement) ApprovalState() ApprovalStatus { return a.Status }

// CrawlResult aggregates one tenant's crawl run.
type CrawlResult struct {
	TenantID uuid.UUID
	Tenant   string
	Created  int
	Skipped  int
}
