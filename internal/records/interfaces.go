package records

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TenantStore persists tenant directory records.
type TenantStore interface {
	Create(ctx context.Context, t Tenant) error
	QueryByID(ctx context.Context, tenantID uuid.UUID) (Tenant, error)
	ListEnabled(ctx context.Context) ([]Tenant, error)
	ListCrawlEnabled(ctx context.Context) ([]Tenant, error)
}

// UserStore persists tenant members.
type UserStore interface {
	Create(ctx context.Context, u User) error
	QueryByID(ctx context.Context, userID uuid.UUID) (User, error)
	QueryByEmail(ctx context.Context, email string) (User, error)

	// FindReviewActor resolves the user crawled announcements are attributed
	// to: an administrator of the tenant if one exists, else any faculty
	// member, else ErrNotFound.
	FindReviewActor(ctx context.Context, tenantID uuid.UUID) (User, error)
}

// ClaimStore persists achievement claims. TransitionFromPending must apply
// the state check and the mutation as one operation: it updates the row only
// while its status is still pending and returns a ConflictError otherwise.
type ClaimStore interface {
	Create(ctx context.Context, c Claim) error
	QueryByID(ctx context.Context, claimID uuid.UUID) (Claim, error)
	ListByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]Claim, error)
	ListPending(ctx context.Context, tenantID uuid.UUID) ([]Claim, error)
	ListApprovedByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]Claim, error)
	TransitionFromPending(ctx context.Context, c Claim) error
}

// AnnouncementStore persists announcements. CreateIfAbsent is the atomic
// insert-unless-key-exists primitive: it reports created=false without
// touching the existing row when (tenant, external key) is already present.
type AnnouncementStore interface {
	Create(ctx context.Context, a Announcement) error
	CreateIfAbsent(ctx context.Context, a Announcement) (created bool, err error)
	QueryByID(ctx context.Context, announcementID uuid.UUID) (Announcement, error)
	ListPending(ctx context.Context, tenantID uuid.UUID) ([]Announcement, error)
	ListApproved(ctx context.Context, tenantID uuid.UUID, limit int) ([]Announcement, error)
	TransitionFromPending(ctx context.Context, a Announcement) error
	Delete(ctx context.Context, announcementID uuid.UUID) error
}

// AttachmentStore keeps opaque proof blobs. The record store only ever
// persists the returned reference string, never file bytes.
type AttachmentStore interface {
	Put(ctx context.Context, path string, contentType string, data []byte) (ref string, err error)
	Delete(ctx context.Context, ref string) error
}

// Publisher fans out domain events (approval decisions, crawl summaries).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Fetcher retrieves one crawl target page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints record identifiers.
type IDGenerator interface {
	NewRawID() (uuid.UUID, error)
}
