package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusfolio/platform/internal/allowlist"
	"github.com/campusfolio/platform/internal/records"
	"github.com/campusfolio/platform/internal/store/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type uuidGen struct{}

func (uuidGen) NewRawID() (uuid.UUID, error) { return uuid.NewV7() }

type fakeAttachments struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeAttachments() *fakeAttachments {
	return &fakeAttachments{blobs: map[string][]byte{}}
}

func (f *fakeAttachments) Put(_ context.Context, path, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[path] = append([]byte(nil), data...)
	return path, nil
}

func (f *fakeAttachments) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.blobs[ref]; !ok {
		return records.ErrNotFound
	}
	delete(f.blobs, ref)
	return nil
}

func (f *fakeAttachments) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blobs)
}

type capturedEvent struct {
	topic   string
	payload any
}

type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{topic: topic, payload: payload})
	return "msg", nil
}

func (p *capturePublisher) published(topic string) bool {
	_, ok := p.last(topic)
	return ok
}

func (p *capturePublisher) last(topic string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].topic == topic {
			return p.events[i].payload, true
		}
	}
	return nil, false
}

// failingClaimStore forces Create to fail while delegating everything else.
type failingClaimStore struct {
	records.ClaimStore
}

func (failingClaimStore) Create(context.Context, records.Claim) error {
	return errors.New("storage unavailable")
}

type fixture struct {
	svc           *Service
	tenants       *memory.TenantStore
	claims        *memory.ClaimStore
	announcements *memory.AnnouncementStore
	attachments   *fakeAttachments
	pub           *capturePublisher

	tenant      records.Tenant
	otherTenant records.Tenant

	student      records.Identity
	faculty      records.Identity
	admin        records.Identity
	otherFaculty records.Identity
}

func newFixture() *fixture {
	ctx := context.Background()
	tenants := memory.NewTenantStore()
	users := memory.NewUserStore()
	claims := memory.NewClaimStore()
	announcements := memory.NewAnnouncementStore()
	attachments := newFakeAttachments()
	pub := &capturePublisher{}

	tenant := records.Tenant{
		ID:             uuid.New(),
		Name:           "Demo University",
		Website:        "https://demo.edu",
		AllowedDomains: []string{"demo.edu"},
		Enabled:        true,
	}
	otherTenant := records.Tenant{
		ID:      uuid.New(),
		Name:    "Rival College",
		Website: "https://rival.edu",
		Enabled: true,
	}
	_ = tenants.Create(ctx, tenant)
	_ = tenants.Create(ctx, otherTenant)

	svc := New(Deps{
		Tenants:       tenants,
		Users:         users,
		Claims:        claims,
		Announcements: announcements,
		Attachments:   attachments,
		Publisher:     pub,
		Allowlist:     allowlist.New(allowlist.Config{}),
		Clock:         fixedClock{now: time.Unix(1700000000, 0).UTC()},
		IDs:           uuidGen{},
	})

	return &fixture{
		svc:           svc,
		tenants:       tenants,
		claims:        claims,
		announcements: announcements,
		attachments:   attachments,
		pub:           pub,
		tenant:        tenant,
		otherTenant:   otherTenant,
		student: records.Identity{
			UserID: uuid.New(), TenantID: tenant.ID, Role: records.RoleStudent,
			Name: "Asha Patel", Email: "asha@demo.edu",
		},
		faculty: records.Identity{
			UserID: uuid.New(), TenantID: tenant.ID, Role: records.RoleFaculty,
			Name: "Prof. Rivera", Email: "rivera@demo.edu",
		},
		admin: records.Identity{
			UserID: uuid.New(), TenantID: tenant.ID, Role: records.RoleAdmin,
			Name: "Dean Okafor", Email: "dean@demo.edu",
		},
		otherFaculty: records.Identity{
			UserID: uuid.New(), TenantID: otherTenant.ID, Role: records.RoleFaculty,
			Name: "Prof. Chen", Email: "chen@rival.edu",
		},
	}
}

func validClaimInput() SubmitClaimInput {
	return SubmitClaimInput{
		Category:    records.CategoryCertification,
		Title:       "AWS Cloud Practitioner",
		Description: "Passed with 890/1000.",
		OccurredAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func validAnnouncementInput() SubmitAnnouncementInput {
	return SubmitAnnouncementInput{
		Title:     "Guest Lecture: Distributed Systems",
		Body:      "Open to all departments.",
		Category:  records.CategoryWorkshop,
		SourceURL: "https://events.demo.edu/lecture-42",
	}
}
