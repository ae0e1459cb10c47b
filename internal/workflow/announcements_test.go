package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusfolio/platform/internal/records"
)

func TestSubmitAnnouncementValidatesSourceDomain(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)
	require.Equal(t, records.StatusPending, a.Status)
	require.Equal(t, fix.faculty.UserID, a.CreatedBy)

	bad := validAnnouncementInput()
	bad.SourceURL = "https://evil-demo.edu.attacker.io/phish"
	_, err = fix.svc.SubmitAnnouncement(ctx, fix.faculty, bad)
	require.True(t, records.IsValidation(err))

	_, err = fix.svc.SubmitAnnouncement(ctx, fix.student, validAnnouncementInput())
	require.True(t, records.IsAuthorization(err))
}

func TestSubmitAnnouncementDefaultsCategory(t *testing.T) {
	t.Parallel()

	fix := newFixture()

	input := validAnnouncementInput()
	input.Category = ""
	a, err := fix.svc.SubmitAnnouncement(context.Background(), fix.faculty, input)
	require.NoError(t, err)
	require.Equal(t, records.CategoryGeneral, a.Category)
}

func TestApproveAnnouncementStripsDisallowedURLByDefault(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	// The tenant's allowed domains shrink between submission and review.
	shrunk := fix.tenant
	shrunk.AllowedDomains = nil
	shrunk.Website = "https://other.example"
	require.NoError(t, fix.tenants.Create(ctx, shrunk))

	approved, err := fix.svc.ApproveAnnouncement(ctx, fix.faculty, a.ID, ApproveAnnouncementInput{})
	require.NoError(t, err)
	require.Equal(t, records.StatusApproved, approved.Status)
	require.Empty(t, approved.SourceURL)
}

func TestApproveAnnouncementStrictModeFails(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	fix.svc.deps.StrictSourceCheck = true
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	shrunk := fix.tenant
	shrunk.AllowedDomains = nil
	shrunk.Website = "https://other.example"
	require.NoError(t, fix.tenants.Create(ctx, shrunk))

	_, err = fix.svc.ApproveAnnouncement(ctx, fix.faculty, a.ID, ApproveAnnouncementInput{})
	require.True(t, records.IsValidation(err))

	stored, err := fix.announcements.QueryByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, records.StatusPending, stored.Status)
}

func TestApproveAnnouncementEndsAtOverride(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	ends := time.Date(2025, 12, 1, 18, 0, 0, 0, time.UTC)
	approved, err := fix.svc.ApproveAnnouncement(ctx, fix.faculty, a.ID, ApproveAnnouncementInput{EndsAt: &ends})
	require.NoError(t, err)
	require.NotNil(t, approved.EndsAt)
	require.Equal(t, ends, *approved.EndsAt)
}

func TestRejectAnnouncementDefaultsReason(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	rejected, err := fix.svc.RejectAnnouncement(ctx, fix.faculty, a.ID, "")
	require.NoError(t, err)
	require.Equal(t, records.StatusRejected, rejected.Status)
	require.Equal(t, DefaultRejectionReason, rejected.RejectionReason)
}

func TestAnnouncementDecisionConflicts(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	_, err = fix.svc.ApproveAnnouncement(ctx, fix.faculty, a.ID, ApproveAnnouncementInput{})
	require.NoError(t, err)

	_, err = fix.svc.RejectAnnouncement(ctx, fix.faculty, a.ID, "changed my mind")
	require.True(t, records.IsConflict(err))

	stored, err := fix.announcements.QueryByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, records.StatusApproved, stored.Status)
}

func TestAnnouncementTenantIsolation(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	_, err = fix.svc.ApproveAnnouncement(ctx, fix.otherFaculty, a.ID, ApproveAnnouncementInput{})
	require.True(t, records.IsAuthorization(err))

	_, err = fix.svc.CategoryInsight(ctx, fix.otherFaculty, a.ID)
	require.True(t, records.IsAuthorization(err))
}

func TestAdminCannotAuthorOrReviewAnnouncements(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	_, err := fix.svc.SubmitAnnouncement(ctx, fix.admin, validAnnouncementInput())
	require.True(t, records.IsAuthorization(err))

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	_, err = fix.svc.ApproveAnnouncement(ctx, fix.admin, a.ID, ApproveAnnouncementInput{})
	require.True(t, records.IsAuthorization(err))
	_, err = fix.svc.RejectAnnouncement(ctx, fix.admin, a.ID, "")
	require.True(t, records.IsAuthorization(err))
	_, err = fix.svc.ListPendingAnnouncements(ctx, fix.admin)
	require.True(t, records.IsAuthorization(err))

	stored, err := fix.announcements.QueryByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, records.StatusPending, stored.Status)
}

func TestDeleteAnnouncementRules(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	// Pending records cannot be deleted.
	err = fix.svc.DeleteAnnouncement(ctx, fix.faculty, a.ID)
	require.True(t, records.IsConflict(err))

	_, err = fix.svc.ApproveAnnouncement(ctx, fix.faculty, a.ID, ApproveAnnouncementInput{})
	require.NoError(t, err)

	// A different faculty member is neither approver nor admin.
	other := records.Identity{UserID: fix.student.UserID, TenantID: fix.tenant.ID, Role: records.RoleFaculty}
	err = fix.svc.DeleteAnnouncement(ctx, other, a.ID)
	require.True(t, records.IsAuthorization(err))

	// The approving reviewer may delete; the event attributes the deleter.
	require.NoError(t, fix.svc.DeleteAnnouncement(ctx, fix.faculty, a.ID))
	payload, ok := fix.pub.last("announcements.deleted")
	require.True(t, ok)
	event, ok := payload.(announcementEvent)
	require.True(t, ok)
	require.NotNil(t, event.DeletedBy)
	require.Equal(t, fix.faculty.UserID, *event.DeletedBy)

	_, err = fix.announcements.QueryByID(ctx, a.ID)
	require.ErrorIs(t, err, records.ErrNotFound)
}

func TestDeleteAnnouncementAdminOverride(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)
	_, err = fix.svc.ApproveAnnouncement(ctx, fix.faculty, a.ID, ApproveAnnouncementInput{})
	require.NoError(t, err)

	require.NoError(t, fix.svc.DeleteAnnouncement(ctx, fix.admin, a.ID))
}

func TestCategoryInsightReturnsAdvisory(t *testing.T) {
	t.Parallel()

	fix := newFixture()
	ctx := context.Background()

	a, err := fix.svc.SubmitAnnouncement(ctx, fix.faculty, validAnnouncementInput())
	require.NoError(t, err)

	text, err := fix.svc.CategoryInsight(ctx, fix.student, a.ID)
	require.NoError(t, err)
	require.Contains(t, text, "Hands-on learning")
}
