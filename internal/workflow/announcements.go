package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfolio/platform/internal/insight"
	"github.com/campusfolio/platform/internal/metrics"
	"github.com/campusfolio/platform/internal/records"
)

// SubmitAnnouncementInput carries the faculty-provided announcement fields.
type SubmitAnnouncementInput struct {
	Title     string
	Body      string
	Category  records.Category
	SourceURL string
	StartsAt  *time.Time
	EndsAt    *time.Time
}

// ApproveAnnouncementInput carries optional reviewer overrides.
type ApproveAnnouncementInput struct {
	EndsAt *time.Time
}

// announcementEvent is the payload published on announcement decisions and
// deletions. DeletedBy survives only here; the row itself is gone by the
// time the event goes out.
type announcementEvent struct {
	AnnouncementID uuid.UUID  `json:"announcement_id"`
	TenantID       uuid.UUID  `json:"tenant_id"`
	Action         string     `json:"action"`
	ActorID        uuid.UUID  `json:"actor_id"`
	DeletedBy      *uuid.UUID `json:"deleted_by,omitempty"`
}

// SubmitAnnouncement creates a pending announcement authored by the acting
// faculty member. A source URL outside the tenant's allowed domains is
// refused outright at this boundary.
func (s *Service) SubmitAnnouncement(ctx context.Context, actor records.Identity, input SubmitAnnouncementInput) (records.Announcement, error) {
	if actor.Role != records.RoleFaculty {
		return records.Announcement{}, records.NewAuthorizationError("faculty role required")
	}
	if input.Title == "" {
		return records.Announcement{}, records.NewValidationError("title", "must not be empty")
	}
	if input.Category == "" {
		input.Category = records.CategoryGeneral
	}
	if !records.ValidAnnouncementCategory(input.Category) {
		return records.Announcement{}, records.NewValidationError("category", fmt.Sprintf("unknown category %q", input.Category))
	}

	if input.SourceURL != "" {
		tenant, err := s.deps.Tenants.QueryByID(ctx, actor.TenantID)
		if err != nil {
			return records.Announcement{}, fmt.Errorf("load tenant: %w", err)
		}
		if !s.deps.Allowlist.IsAllowed(tenant, input.SourceURL) {
			return records.Announcement{}, records.NewValidationError("source_url", "domain not allowed for this institution")
		}
	}

	id, err := s.newID()
	if err != nil {
		return records.Announcement{}, err
	}
	now := s.deps.Clock.Now()
	a := records.Announcement{
		ID:        id,
		TenantID:  actor.TenantID,
		Title:     input.Title,
		Body:      input.Body,
		Category:  input.Category,
		SourceURL: input.SourceURL,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
		Status:    records.StatusPending,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.deps.Announcements.Create(ctx, a); err != nil {
		return records.Announcement{}, fmt.Errorf("create announcement: %w", err)
	}

	metrics.ObserveTransition("announcement", "submit")
	return a, nil
}

// ListPendingAnnouncements returns the review queue for the actor's tenant.
func (s *Service) ListPendingAnnouncements(ctx context.Context, actor records.Identity) ([]records.Announcement, error) {
	if actor.Role != records.RoleFaculty {
		return nil, records.NewAuthorizationError("faculty role required")
	}
	out, err := s.deps.Announcements.ListPending(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list pending announcements: %w", err)
	}
	return out, nil
}

// ListApprovedAnnouncements returns the tenant's feed, most recently
// approved first, capped at 50 entries. All roles may read it.
func (s *Service) ListApprovedAnnouncements(ctx context.Context, actor records.Identity) ([]records.Announcement, error) {
	out, err := s.deps.Announcements.ListApproved(ctx, actor.TenantID, approvedListLimit)
	if err != nil {
		return nil, fmt.Errorf("list approved announcements: %w", err)
	}
	return out, nil
}

// ApproveAnnouncement moves a pending announcement to approved. The source
// URL is re-checked against the allowlist at decision time: by default a
// URL that no longer passes is stripped and the approval proceeds, in
// strict mode the approval fails.
func (s *Service) ApproveAnnouncement(ctx context.Context, actor records.Identity, announcementID uuid.UUID, input ApproveAnnouncementInput) (records.Announcement, error) {
	a, err := s.deps.Announcements.QueryByID(ctx, announcementID)
	if err != nil {
		return records.Announcement{}, err
	}
	if err := guardReviewer(actor, a); err != nil {
		return records.Announcement{}, err
	}

	if a.SourceURL != "" {
		tenant, err := s.deps.Tenants.QueryByID(ctx, a.TenantID)
		if err != nil {
			return records.Announcement{}, fmt.Errorf("load tenant: %w", err)
		}
		if !s.deps.Allowlist.IsAllowed(tenant, a.SourceURL) {
			if s.deps.StrictSourceCheck {
				return records.Announcement{}, records.NewValidationError("source_url", "domain no longer allowed for this institution")
			}
			s.logger.Warn("stripping disallowed source url at approval",
				zap.Stringer("announcement", a.ID), zap.String("source_url", a.SourceURL))
			a.SourceURL = ""
		}
	}

	if input.EndsAt != nil {
		a.EndsAt = input.EndsAt
	}

	now := s.deps.Clock.Now()
	a.Status = records.StatusApproved
	a.ReviewedBy = &actor.UserID
	a.ReviewedAt = &now
	a.UpdatedAt = now

	if err := s.deps.Announcements.TransitionFromPending(ctx, a); err != nil {
		return records.Announcement{}, err
	}

	metrics.ObserveTransition("announcement", "approved")
	s.publish(ctx, "announcements.decided", announcementEvent{
		AnnouncementID: a.ID, TenantID: a.TenantID, Action: "approved", ActorID: actor.UserID,
	})
	return a, nil
}

// RejectAnnouncement moves a pending announcement to rejected. An empty
// reason is recorded as the default.
func (s *Service) RejectAnnouncement(ctx context.Context, actor records.Identity, announcementID uuid.UUID, reason string) (records.Announcement, error) {
	a, err := s.deps.Announcements.QueryByID(ctx, announcementID)
	if err != nil {
		return records.Announcement{}, err
	}
	if err := guardReviewer(actor, a); err != nil {
		return records.Announcement{}, err
	}
	if reason == "" {
		reason = DefaultRejectionReason
	}

	now := s.deps.Clock.Now()
	a.Status = records.StatusRejected
	a.ReviewedBy = &actor.UserID
	a.ReviewedAt = &now
	a.RejectionReason = reason
	a.UpdatedAt = now

	if err := s.deps.Announcements.TransitionFromPending(ctx, a); err != nil {
		return records.Announcement{}, err
	}

	metrics.ObserveTransition("announcement", "rejected")
	s.publish(ctx, "announcements.decided", announcementEvent{
		AnnouncementID: a.ID, TenantID: a.TenantID, Action: "rejected", ActorID: actor.UserID,
	})
	return a, nil
}

// DeleteAnnouncement removes an approved announcement. Only the reviewer
// who approved it or a tenant admin may delete it; pending and rejected
// records are immutable history and stay.
func (s *Service) DeleteAnnouncement(ctx context.Context, actor records.Identity, announcementID uuid.UUID) error {
	a, err := s.deps.Announcements.QueryByID(ctx, announcementID)
	if err != nil {
		return err
	}
	if err := guardTenant(actor, a); err != nil {
		return err
	}
	if a.Status != records.StatusApproved {
		return records.NewConflictError("only approved announcements can be deleted")
	}
	approver := a.ReviewedBy != nil && *a.ReviewedBy == actor.UserID
	if !approver && actor.Role != records.RoleAdmin {
		return records.NewAuthorizationError("only the approving reviewer or an admin may delete")
	}

	if err := s.deps.Announcements.Delete(ctx, a.ID); err != nil {
		return err
	}
	a.DeletedBy = &actor.UserID

	metrics.ObserveTransition("announcement", "deleted")
	s.publish(ctx, "announcements.deleted", announcementEvent{
		AnnouncementID: a.ID, TenantID: a.TenantID, Action: "deleted", ActorID: actor.UserID,
		DeletedBy: a.DeletedBy,
	})
	s.logger.Info("announcement deleted",
		zap.Stringer("announcement", a.ID), zap.Stringer("deleted_by", actor.UserID))
	return nil
}

// CategoryInsight returns the advisory text for an announcement's category.
func (s *Service) CategoryInsight(ctx context.Context, actor records.Identity, announcementID uuid.UUID) (string, error) {
	a, err := s.deps.Announcements.QueryByID(ctx, announcementID)
	if err != nil {
		return "", err
	}
	if err := guardTenant(actor, a); err != nil {
		return "", err
	}
	return insight.ForCategory(a.Category), nil
}
