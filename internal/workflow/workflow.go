// Package workflow implements the shared approval state machine for
// achievement claims and announcements. Every record starts pending and is
// moved exactly once to approved or rejected by a faculty member of the
// owning tenant.
package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfolio/platform/internal/allowlist"
	"github.com/campusfolio/platform/internal/records"
)

// DefaultRejectionReason is recorded when a reviewer rejects without giving
// a reason.
const DefaultRejectionReason = "Not approved"

// approvedListLimit caps the approved-announcement listing.
const approvedListLimit = 50

// Deps wires the service to its collaborators.
type Deps struct {
	Tenants       records.TenantStore
	Users         records.UserStore
	Claims        records.ClaimStore
	Announcements records.AnnouncementStore
	Attachments   records.AttachmentStore
	Publisher     records.Publisher
	Allowlist     *allowlist.Validator
	Clock         records.Clock
	IDs           records.IDGenerator
	Logger        *zap.Logger

	// StrictSourceCheck rejects approval of announcements whose source URL
	// no longer passes the allowlist. When false the URL is stripped and
	// the approval proceeds.
	StrictSourceCheck bool
}

// Service executes workflow operations on behalf of an authenticated
// identity. It trusts the identity triple verbatim; verification is the
// transport layer's job.
type Service struct {
	deps   Deps
	logger *zap.Logger
}

// New builds a Service.
func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, logger: logger.Named("workflow")}
}

// reviewable is the slice of a record the shared guards need.
type reviewable interface {
	OwnerTenant() uuid.UUID
	ApprovalState() records.ApprovalStatus
}

// guardTenant hides records of other tenants behind an authorization error
// rather than leaking their existence via not-found.
func guardTenant(actor records.Identity, rec reviewable) error {
	if rec.OwnerTenant() != actor.TenantID {
		return records.NewAuthorizationError("record belongs to another institution")
	}
	return nil
}

// guardReviewer requires a faculty actor from the record's tenant. Admins
// administer tenants; they do not sit on the review side of the workflow.
// Their only workflow power is the approved-announcement delete override.
func guardReviewer(actor records.Identity, rec reviewable) error {
	if err := guardTenant(actor, rec); err != nil {
		return err
	}
	if actor.Role != records.RoleFaculty {
		return records.NewAuthorizationError("faculty role required")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.deps.Publisher == nil {
		return
	}
	if _, err := s.deps.Publisher.Publish(ctx, topic, payload); err != nil {
		s.logger.Warn("publish event failed", zap.String("topic", topic), zap.Error(err))
	}
}

func (s *Service) newID() (uuid.UUID, error) {
	id, err := s.deps.IDs.NewRawID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("mint record id: %w", err)
	}
	return id, nil
}
