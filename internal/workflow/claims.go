package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfolio/platform/internal/metrics"
	"github.com/campusfolio/platform/internal/records"
)

// ProofUpload is an optional evidence file attached to a claim.
type ProofUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitClaimInput carries the student-provided claim fields.
type SubmitClaimInput struct {
	Category    records.Category
	Title       string
	Description string
	OccurredAt  time.Time
	Proof       *ProofUpload
}

// claimEvent is the payload published on claim decisions.
type claimEvent struct {
	ClaimID   uuid.UUID `json:"claim_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	StudentID uuid.UUID `json:"student_id"`
	Action    string    `json:"action"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// SubmitClaim creates a pending achievement claim for the acting student.
// When a proof upload is present it is stored first; a claim insert failure
// rolls the blob back so no orphaned reference survives.
func (s *Service) SubmitClaim(ctx context.Context, actor records.Identity, input SubmitClaimInput) (records.Claim, error) {
	if actor.Role != records.RoleStudent {
		return records.Claim{}, records.NewAuthorizationError("only students submit achievement claims")
	}
	if input.Title == "" {
		return records.Claim{}, records.NewValidationError("title", "must not be empty")
	}
	if !records.ValidClaimCategory(input.Category) {
		return records.Claim{}, records.NewValidationError("category", fmt.Sprintf("unknown category %q", input.Category))
	}
	if input.OccurredAt.IsZero() {
		return records.Claim{}, records.NewValidationError("occurred_at", "must be set")
	}

	id, err := s.newID()
	if err != nil {
		return records.Claim{}, err
	}

	var proofRef string
	if input.Proof != nil {
		path := fmt.Sprintf("%s/%s/%s", actor.TenantID, id, input.Proof.Filename)
		proofRef, err = s.deps.Attachments.Put(ctx, path, input.Proof.ContentType, input.Proof.Data)
		if err != nil {
			return records.Claim{}, fmt.Errorf("store proof: %w", err)
		}
	}

	now := s.deps.Clock.Now()
	claim := records.Claim{
		ID:          id,
		TenantID:    actor.TenantID,
		StudentID:   actor.UserID,
		Category:    input.Category,
		Title:       input.Title,
		Description: input.Description,
		OccurredAt:  input.OccurredAt.UTC(),
		ProofRef:    proofRef,
		Status:      records.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deps.Claims.Create(ctx, claim); err != nil {
		if proofRef != "" {
			if delErr := s.deps.Attachments.Delete(ctx, proofRef); delErr != nil {
				s.logger.Warn("orphaned proof cleanup failed",
					zap.String("ref", proofRef), zap.Error(delErr))
			}
		}
		return records.Claim{}, fmt.Errorf("create claim: %w", err)
	}

	metrics.ObserveTransition("claim", "submit")
	return claim, nil
}

// ListOwnClaims returns the acting student's claims, all states included.
func (s *Service) ListOwnClaims(ctx context.Context, actor records.Identity) ([]records.Claim, error) {
	if actor.Role != records.RoleStudent {
		return nil, records.NewAuthorizationError("only students have their own claim list")
	}
	claims, err := s.deps.Claims.ListByStudent(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

// ListPendingClaims returns the review queue for the actor's tenant.
func (s *Service) ListPendingClaims(ctx context.Context, actor records.Identity) ([]records.Claim, error) {
	if actor.Role != records.RoleFaculty {
		return nil, records.NewAuthorizationError("faculty role required")
	}
	claims, err := s.deps.Claims.ListPending(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list pending claims: %w", err)
	}
	return claims, nil
}

// ApproveClaim moves a pending claim to approved.
func (s *Service) ApproveClaim(ctx context.Context, actor records.Identity, claimID uuid.UUID) (records.Claim, error) {
	return s.decideClaim(ctx, actor, claimID, records.StatusApproved, "")
}

// RejectClaim moves a pending claim to rejected. An empty reason is
// recorded as the default.
func (s *Service) RejectClaim(ctx context.Context, actor records.Identity, claimID uuid.UUID, reason string) (records.Claim, error) {
	if reason == "" {
		reason = DefaultRejectionReason
	}
	return s.decideClaim(ctx, actor, claimID, records.StatusRejected, reason)
}

func (s *Service) decideClaim(ctx context.Context, actor records.Identity, claimID uuid.UUID, status records.ApprovalStatus, reason string) (records.Claim, error) {
	claim, err := s.deps.Claims.QueryByID(ctx, claimID)
	if err != nil {
		return records.Claim{}, err
	}
	if err := guardReviewer(actor, claim); err != nil {
		return records.Claim{}, err
	}

	now := s.deps.Clock.Now()
	claim.Status = status
	claim.ReviewedBy = &actor.UserID
	claim.ReviewedAt = &now
	claim.RejectionReason = reason
	claim.UpdatedAt = now

	if err := s.deps.Claims.TransitionFromPending(ctx, claim); err != nil {
		return records.Claim{}, err
	}

	action := string(status)
	metrics.ObserveTransition("claim", action)
	s.publish(ctx, "claims.decided", claimEvent{
		ClaimID:   claim.ID,
		TenantID:  claim.TenantID,
		StudentID: claim.StudentID,
		Action:    action,
		ActorID:   actor.UserID,
	})
	s.logger.Info("claim decided",
		zap.Stringer("claim", claim.ID), zap.String("action", action))
	return claim, nil
}

// Portfolio returns a student's approved claims ordered by occurrence.
// Students may only read their own portfolio; faculty and admins may read
// any portfolio within their tenant.
func (s *Service) Portfolio(ctx context.Context, actor records.Identity, studentID uuid.UUID) ([]records.Claim, error) {
	if actor.Role == records.RoleStudent && actor.UserID != studentID {
		return nil, records.NewAuthorizationError("students may only view their own portfolio")
	}
	claims, err := s.deps.Claims.ListApprovedByStudent(ctx, actor.TenantID, studentID)
	if err != nil {
		return nil, fmt.Errorf("list approved claims: %w", err)
	}
	return claims, nil
}
