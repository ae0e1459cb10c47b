package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campusfolio/platform/internal/records"
	"github.com/campusfolio/platform/internal/workflow"
)

type proofRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type submitClaimRequest struct {
	Category    string        `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	OccurredAt  string        `json:"occurred_at"`
	Proof       *proofRequest `json:"proof,omitempty"`
}

func (s *Server) submitClaim(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	var req submitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	occurredAt, err := parseDateField(req.OccurredAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "occurred_at: must be a date (2006-01-02) or RFC 3339 timestamp")
		return
	}

	input := workflow.SubmitClaimInput{
		Category:    records.Category(req.Category),
		Title:       req.Title,
		Description: req.Description,
		OccurredAt:  occurredAt,
	}
	if req.Proof != nil {
		input.Proof = &workflow.ProofUpload{
			Filename:    req.Proof.Filename,
			ContentType: req.Proof.ContentType,
			Data:        req.Proof.Data,
		}
	}

	claim, err := s.workflow.SubmitClaim(r.Context(), identity, input)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"claim": toClaimJSON(claim)})
}

func (s *Server) listOwnClaims(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	claims, err := s.workflow.ListOwnClaims(r.Context(), identity)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": toClaimListJSON(claims)})
}

func (s *Server) listPendingClaims(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	claims, err := s.workflow.ListPendingClaims(r.Context(), identity)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": toClaimListJSON(claims)})
}

func (s *Server) approveClaim(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	claimID, ok := pathID(w, r, "claim_id")
	if !ok {
		return
	}
	claim, err := s.workflow.ApproveClaim(r.Context(), identity, claimID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claim": toClaimJSON(claim)})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) rejectClaim(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	claimID, ok := pathID(w, r, "claim_id")
	if !ok {
		return
	}
	var req rejectRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	claim, err := s.workflow.RejectClaim(r.Context(), identity, claimID, req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claim": toClaimJSON(claim)})
}

func (s *Server) portfolio(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	studentID, ok := pathID(w, r, "student_id")
	if !ok {
		return
	}
	claims, err := s.workflow.Portfolio(r.Context(), identity, studentID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"student_id": studentID,
		"claims":     toClaimListJSON(claims),
	})
}

// parseDateField accepts a bare date or an RFC 3339 timestamp.
func parseDateField(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
