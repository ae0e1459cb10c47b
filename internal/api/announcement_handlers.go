package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campusfolio/platform/internal/records"
	"github.com/campusfolio/platform/internal/workflow"
)

type submitAnnouncementRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	SourceURL string `json:"source_url"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
}

func (s *Server) submitAnnouncement(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	var req submitAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	startsAt, ok := optionalDate(w, req.StartsAt, "starts_at")
	if !ok {
		return
	}
	endsAt, ok := optionalDate(w, req.EndsAt, "ends_at")
	if !ok {
		return
	}

	a, err := s.workflow.SubmitAnnouncement(r.Context(), identity, workflow.SubmitAnnouncementInput{
		Title:     req.Title,
		Body:      req.Body,
		Category:  records.Category(req.Category),
		SourceURL: req.SourceURL,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"announcement": toAnnouncementJSON(a)})
}

func (s *Server) listPendingAnnouncements(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	list, err := s.workflow.ListPendingAnnouncements(r.Context(), identity)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcements": toAnnouncementListJSON(list)})
}

func (s *Server) listApprovedAnnouncements(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	list, err := s.workflow.ListApprovedAnnouncements(r.Context(), identity)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcements": toAnnouncementListJSON(list)})
}

type approveAnnouncementRequest struct {
	EndsAt string `json:"ends_at"`
}

func (s *Server) approveAnnouncement(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	announcementID, ok := pathID(w, r, "announcement_id")
	if !ok {
		return
	}
	var req approveAnnouncementRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	endsAt, ok := optionalDate(w, req.EndsAt, "ends_at")
	if !ok {
		return
	}

	a, err := s.workflow.ApproveAnnouncement(r.Context(), identity, announcementID,
		workflow.ApproveAnnouncementInput{EndsAt: endsAt})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcement": toAnnouncementJSON(a)})
}

func (s *Server) rejectAnnouncement(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	announcementID, ok := pathID(w, r, "announcement_id")
	if !ok {
		return
	}
	var req rejectRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	a, err := s.workflow.RejectAnnouncement(r.Context(), identity, announcementID, req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcement": toAnnouncementJSON(a)})
}

func (s *Server) deleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	announcementID, ok := pathID(w, r, "announcement_id")
	if !ok {
		return
	}
	if err := s.workflow.DeleteAnnouncement(r.Context(), identity, announcementID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) announcementInsight(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	announcementID, ok := pathID(w, r, "announcement_id")
	if !ok {
		return
	}
	text, err := s.workflow.CategoryInsight(r.Context(), identity, announcementID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insights": text})
}

// optionalDate parses an optional date field, writing a 400 on bad input.
func optionalDate(w http.ResponseWriter, value, field string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := parseDateField(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+": must be a date (2006-01-02) or RFC 3339 timestamp")
		return nil, false
	}
	return &t, true
}
