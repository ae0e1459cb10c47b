package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusfolio/platform/internal/records"
)

type userJSON struct {
	ID         uuid.UUID `json:"id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserJSON(u records.User) userJSON {
	return userJSON{
		ID:         u.ID,
		TenantID:   u.TenantID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}

type claimJSON struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenant_id"`
	StudentID       uuid.UUID  `json:"student_id"`
	Category        string     `json:"category"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
	ProofRef        string     `json:"proof_ref,omitempty"`
	Status          string     `json:"status"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toClaimJSON(c records.Claim) claimJSON {
	return claimJSON{
		ID:              c.ID,
		TenantID:        c.TenantID,
		StudentID:       c.StudentID,
		Category:        string(c.Category),
		Title:           c.Title,
		Description:     c.Description,
		OccurredAt:      c.OccurredAt,
		ProofRef:        c.ProofRef,
		Status:          string(c.Status),
		ReviewedBy:      c.ReviewedBy,
		ReviewedAt:      c.ReviewedAt,
		RejectionReason: c.RejectionReason,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toClaimListJSON(claims []records.Claim) []claimJSON {
	out := make([]claimJSON, 0, len(claims))
	for _, c := range claims {
		out = append(out, toClaimJSON(c))
	}
	return out
}

type announcementJSON struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"tenant_id"`
	Title           string     `json:"title"`
	Body            string     `json:"body,omitempty"`
	Category        string     `json:"category"`
	SourceURL       string     `json:"source_url,omitempty"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	ExternalKey     string     `json:"external_key,omitempty"`
	Status          string     `json:"status"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toAnnouncementJSON(a records.Announcement) announcementJSON {
	return announcementJSON{
		ID:              a.ID,
		TenantID:        a.TenantID,
		Title:           a.Title,
		Body:            a.Body,
		Category:        string(a.Category),
		SourceURL:       a.SourceURL,
		StartsAt:        a.StartsAt,
		EndsAt:          a.EndsAt,
		ExternalKey:     a.ExternalKey,
		Status:          string(a.Status),
		CreatedBy:       a.CreatedBy,
		ReviewedBy:      a.ReviewedBy,
		ReviewedAt:      a.ReviewedAt,
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAnnouncementListJSON(list []records.Announcement) []announcementJSON {
	out := make([]announcementJSON, 0, len(list))
	for _, a := range list {
		out = append(out, toAnnouncementJSON(a))
	}
	return out
}
