package api

import (
	"net/http"

	"github.com/campusfolio/platform/internal/records"
)

// runCrawl triggers an immediate crawl of the caller's tenant, outside the
// regular schedule.
func (s *Server) runCrawl(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	if identity.Role != records.RoleFaculty && identity.Role != records.RoleAdmin {
		writeError(w, http.StatusForbidden, "faculty or admin role required")
		return
	}

	result, err := s.crawler.RunTenantByID(r.Context(), identity.TenantID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant":  result.Tenant,
		"created": result.Created,
		"skipped": result.Skipped,
	})
}

// demoEventsPage serves a small fixture page matching the extraction
// contract, so a locally seeded tenant has something to crawl.
func (s *Server) demoEventsPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(demoEventsHTML))
}

const demoEventsHTML = `<!doctype html>
<html><head><title>Demo University Events</title></head>
<body>
  <article class="event" data-id="hackathon-2025" data-title="Inter-College Hackathon 2025" data-category="competition" data-date-start="2025-09-20" data-date-end="2025-09-22">
    <div class="title">Inter-College Hackathon 2025</div>
    <div class="body">48-hour hackathon. Teams of 3-5. Prizes and internships offered.</div>
  </article>
  <article class="event" data-id="ai-workshop" data-title="AI Workshop" data-category="workshop" data-date-start="2025-10-05" data-date-end="2025-10-05">
    <div class="title">AI Workshop</div>
    <div class="body">Hands-on session on ML model deployment.</div>
  </article>
</body></html>
`
