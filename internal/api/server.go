// Package api exposes the HTTP interface for the platform service.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfolio/platform/internal/auth"
	"github.com/campusfolio/platform/internal/config"
	"github.com/campusfolio/platform/internal/crawl"
	"github.com/campusfolio/platform/internal/metrics"
	"github.com/campusfolio/platform/internal/records"
	"github.com/campusfolio/platform/internal/workflow"
)

// Server wires HTTP handlers to the auth, workflow, and crawl services.
type Server struct {
	router   chi.Router
	auth     *auth.Service
	workflow *workflow.Service
	crawler  *crawl.Engine
	users    records.UserStore
	logger   *zap.Logger
	cfg      config.Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	authSvc *auth.Service,
	workflowSvc *workflow.Service,
	crawler *crawl.Engine,
	users records.UserStore,
	logger *zap.Logger,
	cfg config.Config,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		auth:     authSvc,
		workflow: workflowSvc,
		crawler:  crawler,
		users:    users,
		logger:   logger.Named("api"),
		cfg:      cfg,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if cfg.Server.DemoPages {
		r.Get("/mock/demo.edu/events", s.demoEventsPage)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.With(s.auth.RequireAuth).Get("/me", s.me)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAuth)

			r.Route("/claims", func(r chi.Router) {
				r.Post("/", s.submitClaim)
				r.Get("/mine", s.listOwnClaims)
				r.Get("/pending", s.listPendingClaims)
				r.Patch("/{claim_id}/approve", s.approveClaim)
				r.Patch("/{claim_id}/reject", s.rejectClaim)
			})

			r.Route("/announcements", func(r chi.Router) {
				r.Post("/", s.submitAnnouncement)
				r.Get("/pending", s.listPendingAnnouncements)
				r.Get("/approved", s.listApprovedAnnouncements)
				r.Patch("/{announcement_id}/approve", s.approveAnnouncement)
				r.Patch("/{announcement_id}/reject", s.rejectAnnouncement)
				r.Delete("/{announcement_id}", s.deleteAnnouncement)
				r.Get("/{announcement_id}/insight", s.announcementInsight)
			})

			r.Post("/crawl/run", s.runCrawl)
			r.Get("/portfolio/{student_id}", s.portfolio)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// identity pulls the verified caller off the request context. RequireAuth
// guarantees presence on every protected route.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (records.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return records.Identity{}, false
	}
	return identity, true
}

// pathID parses a UUID route parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case records.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case records.IsAuthorization(err):
		writeError(w, http.StatusForbidden, err.Error())
	case records.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, records.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.ObserveHTTPRequest(r.Method, route, ww.status, duration)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", duration.Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
