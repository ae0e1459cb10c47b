package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/campusfolio/platform/internal/records"
)

type contextKey struct{}

// identityKey stores the verified identity on the request context.
var identityKey contextKey

// IdentityFromContext returns the verified caller identity, if any.
func IdentityFromContext(ctx context.Context) (records.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(records.Identity)
	return identity, ok
}

// WithIdentity attaches an identity to a context. Exported for tests.
func WithIdentity(ctx context.Context, identity records.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// RequireAuth verifies the bearer token and injects the identity into the
// request context. Requests without a valid token get a 401.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		identity, err := s.Verify(token)
		if err != nil {
			unauthorized(w, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
