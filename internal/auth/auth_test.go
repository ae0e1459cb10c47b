package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campusfolio/platform/internal/records"
	"github.com/campusfolio/platform/internal/store/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type uuidGen struct{}

func (uuidGen) NewRawID() (uuid.UUID, error) { return uuid.NewV7() }

func newService(t *testing.T) (*Service, records.Tenant) {
	t.Helper()

	tenants := memory.NewTenantStore()
	users := memory.NewUserStore()
	tenant := records.Tenant{ID: uuid.New(), Name: "Demo University", Enabled: true}
	require.NoError(t, tenants.Create(context.Background(), tenant))

	svc := New(
		Config{Secret: "test-secret", TokenTTL: time.Hour},
		tenants, users,
		fixedClock{now: time.Now().UTC()},
		uuidGen{},
	)
	return svc, tenant
}

func registerInput(tenantID uuid.UUID) RegisterInput {
	return RegisterInput{
		TenantID:   tenantID,
		Name:       "Asha Patel",
		Email:      "Asha@Demo.edu",
		Password:   "Pass@123!",
		Role:       "student",
		Department: "CSE",
	}
}

func TestRegisterAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	svc, tenant := newService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, registerInput(tenant.ID))
	require.NoError(t, err)
	require.Equal(t, "asha@demo.edu", user.Email)
	require.NotEmpty(t, user.PasswordHash)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, tenant.ID, identity.TenantID)
	require.Equal(t, records.RoleStudent, identity.Role)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, tenant := newService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"bad role", func(in *RegisterInput) { in.Role = "dean" }},
		{"unknown tenant", func(in *RegisterInput) { in.TenantID = uuid.New() }},
		{"empty name", func(in *RegisterInput) { in.Name = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := registerInput(tenant.ID)
			tc.mutate(&in)
			_, _, err := svc.Register(ctx, in)
			require.True(t, records.IsValidation(err), "got %v", err)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, tenant := newService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerInput(tenant.ID))
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerInput(tenant.ID))
	require.True(t, records.IsConflict(err))
}

func TestLoginChecksPassword(t *testing.T) {
	t.Parallel()

	svc, tenant := newService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerInput(tenant.ID))
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "asha@demo.edu", "Pass@123!")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "asha@demo.edu", "wrong")
	require.True(t, records.IsAuthorization(err))

	_, _, err = svc.Login(ctx, "nobody@demo.edu", "Pass@123!")
	require.True(t, records.IsAuthorization(err))
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	t.Parallel()

	svc, tenant := newService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, registerInput(tenant.ID))
	require.NoError(t, err)

	// A token signed in the past beyond its TTL is expired.
	past := New(Config{Secret: "test-secret", TokenTTL: time.Hour},
		nil, nil, fixedClock{now: time.Now().UTC().Add(-2 * time.Hour)}, uuidGen{})
	expired, err := past.IssueToken(user)
	require.NoError(t, err)
	_, err = svc.Verify(expired)
	require.True(t, records.IsAuthorization(err))

	// A token signed with a different secret never verifies.
	foreign := New(Config{Secret: "other-secret", TokenTTL: time.Hour},
		nil, nil, fixedClock{now: time.Now().UTC()}, uuidGen{})
	forged, err := foreign.IssueToken(user)
	require.NoError(t, err)
	_, err = svc.Verify(forged)
	require.True(t, records.IsAuthorization(err))
}

func TestRequireAuthMiddleware(t *testing.T) {
	t.Parallel()

	svc, tenant := newService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, registerInput(tenant.ID))
	require.NoError(t, err)

	var seen records.Identity
	handler := svc.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = identity
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/claims/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, user.ID, seen.UserID)

	// No token, garbage token.
	for _, header := range []string{"", "Bearer nope", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/claims/mine", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}
