// Package auth handles registration, credential checks, and the signed
// token identities every workflow operation trusts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusfolio/platform/internal/records"
)

// Config controls token issuance.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// Service implements registration, login, and token verification.
type Service struct {
	cfg     Config
	tenants records.TenantStore
	users   records.UserStore
	clock   records.Clock
	ids     records.IDGenerator
}

// New builds a Service.
func New(cfg Config, tenants records.TenantStore, users records.UserStore, clock records.Clock, ids records.IDGenerator) *Service {
	return &Service{cfg: cfg, tenants: tenants, users: users, clock: clock, ids: ids}
}

// RegisterInput carries the self-registration fields.
type RegisterInput struct {
	TenantID   uuid.UUID
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
}

// tokenClaims is the JWT payload. The tenant travels inside the token so
// every request is scoped without a user lookup.
type tokenClaims struct {
	jwt.RegisteredClaims
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
}

// Register creates a user in an enabled tenant and returns a fresh token.
func (s *Service) Register(ctx context.Context, input RegisterInput) (records.User, string, error) {
	if input.Name == "" {
		return records.User{}, "", records.NewValidationError("name", "must not be empty")
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return records.User{}, "", records.NewValidationError("email", "must be a valid address")
	}
	if len(input.Password) < 8 {
		return records.User{}, "", records.NewValidationError("password", "must be at least 8 characters")
	}
	role, ok := records.ParseRole(input.Role)
	if !ok {
		return records.User{}, "", records.NewValidationError("role", fmt.Sprintf("unknown role %q", input.Role))
	}

	tenant, err := s.tenants.QueryByID(ctx, input.TenantID)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return records.User{}, "", records.NewValidationError("tenant_id", "unknown institution")
		}
		return records.User{}, "", fmt.Errorf("load tenant: %w", err)
	}
	if !tenant.Enabled {
		return records.User{}, "", records.NewValidationError("tenant_id", "institution is disabled")
	}

	if _, err := s.users.QueryByEmail(ctx, input.Email); err == nil {
		return records.User{}, "", records.NewConflictError("email already registered")
	} else if !errors.Is(err, records.ErrNotFound) {
		return records.User{}, "", fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return records.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	id, err := s.ids.NewRawID()
	if err != nil {
		return records.User{}, "", fmt.Errorf("mint user id: %w", err)
	}

	user := records.User{
		ID:           id,
		TenantID:     tenant.ID,
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Role:         role,
		Department:   input.Department,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return records.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return records.User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (records.User, string, error) {
	user, err := s.users.QueryByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return records.User{}, "", records.NewAuthorizationError("invalid credentials")
		}
		return records.User{}, "", fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return records.User{}, "", records.NewAuthorizationError("invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return records.User{}, "", err
	}
	return user, token, nil
}

// IssueToken signs an HS256 token carrying the user's identity triple.
func (s *Service) IssueToken(user records.User) (string, error) {
	now := s.clock.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		Name:     user.Name,
		Email:    user.Email,
		Role:     string(user.Role),
		TenantID: user.TenantID.String(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token string into an identity.
func (s *Service) Verify(tokenString string) (records.Identity, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return records.Identity{}, records.NewAuthorizationError("invalid or expired token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return records.Identity{}, records.NewAuthorizationError("invalid token subject")
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return records.Identity{}, records.NewAuthorizationError("invalid token tenant")
	}
	role, ok := records.ParseRole(claims.Role)
	if !ok {
		return records.Identity{}, records.NewAuthorizationError("invalid token role")
	}

	return records.Identity{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		Name:     claims.Name,
		Email:    claims.Email,
	}, nil
}
