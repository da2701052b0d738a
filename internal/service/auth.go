package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	"github.com/campuscore/portal-api/internal/domain/model"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"github.com/campuscore/portal-api/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Verifier ports.CredentialVerifier
	Sessions ports.SessionStore
	Profiles ports.ProfileDirectory
	Roles    ports.RoleDirectory

	// SessionTTL bounds regular sessions; RememberTTL applies when the login
	// request asks to be remembered.
	SessionTTL  time.Duration
	RememberTTL time.Duration

	Logger *slog.Logger
}

// AuthService orchestrates the login pipeline: identifier resolution,
// credential verification, role resolution, and session persistence.
type AuthService struct {
	verifier ports.CredentialVerifier
	sessions ports.SessionStore
	profiles ports.ProfileDirectory
	roles    ports.RoleDirectory

	sessionTTL  time.Duration
	rememberTTL time.Duration

	logger *slog.Logger
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessionTTL := opts.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	rememberTTL := opts.RememberTTL
	if rememberTTL < sessionTTL {
		rememberTTL = sessionTTL
	}
	return &AuthService{
		verifier:    opts.Verifier,
		sessions:    opts.Sessions,
		profiles:    opts.Profiles,
		roles:       opts.Roles,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		logger:      logger.With("component", "auth"),
	}
}

// LoginInput groups parameters for a login attempt. Identifier is whatever the
// user typed into the identifier field: email, matric number, or staff ID.
type LoginInput struct {
	Identifier string
	Password   string
	RememberMe bool
}

// LoginResult contains the outcome of a successful login.
type LoginResult struct {
	Session domainauth.Session
}

// Login runs the pipeline strictly in order: resolve the identifier to an
// email, verify credentials, resolve roles, persist the session. Any failure
// short-circuits and leaves the session store untouched. Each attempt mints a
// fresh session ID, so a slow earlier attempt can never overwrite the session
// a later attempt produced.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		return nil, apperrors.ValidationField("identifier", "identifier is required")
	}
	if input.Password == "" {
		return nil, apperrors.ValidationField("password", "password is required")
	}

	email, err := s.resolveIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	identity, err := s.verifier.Verify(ctx, email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	var roles []domainauth.Role
	displayName := identity.DisplayName

	g.Go(func() error {
		var rolesErr error
		roles, rolesErr = s.resolveRoles(gctx, identity)
		if rolesErr != nil {
			s.logger.WarnContext(gctx, "role lookup failed, session gets no roles",
				"user_id", identity.UserID, "err", rolesErr)
		}
		return nil
	})

	if displayName == "" {
		// Backend gave no display name; the profile row has one
		g.Go(func() error {
			if profile, profErr := s.profiles.GetByUserID(gctx, identity.UserID); profErr == nil {
				displayName = profile.DisplayName
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	session := domainauth.Session{
		ID:           uuid.New().String(),
		UserID:       identity.UserID,
		DisplayName:  displayName,
		Email:        identity.Email,
		AccessToken:  identity.AccessToken,
		RefreshToken: identity.RefreshToken,
		Roles:        roles,
		ExpiresAt:    s.sessionExpiry(identity, input.RememberMe),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &LoginResult{Session: session}, nil
}

// resolveIdentifier maps a login identifier to a canonical email. Identifiers
// containing "@" pass through trimmed but otherwise untouched; case
// normalization is the backend's call, not ours. Anything else is looked up
// as a matric number first, then as a staff ID. An identifier that resolves
// to nothing is reported as invalid credentials, indistinguishable from a
// wrong password, so callers cannot probe which identifiers exist.
func (s *AuthService) resolveIdentifier(ctx context.Context, identifier string) (string, error) {
	if strings.Contains(identifier, "@") {
		return identifier, nil
	}

	profile, err := s.profiles.GetByMatricNumber(ctx, identifier)
	if err == nil {
		return profile.Email, nil
	}
	if !apperrors.IsNotFound(err) {
		return "", fmt.Errorf("resolve matric number: %w", err)
	}

	profile, err = s.profiles.GetByStaffID(ctx, identifier)
	if err == nil {
		return profile.Email, nil
	}
	if !apperrors.IsNotFound(err) {
		return "", fmt.Errorf("resolve staff ID: %w", err)
	}

	s.logger.DebugContext(ctx, "identifier resolved to no account")
	return "", apperrors.InvalidCredentials()
}

// resolveRoles unions the directory's role assignments with any roles the
// verifier reported on the identity. A directory failure fails closed: the
// session gets no roles at all, and the failure comes back as a role-lookup
// error for the caller to log.
func (s *AuthService) resolveRoles(ctx context.Context, identity domainauth.Identity) ([]domainauth.Role, error) {
	assigned, err := s.roles.RolesFor(ctx, identity.UserID)
	if err != nil {
		return nil, apperrors.RoleLookupFailed(err)
	}

	seen := make(map[domainauth.Role]bool, len(assigned)+len(identity.Roles))
	roles := make([]domainauth.Role, 0, len(assigned)+len(identity.Roles))
	for _, r := range assigned {
		if r.Valid() && !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	for _, r := range identity.Roles {
		if r.Valid() && !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	return roles, nil
}

// sessionExpiry bounds the session lifetime. The identity's own expiry is a
// ceiling; remember-me stretches the configured TTL, never the ceiling.
func (s *AuthService) sessionExpiry(identity domainauth.Identity, rememberMe bool) time.Time {
	ttl := s.sessionTTL
	if rememberMe {
		ttl = s.rememberTTL
	}
	expiresAt := time.Now().Add(ttl)
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(expiresAt) {
		expiresAt = identity.ExpiresAt
	}
	return expiresAt
}

// GetSession retrieves a session by ID, cleaning up entries past their expiry.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes a session. Logging out an absent or already-cleared session
// succeeds: the end state is the same.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to log out
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Profile returns the profile record for an authenticated account.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}
