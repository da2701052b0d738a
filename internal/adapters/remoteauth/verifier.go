package remoteauth

// Package remoteauth verifies portal credentials against a hosted auth
// backend over the OAuth2 resource-owner password grant. The backend's token
// response shape is configurable via JMESPath expressions so different hosted
// providers can be plugged in without code changes.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"golang.org/x/oauth2"
)

// Config holds configuration for the remote verifier.
type Config struct {
	// TokenURL is the backend's password-grant token endpoint.
	TokenURL string

	// ClientID/ClientSecret identify this portal to the backend.
	ClientID     string
	ClientSecret string

	// IssuerURL enables signature verification of returned access tokens
	// against the issuer's JWKS. When empty, token claims are read unverified
	// and SessionTTL bounds the session instead.
	IssuerURL string

	// RolesPath and DisplayNamePath are JMESPath expressions evaluated against
	// the token response (and the access token claims as fallback).
	RolesPath       string
	DisplayNamePath string

	// SessionTTL is the ceiling on identity lifetime regardless of what the
	// backend token claims.
	SessionTTL time.Duration

	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// Verifier implements ports.CredentialVerifier against a hosted backend.
type Verifier struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	sessionTTL time.Duration

	rolesPath       string
	displayNamePath string

	// tokenVerifier is nil when IssuerURL is not configured.
	tokenVerifier *gooidc.IDTokenVerifier
}

// NewVerifier creates a remote verifier. When cfg.IssuerURL is set, the
// issuer's discovery document is fetched once here.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if cfg.TokenURL == "" {
		return nil, errors.New("token URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session TTL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	v := &Verifier{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		sessionTTL: cfg.SessionTTL,
	}

	// Validate extraction expressions up front so a bad path fails at boot,
	// not on the first login.
	if cfg.RolesPath != "" {
		if _, err := jmespath.Compile(cfg.RolesPath); err != nil {
			return nil, fmt.Errorf("compile roles path: %w", err)
		}
		v.rolesPath = cfg.RolesPath
	}
	if cfg.DisplayNamePath != "" {
		if _, err := jmespath.Compile(cfg.DisplayNamePath); err != nil {
			return nil, fmt.Errorf("compile display name path: %w", err)
		}
		v.displayNamePath = cfg.DisplayNamePath
	}

	if cfg.IssuerURL != "" {
		octx := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		op, provErr := gooidc.NewProvider(octx, strings.TrimSuffix(cfg.IssuerURL, "/"))
		if provErr != nil {
			return nil, fmt.Errorf("oidc new provider: %w", provErr)
		}
		// Access tokens carry the backend's own audience, not our client ID
		v.tokenVerifier = op.Verifier(&gooidc.Config{SkipClientIDCheck: true})
	}

	return v, nil
}

// Verify exchanges email+password for backend tokens and maps the response
// into a portal identity. Rejections (4xx) surface as invalid credentials;
// transport failures and backend 5xx surface as backend-unavailable so
// callers never treat an outage as a bad password.
func (v *Verifier) Verify(ctx context.Context, email, password string) (domainauth.Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	tok, err := v.oauth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return domainauth.Identity{}, mapTokenError(err)
	}
	if tok.AccessToken == "" {
		return domainauth.Identity{}, apperrors.MalformedResponse(errors.New("token response missing access_token"))
	}

	claims, err := v.tokenClaims(ctx, tok.AccessToken)
	if err != nil {
		return domainauth.Identity{}, err
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return domainauth.Identity{}, apperrors.MalformedResponse(errors.New("access token missing sub claim"))
	}

	identity := domainauth.Identity{
		UserID:       userID,
		Email:        email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    v.expiry(tok, claims),
	}
	if claimEmail, ok := claims["email"].(string); ok && claimEmail != "" {
		identity.Email = claimEmail
	}
	if v.displayNamePath != "" {
		if name, ok := v.search(v.displayNamePath, tok, claims).(string); ok {
			identity.DisplayName = name
		}
	}
	if v.rolesPath != "" {
		identity.Roles = toRoles(v.search(v.rolesPath, tok, claims))
	}
	return identity, nil
}

// tokenClaims returns the access token's claims, verified against the issuer
// JWKS when configured and read unverified otherwise. Opaque (non-JWT) tokens
// are only acceptable in unverified mode.
func (v *Verifier) tokenClaims(ctx context.Context, accessToken string) (map[string]any, error) {
	if v.tokenVerifier != nil {
		idTok, err := v.tokenVerifier.Verify(ctx, accessToken)
		if err != nil {
			return nil, apperrors.MalformedResponse(fmt.Errorf("verify access token: %w", err))
		}
		var claims map[string]any
		if err := idTok.Claims(&claims); err != nil {
			return nil, apperrors.MalformedResponse(fmt.Errorf("parse access token claims: %w", err))
		}
		return claims, nil
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, apperrors.MalformedResponse(fmt.Errorf("parse access token: %w", err))
	}
	return claims, nil
}

// expiry picks the earliest of the token's own lifetime and the configured
// session ceiling.
func (v *Verifier) expiry(tok *oauth2.Token, claims map[string]any) time.Time {
	ceiling := time.Now().Add(v.sessionTTL)
	expiresAt := ceiling
	if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry
	} else if exp, ok := claims["exp"].(float64); ok && exp > 0 {
		expiresAt = time.Unix(int64(exp), 0)
	}
	if expiresAt.After(ceiling) {
		expiresAt = ceiling
	}
	return expiresAt
}

// search evaluates path against the token response first and falls back to
// the access token claims. Token response extras are only addressable by their
// top-level key, so the path's first segment selects the extra and the
// remainder is evaluated inside it.
func (v *Verifier) search(path string, tok *oauth2.Token, claims map[string]any) any {
	first, rest, _ := strings.Cut(path, ".")
	if raw := tok.Extra(first); raw != nil {
		if rest == "" {
			return raw
		}
		if out, err := jmespath.Search(rest, raw); err == nil && out != nil {
			return out
		}
	}
	if out, err := jmespath.Search(path, claims); err == nil {
		return out
	}
	return nil
}

// toRoles coerces a JMESPath result into the closed role set, dropping values
// that are not recognized role names.
func toRoles(raw any) []domainauth.Role {
	var names []string
	switch val := raw.(type) {
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
	case []string:
		names = val
	case string:
		if val != "" {
			names = []string{val}
		}
	default:
		return nil
	}

	var roles []domainauth.Role
	for _, name := range names {
		role := domainauth.Role(strings.ToLower(strings.TrimSpace(name)))
		if role.Valid() {
			roles = append(roles, role)
		}
	}
	return roles
}

// mapTokenError classifies a PasswordCredentialsToken failure. A 4xx from the
// token endpoint means the backend rejected the credentials; 5xx and transport
// failures mean the backend is unreachable; a 2xx response the library could
// not parse means the backend sent garbage.
func mapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= 400 && retrieveErr.Response.StatusCode < 500 {
			return apperrors.InvalidCredentials()
		}
		return apperrors.BackendUnavailable(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "auth backend timed out")
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return apperrors.BackendUnavailable(err)
	}
	return apperrors.MalformedResponse(err)
}
