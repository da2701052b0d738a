package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the credential-verification mode for the application.
type AuthMode string

const (
	// AuthModeRemote verifies credentials against the hosted auth backend.
	AuthModeRemote AuthMode = "remote"
	// AuthModeMock verifies credentials against in-memory demo accounts
	// (for development and testing only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "remote", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: remote, mock)", v)
	}
}

// RemoteAuthConfig contains configuration for the hosted auth backend.
// The backend exposes an OAuth2 resource-owner password endpoint; on login the
// user's canonical email + password are exchanged for access/refresh tokens.
type RemoteAuthConfig struct {
	// TokenURL is the password-grant token endpoint of the hosted backend.
	TokenURL string `env:"TOKEN_URL"`

	// ClientID/ClientSecret identify this portal to the backend. Some hosted
	// backends use a public "anon" key as the client ID with no secret.
	ClientID     string `env:"CLIENT_ID"     envDefault:"portal"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:""`

	// IssuerURL enables signature verification of the returned access token
	// against the backend's JWKS. When empty, the token's expiry is taken from
	// its unverified claims and SessionTTL acts as the ceiling.
	IssuerURL string `env:"ISSUER_URL"`

	// RolesPath is a JMESPath expression extracting role names from the
	// backend's login response payload. Backends shape the user object
	// differently; the default matches a `roles: ["student", ...]` array.
	RolesPath string `env:"ROLES_PATH" envDefault:"roles"`

	// DisplayNamePath extracts the display name from the login response.
	DisplayNamePath string `env:"DISPLAY_NAME_PATH" envDefault:"user.user_metadata.display_name"`
}

// MockAuthConfig controls the in-memory credential verifier.
// Used when AUTH_MODE=mock for development and testing; accounts come from the
// demo seed set unless overridden here.
type MockAuthConfig struct {
	// ExtraAccounts adds accounts beyond the demo set, formatted as
	// email:bcrypt-hash pairs separated by ';'.
	ExtraAccounts []string `env:"EXTRA_ACCOUNTS" envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential verifier to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"remote"`

	// Remote backend configuration (used when Mode=remote).
	Remote RemoteAuthConfig `envPrefix:"REMOTE_AUTH_"`

	// Mock configuration (used when Mode=mock).
	Mock MockAuthConfig `envPrefix:"MOCK_AUTH_"`

	// SessionTTL is the default session lifetime.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// RememberTTL is the session lifetime when the login request sets
	// remember_me.
	RememberTTL time.Duration `env:"SESSION_REMEMBER_TTL" envDefault:"720h"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 8 * time.Hour
	}
	// remember_me must never shorten a session
	if a.RememberTTL < a.SessionTTL {
		a.RememberTTL = a.SessionTTL
	}
}
