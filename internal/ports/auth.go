package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	"github.com/campuscore/portal-api/internal/domain/model"
)

// CredentialVerifier checks an email/password pair against an authentication
// backend and returns the authenticated identity.
//
// Implementations never see identifiers, only canonical emails; identifier
// resolution happens before verification. Credential material crosses this
// boundary immediately and is never stored.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
//
// The store is a single mutable slot per session ID: Save and Delete are
// atomic with respect to each other, last write wins. Get on a missing or
// unreadable entry reports absence rather than failing.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ProfileDirectory resolves login identifiers against the profile store.
type ProfileDirectory interface {
	// GetByMatricNumber returns the profile holding the given matric number.
	GetByMatricNumber(ctx context.Context, matric string) (*model.Profile, error)
	// GetByStaffID returns the profile holding the given staff ID.
	GetByStaffID(ctx context.Context, staffID string) (*model.Profile, error)
	// GetByUserID returns the profile for an authenticated account.
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// RoleDirectory returns the set of portal roles assigned to an account.
// An empty result is valid: the account is authenticated but has no portal
// access.
type RoleDirectory interface {
	RolesFor(ctx context.Context, userID string) ([]domainauth.Role, error)
}
