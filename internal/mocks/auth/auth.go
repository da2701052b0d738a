package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	"github.com/campuscore/portal-api/internal/domain/model"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"github.com/campuscore/portal-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialVerifier = (*StubVerifier)(nil)
	_ ports.SessionStore       = (*MemorySessionStore)(nil)
	_ ports.ProfileDirectory   = (*StaticProfileDirectory)(nil)
	_ ports.RoleDirectory      = (*StaticRoleDirectory)(nil)
)

// StubVerifier simulates a credential backend for tests.
type StubVerifier struct {
	VerifyFunc func(ctx context.Context, email, password string) (domainauth.Identity, error)

	// Deterministic values used when VerifyFunc is nil: credentials matching
	// Email+Password yield Identity, anything else is rejected.
	Email    string
	Password string
	Identity domainauth.Identity
}

// NewStubVerifier creates a StubVerifier accepting one fixed credential pair.
func NewStubVerifier(email, password string, identity domainauth.Identity) *StubVerifier {
	return &StubVerifier{Email: email, Password: password, Identity: identity}
}

func (s *StubVerifier) Verify(ctx context.Context, email, password string) (domainauth.Identity, error) {
	if s.VerifyFunc != nil {
		return s.VerifyFunc(ctx, email, password)
	}
	if email != s.Email || password != s.Password {
		return domainauth.Identity{}, apperrors.InvalidCredentials()
	}
	// Identity is returned exactly as configured. In particular a zero
	// ExpiresAt stays zero, matching backends that report no token lifetime.
	return s.Identity, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	sessions map[string]domainauth.Session

	// SaveErr, when set, is returned by Save to simulate store failures.
	SaveErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions the store currently holds.
func (m *MemorySessionStore) Len() int { return len(m.sessions) }

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// StaticProfileDirectory serves a fixed profile set keyed by identifier.
type StaticProfileDirectory struct {
	Profiles []*model.Profile

	// Err, when set, is returned by every lookup to simulate directory outages.
	Err error
}

func (d *StaticProfileDirectory) GetByMatricNumber(_ context.Context, matric string) (*model.Profile, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	for _, p := range d.Profiles {
		if p.MatricNumber != nil && *p.MatricNumber == matric {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("profile not found")
}

func (d *StaticProfileDirectory) GetByStaffID(_ context.Context, staffID string) (*model.Profile, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	for _, p := range d.Profiles {
		if p.StaffID != nil && *p.StaffID == staffID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("profile not found")
}

func (d *StaticProfileDirectory) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	for _, p := range d.Profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("profile not found")
}

// StaticRoleDirectory serves role assignments from a map.
type StaticRoleDirectory struct {
	Roles map[string][]domainauth.Role

	// Err, when set, is returned by RolesFor to simulate lookup failures.
	Err error
}

func (d *StaticRoleDirectory) RolesFor(_ context.Context, userID string) ([]domainauth.Role, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Roles[userID], nil
}
