package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents a portal authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known portal roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// rolePrecedence orders roles for selecting an account's primary role.
// Higher wins: admin > staff > student.
var rolePrecedence = map[Role]int{
	RoleStudent: 1,
	RoleStaff:   2,
	RoleAdmin:   3,
}

// PrimaryRole returns the highest-precedence role in roles, or "" when the
// set is empty or contains no known role.
func PrimaryRole(roles []Role) Role {
	var best Role
	bestRank := 0
	for _, r := range roles {
		if rank := rolePrecedence[r]; rank > bestRank {
			best, bestRank = r, rank
		}
	}
	return best
}

// Identity represents the authenticated principal returned by the credential
// verifier. Adapters map backend-specific payloads into this shape.
type Identity struct {
	UserID       string // stable account identifier at the auth backend
	DisplayName  string
	Email        string
	AccessToken  string
	RefreshToken string // empty when the backend issues none
	Roles        []Role // roles embedded in the backend payload, if any
	ExpiresAt    time.Time
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier delivered to the client as a cookie.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Roles        []Role    `json:"roles"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HasRole reports whether the session's role set contains role.
func (s Session) HasRole(role Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole returns the session's highest-precedence role, or "" when the
// account carries no role. An authenticated session with zero roles is a
// distinct state from "not authenticated": the user is known but has no
// portal access.
func (s Session) PrimaryRole() Role {
	return PrimaryRole(s.Roles)
}
