package model

// Package model contains domain models for portal records.

import (
	"strings"
	"time"

	apperrors "github.com/campuscore/portal-api/internal/errors"
)

// Profile is the portal-side record for an account. The authoritative copy
// lives at the auth backend; this table carries the university-specific
// identifiers used for login resolution and the descriptive fields shown on
// dashboards.
//
// Students carry a matric number, staff carry a staff ID; both columns are
// unique so an identifier resolves to at most one profile.
type Profile struct {
	UserID       string    `db:"user_id"       json:"user_id"`
	DisplayName  string    `db:"display_name"  json:"display_name"`
	Email        string    `db:"email"         json:"email"`
	MatricNumber *string   `db:"matric_number" json:"matric_number,omitempty"`
	StaffID      *string   `db:"staff_id"      json:"staff_id,omitempty"`
	Department   *string   `db:"department"    json:"department,omitempty"`
	Faculty      *string   `db:"faculty"       json:"faculty,omitempty"`
	Level        *string   `db:"level"         json:"level,omitempty"`
	Phone        *string   `db:"phone"         json:"phone,omitempty"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// CreateProfileRequest carries the fields for provisioning a profile.
// Provisioning is an out-of-band concern (seeding, bulk import); the auth
// core only reads profiles.
type CreateProfileRequest struct {
	UserID       string
	DisplayName  string
	Email        string
	MatricNumber *string
	StaffID      *string
	Department   *string
	Faculty      *string
	Level        *string
	Phone        *string
}

// Validate checks the request for required fields and invariants.
func (r *CreateProfileRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return apperrors.ValidationField("user_id", "user_id is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return apperrors.ValidationField("email", "email must contain '@'")
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return apperrors.ValidationField("display_name", "display_name is required")
	}
	if r.MatricNumber != nil && strings.TrimSpace(*r.MatricNumber) == "" {
		return apperrors.ValidationField("matric_number", "matric_number cannot be blank")
	}
	if r.StaffID != nil && strings.TrimSpace(*r.StaffID) == "" {
		return apperrors.ValidationField("staff_id", "staff_id cannot be blank")
	}
	return nil
}
