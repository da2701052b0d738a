package devseed

// Package devseed provisions the demo accounts used by the portal login
// screens in development. Seeding is idempotent: profiles are upserted and
// role grants use insert-if-absent semantics, so it is safe to run on every
// startup.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/campuscore/portal-api/internal/adapters/mockauth"
	"github.com/campuscore/portal-api/internal/data"
	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	"github.com/campuscore/portal-api/internal/domain/model"
)

// demoAccount couples a profile with the roles it should hold.
type demoAccount struct {
	profile model.CreateProfileRequest
	roles   []domainauth.Role
}

func strPtr(s string) *string { return &s }

// demoAccounts mirrors the mock verifier's account set so a mock login always
// finds its profile and role rows.
func demoAccounts() []demoAccount {
	return []demoAccount{
		{
			profile: model.CreateProfileRequest{
				UserID:       mockauth.DemoStudentID,
				DisplayName:  "Ms Ubi Blessing George",
				Email:        mockauth.DemoStudentEmail,
				MatricNumber: strPtr("22/071145217"),
				Department:   strPtr("Computer Science"),
				Faculty:      strPtr("Faculty of Science"),
				Level:        strPtr("300 Level"),
				Phone:        strPtr("07030641052"),
			},
			roles: []domainauth.Role{domainauth.RoleStudent},
		},
		{
			profile: model.CreateProfileRequest{
				UserID:      mockauth.DemoStaffID,
				DisplayName: "Dr. Amaka Okonkwo",
				Email:       mockauth.DemoStaffEmail,
				StaffID:     strPtr("STF/2015/001234"),
				Department:  strPtr("Computer Science"),
				Faculty:     strPtr("Faculty of Science"),
			},
			roles: []domainauth.Role{domainauth.RoleStaff},
		},
		{
			profile: model.CreateProfileRequest{
				UserID:      mockauth.DemoAdminID,
				DisplayName: "System Administrator",
				Email:       mockauth.DemoAdminEmail,
				StaffID:     strPtr("ADM/2010/000001"),
				Department:  strPtr("ICT Directorate"),
			},
			roles: []domainauth.Role{domainauth.RoleAdmin},
		},
	}
}

// Run seeds the demo profiles and their role grants.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	profiles := data.NewProfileRepo(db)
	roles := data.NewRoleRepo(db)

	for _, account := range demoAccounts() {
		req := account.profile
		if _, err := profiles.Upsert(ctx, &req); err != nil {
			return fmt.Errorf("seed profile %s: %w", req.Email, err)
		}
		for _, role := range account.roles {
			if err := roles.Assign(ctx, req.UserID, role); err != nil {
				return fmt.Errorf("assign role %s to %s: %w", role, req.Email, err)
			}
		}
		if logger != nil {
			logger.InfoContext(ctx, "demo account seeded", "email", req.Email)
		}
	}

	return nil
}
