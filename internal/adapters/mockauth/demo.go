package mockauth

import (
	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
)

// Stable IDs for the demo accounts so profile and role rows seeded into the
// database line up with mock logins across restarts.
const (
	DemoStudentID = "11111111-1111-4111-8111-111111111111"
	DemoStaffID   = "22222222-2222-4222-8222-222222222222"
	DemoAdminID   = "33333333-3333-4333-8333-333333333333"
)

// Demo account credentials, published on the portal login screens.
const (
	DemoStudentEmail    = "student@unical.demo"
	DemoStudentPassword = "Demo@1234"
	DemoStaffEmail      = "staff@unical.demo"
	DemoStaffPassword   = "Staff@1234"
	DemoAdminEmail      = "admin@unical.demo"
	DemoAdminPassword   = "Admin@1234"
)

// DemoAccounts returns the built-in demo account set. Hashes are computed at
// call time; callers should construct the verifier once and reuse it.
func DemoAccounts() []Account {
	return []Account{
		{
			UserID:       DemoStudentID,
			Email:        DemoStudentEmail,
			DisplayName:  "Ms Ubi Blessing George",
			PasswordHash: mustHash(DemoStudentPassword),
			Roles:        []domainauth.Role{domainauth.RoleStudent},
		},
		{
			UserID:       DemoStaffID,
			Email:        DemoStaffEmail,
			DisplayName:  "Dr. Amaka Okonkwo",
			PasswordHash: mustHash(DemoStaffPassword),
			Roles:        []domainauth.Role{domainauth.RoleStaff},
		},
		{
			UserID:       DemoAdminID,
			Email:        DemoAdminEmail,
			DisplayName:  "System Administrator",
			PasswordHash: mustHash(DemoAdminPassword),
			Roles:        []domainauth.Role{domainauth.RoleAdmin},
		},
	}
}
