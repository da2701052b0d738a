package auth

import (
	"testing"
	"time"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleStaff, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	for _, r := range []Role{Role(""), Role("guest"), Role("Admin")} {
		if r.Valid() {
			t.Fatalf("did not expect %q to be valid", r)
		}
	}
}

func TestPrimaryRole_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		roles []Role
		want  Role
	}{
		{"empty", nil, Role("")},
		{"single", []Role{RoleStudent}, RoleStudent},
		{"admin beats staff", []Role{RoleStaff, RoleAdmin}, RoleAdmin},
		{"order does not matter", []Role{RoleAdmin, RoleStudent}, RoleAdmin},
		{"staff beats student", []Role{RoleStudent, RoleStaff}, RoleStaff},
		{"unknown roles ignored", []Role{Role("guest"), RoleStudent}, RoleStudent},
		{"only unknown roles", []Role{Role("guest")}, Role("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrimaryRole(tt.roles); got != tt.want {
				t.Fatalf("PrimaryRole(%v) = %q, want %q", tt.roles, got, tt.want)
			}
		})
	}
}

func TestSession_HasRole(t *testing.T) {
	s := Session{Roles: []Role{RoleStudent, RoleStaff}}
	if !s.HasRole(RoleStudent) || !s.HasRole(RoleStaff) {
		t.Fatalf("expected both roles to be present")
	}
	if s.HasRole(RoleAdmin) {
		t.Fatalf("did not expect admin role")
	}
	if (Session{}).HasRole(RoleStudent) {
		t.Fatalf("empty session should hold no roles")
	}
}

func TestSession_PrimaryRole(t *testing.T) {
	s := Session{Roles: []Role{RoleStudent, RoleAdmin}}
	if got := s.PrimaryRole(); got != RoleAdmin {
		t.Fatalf("PrimaryRole() = %q, want admin", got)
	}
	if got := (Session{}).PrimaryRole(); got != Role("") {
		t.Fatalf("PrimaryRole() on empty session = %q, want empty", got)
	}
}

func TestIdentity_SimpleFields(t *testing.T) {
	id := Identity{UserID: "u", Email: "e", ExpiresAt: time.Now().Add(time.Hour)}
	if id.UserID != "u" || id.Email != "e" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}
