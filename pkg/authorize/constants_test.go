package authorize

import (
	"testing"

	"github.com/google/uuid"
)

func TestRoleIsStaff(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleProfessional, true},
		{RoleReceptionist, true},
		{RolePatient, false},
		{Role("unknown"), false},
	}
	for _, tt := range tests {
		if got := tt.role.IsStaff(); got != tt.want {
			t.Errorf("%s.IsStaff() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestActor(t *testing.T) {
	doc := Actor{UserID: uuid.New(), Roles: []Role{RoleProfessional}}
	if !doc.IsStaff() || !doc.IsOnlyProfessional() || doc.IsAdmin() {
		t.Errorf("professional actor flags wrong: %+v", doc)
	}

	deskDoc := Actor{UserID: uuid.New(), Roles: []Role{RoleProfessional, RoleReceptionist}}
	if deskDoc.IsOnlyProfessional() {
		t.Error("professional with reception role is not confined")
	}

	pat := Actor{UserID: uuid.New(), Roles: []Role{RolePatient}}
	if pat.IsStaff() {
		t.Error("patient is not staff")
	}
}

func TestDefaultPoliciesAreValid(t *testing.T) {
	for _, p := range DefaultPolicies() {
		if err := validatePolicy(p); err != nil {
			t.Errorf("policy %+v: %v", p, err)
		}
	}
}

func TestRoleDisplayNamesES(t *testing.T) {
	for role := range KnownRoles {
		if name := RoleDisplayNamesES[role]; name == "" {
			t.Errorf("role %q has no display name", role)
		}
	}
}
