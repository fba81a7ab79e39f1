package authorize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/google/uuid"
)

const testModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || p.act == "manage" || r.act == p.act)
`

// createTestEnforcer creates a file-backed Casbin enforcer for testing
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	tmpDir := t.TempDir()

	modelPath := filepath.Join(tmpDir, "model.conf")
	if err := os.WriteFile(modelPath, []byte(testModel), 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}

	policyPath := filepath.Join(tmpDir, "policy.csv")
	if err := os.WriteFile(policyPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	e, err := casbin.NewDistributedEnforcer(modelPath, fileadapter.NewAdapter(policyPath))
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}

	e.EnableAutoSave(false)
	e.EnableEnforce(true)

	return e
}

func seededAuth(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(createTestEnforcer(t))
	if err != nil {
		t.Fatalf("NewAuthorization: %v", err)
	}
	if err := SeedDefaultPolicies(context.Background(), auth); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return auth
}

func TestNewAuthorization(t *testing.T) {
	t.Run("returns error for nil enforcer", func(t *testing.T) {
		_, err := NewAuthorization(nil)
		if err == nil {
			t.Error("Expected error for nil enforcer")
		}
	})

	t.Run("succeeds with valid enforcer", func(t *testing.T) {
		auth, err := NewAuthorization(createTestEnforcer(t))
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if auth == nil {
			t.Error("Expected non-nil authorization")
		}
	})
}

func TestEnforce_DefaultPolicies(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	admin, reception, doctor, patient, nobody := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	for id, role := range map[uuid.UUID]Role{
		admin: RoleAdmin, reception: RoleReceptionist, doctor: RoleProfessional, patient: RolePatient,
	} {
		if err := AssignRole(ctx, auth, id, role); err != nil {
			t.Fatalf("assign %s: %v", role, err)
		}
	}

	tests := []struct {
		name     string
		user     uuid.UUID
		resource Resource
		action   Action
		want     bool
	}{
		{"admin wildcard", admin, ResourceRBAC, ActionManage, true},
		{"receptionist manages schedules", reception, ResourceSchedule, ActionCreate, true},
		{"receptionist reads reports", reception, ResourceReport, ActionRead, true},
		{"receptionist cannot touch rbac", reception, ResourceRBAC, ActionUpdate, false},
		{"professional deletes schedule", doctor, ResourceSchedule, ActionDelete, true},
		{"professional has no reports", doctor, ResourceReport, ActionRead, false},
		{"patient books", patient, ResourceAppointment, ActionCreate, true},
		{"patient cancels", patient, ResourceAppointment, ActionCancel, true},
		{"patient cannot confirm", patient, ResourceAppointment, ActionUpdate, false},
		{"patient cannot create schedules", patient, ResourceSchedule, ActionCreate, false},
		{"user without roles", nobody, ResourceBlock, ActionList, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, tt.user, tt.resource, tt.action)
			if err != nil {
				t.Fatalf("Enforce: %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s) = %v, want %v", tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforce_InvalidArgs(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	if _, err := auth.Enforce(ctx, uuid.Nil, ResourceBlock, ActionList); err == nil {
		t.Error("expected error for nil subject")
	}
	if _, err := auth.Enforce(ctx, uuid.New(), Resource("invoice"), ActionList); err == nil {
		t.Error("expected error for unknown resource")
	}
	if _, err := auth.Enforce(ctx, uuid.New(), ResourceBlock, Action("approve")); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestMustEnforce(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()
	user := uuid.New()
	if err := AssignRole(ctx, auth, user, RolePatient); err != nil {
		t.Fatal(err)
	}

	if err := auth.MustEnforce(ctx, user, ResourceBlock, ActionList); err != nil {
		t.Errorf("expected allow, got %v", err)
	}
	if err := auth.MustEnforce(ctx, user, ResourceReport, ActionRead); err != ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestDenyOverridesAllow(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()
	user := uuid.New()
	_ = AssignRole(ctx, auth, user, RoleReceptionist)

	if _, err := auth.AddPermission(ctx, PermissionPolicy{RoleReceptionist, ResourceReport, ActionRead, EffectDeny}); err != nil {
		t.Fatal(err)
	}
	ok, err := auth.Enforce(ctx, user, ResourceReport, ActionRead)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("deny policy should win over allow")
	}
}

func TestRolesForUser(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()
	user := uuid.New()

	_ = AssignRole(ctx, auth, user, RoleProfessional)
	_ = AssignRole(ctx, auth, user, RoleReceptionist)

	roles, err := auth.RolesForUser(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 2 {
		t.Fatalf("roles = %v, want 2", roles)
	}

	if err := RevokeRole(ctx, auth, user, RoleReceptionist); err != nil {
		t.Fatal(err)
	}
	roles, _ = auth.RolesForUser(ctx, user)
	if len(roles) != 1 || roles[0] != RoleProfessional {
		t.Errorf("roles after revoke = %v", roles)
	}
}

func TestAssignRole_Unknown(t *testing.T) {
	auth := seededAuth(t)
	if err := AssignRole(context.Background(), auth, uuid.New(), Role("superuser")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestAddPermission_Validation(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	bad := []PermissionPolicy{
		{Role("ghost"), ResourceBlock, ActionList, EffectAllow},
		{RolePatient, Resource("ghost"), ActionList, EffectAllow},
		{RolePatient, ResourceBlock, Action("ghost"), EffectAllow},
		{RolePatient, ResourceBlock, ActionList, PolicyEffect("maybe")},
	}
	for _, p := range bad {
		if _, err := auth.AddPermission(ctx, p); err == nil {
			t.Errorf("AddPermission(%+v) expected error", p)
		}
	}
}
