package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/google/uuid"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	RoleProvider

	// Enforce answers: "may user act on object?"
	Enforce(ctx context.Context, userID uuid.UUID, object Resource, action Action) (bool, error)
	MustEnforce(ctx context.Context, userID uuid.UUID, object Resource, action Action) error

	AddRoleForUser(ctx context.Context, userID uuid.UUID, role Role) (bool, error)
	RemoveRoleForUser(ctx context.Context, userID uuid.UUID, role Role) (bool, error)

	AddPermission(ctx context.Context, p PermissionPolicy) (bool, error)
	RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error)

	Raw() *casbin.DistributedEnforcer
}

// Authorization is a thin typed wrapper around casbin.Enforcer.
type Authorization struct {
	enforcer *casbin.DistributedEnforcer
}

// NewAuthorization wraps an already-configured Enforcer
func NewAuthorization(e *casbin.DistributedEnforcer) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, err
	}
	return &Authorization{enforcer: e}, nil
}

func (a *Authorization) Raw() *casbin.DistributedEnforcer { return a.enforcer }

func (a *Authorization) Enforce(ctx context.Context, userID uuid.UUID, object Resource, action Action) (bool, error) {
	if userID == uuid.Nil {
		return false, fmt.Errorf("%w: subject is empty", ErrInvalidArgs)
	}
	if _, ok := KnownResources[object]; !ok {
		return false, fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok {
		return false, fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}
	return a.enforcer.Enforce(userID.String(), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, userID uuid.UUID, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, userID, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// ---- Grouping (roles) ----

func (a *Authorization) AddRoleForUser(ctx context.Context, userID uuid.UUID, role Role) (bool, error) {
	if userID == uuid.Nil {
		return false, fmt.Errorf("%w: empty subject", ErrInvalidArgs)
	}
	if _, ok := KnownRoles[role]; !ok {
		return false, fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, role)
	}
	return a.enforcer.AddGroupingPolicy(userID.String(), string(role))
}

func (a *Authorization) RemoveRoleForUser(ctx context.Context, userID uuid.UUID, role Role) (bool, error) {
	if userID == uuid.Nil || role == "" {
		return false, fmt.Errorf("%w: empty subject/role", ErrInvalidArgs)
	}
	return a.enforcer.RemoveGroupingPolicy(userID.String(), string(role))
}

// RolesForUser implements RoleProvider. Unknown role names stored in the
// policy table are ignored.
func (a *Authorization) RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: subject is empty", ErrInvalidArgs)
	}
	names, err := a.enforcer.GetRolesForUser(userID.String())
	if err != nil {
		return nil, err
	}
	out := make([]Role, 0, len(names))
	for _, n := range names {
		if _, ok := KnownRoles[Role(n)]; ok {
			out = append(out, Role(n))
		}
	}
	return out, nil
}

// ---- Permissions (p rules) ----

func validatePolicy(p PermissionPolicy) error {
	if _, ok := KnownRoles[p.Subject]; !ok {
		return fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, p.Subject)
	}
	if _, ok := KnownResources[p.Object]; !ok && p.Object != WildcardResource {
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, p.Object)
	}
	if _, ok := KnownActions[p.Action]; !ok && p.Action != WildcardAction {
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, p.Action)
	}
	if p.Effect != EffectAllow && p.Effect != EffectDeny {
		return fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, p.Effect)
	}
	return nil
}

func (a *Authorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	if err := validatePolicy(p); err != nil {
		return false, err
	}
	return a.enforcer.AddPolicy(string(p.Subject), string(p.Object), string(p.Action), string(p.Effect))
}

func (a *Authorization) RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	if err := validatePolicy(p); err != nil {
		return false, err
	}
	return a.enforcer.RemovePolicy(string(p.Subject), string(p.Object), string(p.Action), string(p.Effect))
}
