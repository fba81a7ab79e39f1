package authorize

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// RoleProvider resolves the roles held by a user.
type RoleProvider interface {
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error)
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Roles  []Role
}

func (a Actor) Has(r Role) bool {
	return slices.Contains(a.Roles, r)
}

func (a Actor) IsAdmin() bool { return a.Has(RoleAdmin) }

// IsStaff reports whether the actor holds any staff role.
func (a Actor) IsStaff() bool {
	return slices.ContainsFunc(a.Roles, Role.IsStaff)
}

// IsOnlyProfessional reports whether the actor is a professional without a
// broader staff role, and so is confined to their own agenda.
func (a Actor) IsOnlyProfessional() bool {
	return a.Has(RoleProfessional) && !a.IsAdmin() && !a.Has(RoleReceptionist)
}

// ResolveActor loads the roles of userID.
func ResolveActor(ctx context.Context, rp RoleProvider, userID uuid.UUID) (Actor, error) {
	roles, err := rp.RolesForUser(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: userID, Roles: roles}, nil
}
