package authorize

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// DefaultPolicies is the baseline clinic RBAC. Ownership checks (a patient only
// sees their own appointments, a professional only their own agenda) happen in
// the services, on top of these rules.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		// Admin: everything
		{RoleAdmin, WildcardResource, WildcardAction, EffectAllow},

		// Receptionist: runs the front desk
		{RoleReceptionist, ResourceSchedule, ActionManage, EffectAllow},
		{RoleReceptionist, ResourceBlock, ActionList, EffectAllow},
		{RoleReceptionist, ResourceAppointment, ActionManage, EffectAllow},
		{RoleReceptionist, ResourceCancellationReason, ActionList, EffectAllow},
		{RoleReceptionist, ResourceReport, ActionRead, EffectAllow},
		{RoleReceptionist, ResourceProfile, ActionRead, EffectAllow},

		// Professional: own agenda and own appointments
		{RoleProfessional, ResourceSchedule, ActionManage, EffectAllow},
		{RoleProfessional, ResourceBlock, ActionList, EffectAllow},
		{RoleProfessional, ResourceAppointment, ActionManage, EffectAllow},
		{RoleProfessional, ResourceCancellationReason, ActionList, EffectAllow},
		{RoleProfessional, ResourceProfile, ActionRead, EffectAllow},

		// Patient: self service
		{RolePatient, ResourceBlock, ActionList, EffectAllow},
		{RolePatient, ResourceAppointment, ActionCreate, EffectAllow},
		{RolePatient, ResourceAppointment, ActionRead, EffectAllow},
		{RolePatient, ResourceAppointment, ActionList, EffectAllow},
		{RolePatient, ResourceAppointment, ActionCancel, EffectAllow},
		{RolePatient, ResourceCancellationReason, ActionList, EffectAllow},
		{RolePatient, ResourceProfile, ActionRead, EffectAllow},
		{RolePatient, ResourceProfile, ActionUpdate, EffectAllow},
	}
}

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}

// AssignRole grants role to the user. Admin must be granted from the CLI.
func AssignRole(ctx context.Context, auth IAuthorization, userID uuid.UUID, role Role) error {
	if _, ok := KnownRoles[role]; !ok {
		return ErrInvalidArgs
	}
	_, err := auth.AddRoleForUser(ctx, userID, role)
	return err
}

// RevokeRole removes role from the user.
func RevokeRole(ctx context.Context, auth IAuthorization, userID uuid.UUID, role Role) error {
	_, err := auth.RemoveRoleForUser(ctx, userID, role)
	return err
}
