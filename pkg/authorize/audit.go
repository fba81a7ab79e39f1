package authorize

import (
	"context"
	"log/slog"
	"time"

	casbin "github.com/casbin/casbin/v2"
	"github.com/google/uuid"
)

// AuditedAuthorization wraps an IAuthorization implementation with audit logging.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{
		inner:  inner,
		logger: logger,
	}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, userID uuid.UUID, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, userID, object, action)
	duration := time.Since(start)

	attrs := []any{
		"subject", userID.String(),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		a.logger.ErrorContext(ctx, "authz_decision", attrs...)
	} else if allowed {
		a.logger.DebugContext(ctx, "authz_decision", attrs...)
	} else {
		a.logger.WarnContext(ctx, "authz_decision", attrs...)
	}

	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, userID uuid.UUID, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, userID, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) AddRoleForUser(ctx context.Context, userID uuid.UUID, role Role) (bool, error) {
	added, err := a.inner.AddRoleForUser(ctx, userID, role)
	a.logChange(ctx, "authz_role_change", err,
		"operation", "add_role", "subject", userID.String(), "role", string(role), "changed", added)
	return added, err
}

func (a *AuditedAuthorization) RemoveRoleForUser(ctx context.Context, userID uuid.UUID, role Role) (bool, error) {
	removed, err := a.inner.RemoveRoleForUser(ctx, userID, role)
	a.logChange(ctx, "authz_role_change", err,
		"operation", "remove_role", "subject", userID.String(), "role", string(role), "changed", removed)
	return removed, err
}

func (a *AuditedAuthorization) RolesForUser(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	return a.inner.RolesForUser(ctx, userID)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	added, err := a.inner.AddPermission(ctx, p)
	a.logChange(ctx, "authz_permission_change", err, policyAttrs("add_permission", p, added)...)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, p)
	a.logChange(ctx, "authz_permission_change", err, policyAttrs("remove_permission", p, removed)...)
	return removed, err
}

func (a *AuditedAuthorization) Raw() *casbin.DistributedEnforcer {
	return a.inner.Raw()
}

func (a *AuditedAuthorization) logChange(ctx context.Context, msg string, err error, attrs ...any) {
	if err != nil {
		attrs = append(attrs, "error", err.Error())
		a.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	a.logger.InfoContext(ctx, msg, attrs...)
}

func policyAttrs(op string, p PermissionPolicy, changed bool) []any {
	return []any{
		"operation", op,
		"role", string(p.Subject),
		"resource", string(p.Object),
		"action", string(p.Action),
		"effect", string(p.Effect),
		"changed", changed,
	}
}
