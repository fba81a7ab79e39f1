package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/token"
)

// Enforcer answers permission checks for a user.
type Enforcer interface {
	MustEnforce(ctx context.Context, userID uuid.UUID, object authorize.Resource, action authorize.Action) error
}

// RequirePermission checks that the authenticated user's roles grant action
// on resource. A "manage" grant covers every action.
func RequirePermission(auth Enforcer, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := token.ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		if err := auth.MustEnforce(c.Context(), claims.GetUserID(), resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
