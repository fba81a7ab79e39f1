package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/reqctx"
	"github.com/mediconnect/mediconnect_backend/pkg/token"
)

const LocalsActor = "actor"

// Verifier checks an access token.
type Verifier interface {
	Verify(ctx context.Context, tokenStr string) (*token.Claims, error)
}

// AuthRequired validates a Bearer JWT access token, resolves the caller's
// roles and stores both claims and actor in Locals and the request context.
func AuthRequired(tokens Verifier, roles authorize.RoleProvider) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw, ok := token.BearerToken(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims, err := tokens.Verify(c.Context(), raw)
		if err != nil {
			var invalid token.ErrInvalidToken
			if errors.As(err, &invalid) {
				return fiber.ErrUnauthorized
			}
			return err
		}

		actor, err := authorize.ResolveActor(c.Context(), roles, claims.GetUserID())
		if err != nil {
			slog.ErrorContext(c.Context(), "resolve roles failed", "user_id", claims.GetUserID(), "error", err)
			return err
		}

		c.Locals(token.CtxKeyClaims, claims)
		c.Locals(LocalsActor, actor)

		ctx := reqctx.WithClaims(c.Context(), claims)
		ctx = reqctx.WithActor(ctx, actor)
		c.SetContext(ctx)

		return c.Next()
	}
}

// ActorFromFiber returns the caller resolved by AuthRequired.
func ActorFromFiber(c fiber.Ctx) (authorize.Actor, bool) {
	a, ok := c.Locals(LocalsActor).(authorize.Actor)
	return a, ok
}
