package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/pkg/token"
)

// Revoker closes the session behind an access token.
type Revoker interface {
	Revoke(ctx context.Context, claims *token.Claims) error
}

type SessionHandler struct {
	tokens Revoker
}

func NewSessionHandler(tokens Revoker) *SessionHandler {
	return &SessionHandler{tokens: tokens}
}

// POST /auth/logout
func (h *SessionHandler) Logout(c fiber.Ctx) error {
	claims, valid := token.ClaimsFromFiber(c)
	if !valid {
		return unauthorized(c)
	}

	if err := h.tokens.Revoke(c.Context(), claims); err != nil {
		slog.ErrorContext(c.Context(), "revoke session failed", "user_id", claims.GetUserID(), "error", err)
		return internalError(c)
	}

	return noContent(c)
}
