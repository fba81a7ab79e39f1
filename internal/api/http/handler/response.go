package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/pkg/apperr"
)

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
}

func forbidden(c fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func unprocessable(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": msg})
}

// fail maps a service error to its HTTP status by kind. Errors without a
// kind are logged and reported as 500 without detail.
func fail(c fiber.Ctx, err error) error {
	switch apperr.KindOf(err) {
	case apperr.ErrNotFound:
		return notFound(c, err.Error())
	case apperr.ErrValidation:
		return unprocessable(c, err.Error())
	case apperr.ErrConflict, apperr.ErrStateConflict:
		return conflict(c, err.Error())
	case apperr.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.ErrorContext(c.Context(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		return internalError(c)
	}
}
