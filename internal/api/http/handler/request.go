package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/api/http/middleware"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

const dateLayout = "2006-01-02"

func actorFrom(c fiber.Ctx) (authorize.Actor, bool) {
	return middleware.ActorFromFiber(c)
}

func idParam(c fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// optionalUUID parses s when set. ok is false only for a malformed value.
func optionalUUID(s string) (id *uuid.UUID, ok bool) {
	if s == "" {
		return nil, true
	}
	v, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// optionalDate parses a YYYY-MM-DD calendar date when set.
func optionalDate(s string) (d *time.Time, ok bool) {
	if s == "" {
		return nil, true
	}
	v, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, false
	}
	return &v, true
}
