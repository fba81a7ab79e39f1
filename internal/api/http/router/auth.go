package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/internal/api/http/handler"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.SessionHandler, authRequired fiber.Handler) {
	group := api.Group("/auth")
	group.Post("/logout", authRequired, h.Logout)
}

func (r *Router) registerProfileRoutes(
	api fiber.Router,
	ph *handler.ProfileHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	me := api.Group("/me", authRequired)
	me.Get("/patient", requirePerm(authorize.ResourceProfile, authorize.ActionRead), ph.GetPatient)
	me.Patch("/patient", requirePerm(authorize.ResourceProfile, authorize.ActionUpdate), ph.UpdatePatient)
}
