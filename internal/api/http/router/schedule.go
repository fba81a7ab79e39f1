package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/internal/api/http/handler"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func (r *Router) registerScheduleRoutes(
	api fiber.Router,
	sh *handler.ScheduleHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	schedules := api.Group("/schedules", authRequired)

	schedules.Post("/", requirePerm(authorize.ResourceSchedule, authorize.ActionCreate), sh.Create)
	schedules.Get("/", requirePerm(authorize.ResourceSchedule, authorize.ActionList), sh.List)

	s := schedules.Group("/:id")
	s.Get("/", requirePerm(authorize.ResourceSchedule, authorize.ActionRead), sh.Get)
	s.Patch("/active", requirePerm(authorize.ResourceSchedule, authorize.ActionUpdate), sh.SetActive)
	s.Delete("/", requirePerm(authorize.ResourceSchedule, authorize.ActionDelete), sh.Delete)

	api.Get("/blocks/open", authRequired, requirePerm(authorize.ResourceBlock, authorize.ActionList), sh.ListOpenBlocks)
}
