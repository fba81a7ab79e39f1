package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/internal/api/http/handler"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts := api.Group("/appointments", authRequired)

	appts.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.List)
	appts.Post("/", requirePerm(authorize.ResourceAppointment, authorize.ActionCreate), ah.Book)

	a := appts.Group("/:id")
	a.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionRead), ah.Get)
	a.Patch("/cancel", requirePerm(authorize.ResourceAppointment, authorize.ActionCancel), ah.Cancel)
	a.Patch("/reschedule", requirePerm(authorize.ResourceAppointment, authorize.ActionCancel), ah.Reschedule)

	manage := requirePerm(authorize.ResourceAppointment, authorize.ActionManage)
	a.Patch("/confirm", manage, ah.Confirm)
	a.Patch("/start", manage, ah.Start)
	a.Patch("/attend", manage, ah.Attend)
	a.Patch("/no-show", manage, ah.NoShow)

	api.Get("/cancellation-reasons", authRequired,
		requirePerm(authorize.ResourceCancellationReason, authorize.ActionList), ah.ListReasons)
}
