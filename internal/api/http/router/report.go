package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/internal/api/http/handler"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func (r *Router) registerReportRoutes(
	api fiber.Router,
	rh *handler.ReportHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	reports := api.Group("/reports", authRequired, requirePerm(authorize.ResourceReport, authorize.ActionRead))

	reports.Get("/appointments.csv", rh.AppointmentsCSV)
	reports.Get("/attended.csv", rh.AttendedCSV)
	reports.Get("/utilization", rh.Utilization)
}
