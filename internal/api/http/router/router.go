package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/mediconnect/mediconnect_backend/config"
	"github.com/mediconnect/mediconnect_backend/internal/api/http/handler"
	"github.com/mediconnect/mediconnect_backend/internal/api/http/middleware"
	"github.com/mediconnect/mediconnect_backend/internal/service/appointment"
	"github.com/mediconnect/mediconnect_backend/internal/service/directory"
	"github.com/mediconnect/mediconnect_backend/internal/service/report"
	"github.com/mediconnect/mediconnect_backend/internal/service/scheduling"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/token"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg            *config.Config
	Auth           authorize.IAuthorization
	Tokens         *token.Manager
	SchedulingSvc  scheduling.Service
	AppointmentSvc appointment.Service
	DirectorySvc   directory.Service
	ReportSvc      report.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Middlewares
	authRequired := middleware.AuthRequired(r.p.Tokens, r.p.Auth)

	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Handlers
	sessionH := handler.NewSessionHandler(r.p.Tokens)
	scheduleH := handler.NewScheduleHandler(r.p.SchedulingSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	profileH := handler.NewProfileHandler(r.p.DirectorySvc)
	reportH := handler.NewReportHandler(r.p.ReportSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, sessionH, authRequired)
	r.registerScheduleRoutes(api, scheduleH, authRequired, requirePerm)
	r.registerAppointmentRoutes(api, appointmentH, authRequired, requirePerm)
	r.registerProfileRoutes(api, profileH, authRequired, requirePerm)
	r.registerReportRoutes(api, reportH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return authorize.IsPolicyHealthy() },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
