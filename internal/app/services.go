package app

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/mediconnect/mediconnect_backend/config"
	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/appointment"
	"github.com/mediconnect/mediconnect_backend/internal/service/directory"
	"github.com/mediconnect/mediconnect_backend/internal/service/notification"
	"github.com/mediconnect/mediconnect_backend/internal/service/report"
	"github.com/mediconnect/mediconnect_backend/internal/service/scheduling"
	"github.com/mediconnect/mediconnect_backend/pkg/email"
	"github.com/mediconnect/mediconnect_backend/pkg/observability"
	redispkg "github.com/mediconnect/mediconnect_backend/pkg/redis"
	"github.com/mediconnect/mediconnect_backend/pkg/sms"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		observability.NewClinicMetrics,
		ProvideDispatcher,
		ProvideNotifier,
		ProvideSchedulingService,
		ProvideAppointmentService,
		ProvideDirectoryService,
		ProvideReportService,
	),
)

func ProvideDispatcher(cfg *config.Config, mail *email.Client, smsCli *sms.Client) *notification.Dispatcher {
	return notification.NewDispatcher(
		notification.Timeout(cfg.Notifications),
		notification.NewEmailChannel(mail),
		notification.NewSMSChannel(smsCli),
	)
}

func ProvideNotifier(cfg *config.Config, d *notification.Dispatcher, nc *nats.Conn) notification.Notifier {
	return notification.Select(cfg, d, nc)
}

func ProvideSchedulingService(store repo.Store, cfg *config.Config, metrics *observability.ClinicMetrics) (scheduling.Service, error) {
	rules, err := scheduling.RulesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return scheduling.New(store, rules, metrics), nil
}

func ProvideAppointmentService(
	store repo.Store,
	cfg *config.Config,
	rdb *redis.Client,
	notifier notification.Notifier,
	metrics *observability.ClinicMetrics,
) (appointment.Service, error) {
	policy, err := appointment.PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	cache := appointment.NewRedisReasonCache(
		redispkg.NewJSONCache(rdb, appointment.ReasonCachePrefix),
		time.Duration(cfg.Clinic.ReasonCacheSeconds)*time.Second,
	)
	return appointment.New(store, policy, notifier,
		appointment.WithReasonCache(cache),
		appointment.WithMetrics(metrics),
	), nil
}

func ProvideDirectoryService(store repo.Store, cfg *config.Config) directory.Service {
	return directory.New(store, cfg.SMS.DefaultRegion)
}

func ProvideReportService(store repo.Store, cfg *config.Config) (report.Service, error) {
	loc, err := cfg.Clinic.Location()
	if err != nil {
		return nil, err
	}
	return report.New(store, loc), nil
}
