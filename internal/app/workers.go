package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/mediconnect/mediconnect_backend/config"
	"github.com/mediconnect/mediconnect_backend/internal/service/notification"
)

// WorkerModule registers the NATS notification worker.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc         fx.Lifecycle
	Cfg        *config.Config
	NC         *nats.Conn `optional:"true"`
	Dispatcher *notification.Dispatcher
}

// RegisterWorkers subscribes the notification worker when notices travel
// over NATS. Each instance joins the same queue group, so every notice is
// delivered once.
func RegisterWorkers(p WorkerParams) {
	if p.Cfg.Notifications.Transport != notification.TransportNATS || p.NC == nil {
		p.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return p.Dispatcher.Wait(ctx)
			},
		})
		return
	}

	p.Lc.Append(workerHook(p.NC, p.Cfg.Nats.Subject, p.Dispatcher))
}

func workerHook(nc notification.QueueSubscriber, subject string, d *notification.Dispatcher) fx.Hook {
	var sub *nats.Subscription
	return fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = notification.Subscribe(nc, subject, d)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if sub != nil {
				if err := sub.Drain(); err != nil {
					slog.Warn("notification_worker: drain failed", "error", err)
				}
			}
			return d.Wait(ctx)
		},
	}
}
