package notification

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mediconnect/mediconnect_backend/config"
)

const (
	TransportDirect = "direct"
	TransportNATS   = "nats"
)

// Timeout reads the per-channel delivery timeout.
func Timeout(cfg config.NotificationsConfig) time.Duration {
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// Select returns the notifier the request path uses: a NATS publisher when
// the nats transport is configured and connected, otherwise d directly.
func Select(cfg *config.Config, d *Dispatcher, nc *nats.Conn) Notifier {
	if cfg.Notifications.Transport == TransportNATS && nc != nil {
		return NewPublisher(nc, cfg.Nats.Subject).Notifier()
	}
	return d.Notifier()
}
