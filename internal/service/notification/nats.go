package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// QueueGroup spreads notices across worker replicas so each is delivered once.
const QueueGroup = "mediconnect-notifier"

type publisher interface {
	Publish(subject string, data []byte) error
}

// QueueSubscriber is the part of *nats.Conn the worker uses.
type QueueSubscriber interface {
	QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Publisher hands notices to NATS under <subject>.<kind> for the worker.
type Publisher struct {
	conn    publisher
	subject string
}

func NewPublisher(nc *nats.Conn, subject string) *Publisher {
	return &Publisher{conn: nc, subject: subject}
}

func (p *Publisher) Notifier() Notifier { return Func(p.Send) }

func (p *Publisher) Send(ctx context.Context, n Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		slog.ErrorContext(ctx, "encode notice", "err", err)
		return
	}
	subj := p.subject + "." + string(n.Kind)
	if err := p.conn.Publish(subj, data); err != nil {
		slog.WarnContext(ctx, "publish notice failed", "subject", subj, "appointment_id", n.AppointmentID, "err", err)
	}
}

// Subscribe starts the worker side: every notice published under subject is
// delivered through d.
func Subscribe(nc QueueSubscriber, subject string, d *Dispatcher) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(subject+".*", QueueGroup, func(msg *nats.Msg) {
		handleMessage(context.Background(), msg.Data, d)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	slog.Info("notification_worker: started", "subject", subject+".*", "queue", QueueGroup)
	return sub, nil
}

func handleMessage(ctx context.Context, data []byte, d *Dispatcher) {
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		slog.Warn("notification_worker: bad payload", "err", err)
		return
	}
	if err := d.Deliver(ctx, n); err != nil {
		slog.Warn("notification_worker: delivery failed",
			"kind", n.Kind,
			"appointment_id", n.AppointmentID,
			"err", err,
		)
	}
}
