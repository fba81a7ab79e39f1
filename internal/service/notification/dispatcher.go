package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// Dispatcher fans a notice out to every channel, each in its own goroutine
// bounded by a timeout.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{channels: channels, timeout: timeout}
}

// Notifier returns the asynchronous face of the dispatcher.
func (d *Dispatcher) Notifier() Notifier { return Func(d.Send) }

// Send delivers in the background and returns immediately. The request
// context's cancellation does not abort delivery.
func (d *Dispatcher) Send(ctx context.Context, n Notice) {
	base := context.WithoutCancel(ctx)
	for _, ch := range d.channels {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.deliverOne(base, ch, n); err != nil {
				slog.WarnContext(base, "notification delivery failed",
					"channel", ch.Name(),
					"kind", n.Kind,
					"appointment_id", n.AppointmentID,
					"err", err,
				)
			}
		}()
	}
}

// Deliver sends on every channel and waits, joining the failures.
func (d *Dispatcher) Deliver(ctx context.Context, n Notice) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
	}
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for _, ch := range d.channels {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.deliverOne(ctx, ch, n); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (d *Dispatcher) deliverOne(ctx context.Context, ch Channel, n Notice) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return ch.Deliver(ctx, n)
}

// Wait blocks until background deliveries finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
