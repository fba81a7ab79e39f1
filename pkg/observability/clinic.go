package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ClinicMetrics records appointment lifecycle events. It reads the global
// meter provider, so it is a no-op until InitTelemetry runs.
type ClinicMetrics struct {
	transitions metric.Int64Counter
	rejections  metric.Int64Counter
	blocks      metric.Int64Counter
}

func NewClinicMetrics() *ClinicMetrics {
	meter := otel.Meter(tracerName)

	transitions, _ := meter.Int64Counter(
		"appointment_transitions_total",
		metric.WithDescription("Appointment status changes by target status"),
	)
	rejections, _ := meter.Int64Counter(
		"appointment_rejections_total",
		metric.WithDescription("Appointment operations refused by validation or state"),
	)
	blocks, _ := meter.Int64Counter(
		"schedule_blocks_created_total",
		metric.WithDescription("Time blocks created with new schedules"),
	)

	return &ClinicMetrics{transitions: transitions, rejections: rejections, blocks: blocks}
}

func (m *ClinicMetrics) Transition(ctx context.Context, from, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *ClinicMetrics) Rejected(ctx context.Context, op, kind string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("kind", kind),
	))
}

func (m *ClinicMetrics) BlocksCreated(ctx context.Context, n int) {
	m.blocks.Add(ctx, int64(n))
}
