package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TransitionMetrics holds the instruments for the order status transition
// engine: one counter per decision branch, the end-to-end latency, and a
// dedicated counter for audit-trail write failures (the transition itself
// succeeds in that case, so it would otherwise be invisible).
type TransitionMetrics struct {
	transitions   metric.Int64Counter
	duration      metric.Float64Histogram
	auditFailures metric.Int64Counter
}

func NewTransitionMetrics() (*TransitionMetrics, error) {
	meter := otel.Meter("orders/transition")

	transitions, err := meter.Int64Counter("orders.transitions",
		metric.WithDescription("Order status transition attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("orders.transition.duration",
		metric.WithDescription("Order status transition latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	auditFailures, err := meter.Int64Counter("orders.audit_failures",
		metric.WithDescription("Transition audit events that failed to persist"),
	)
	if err != nil {
		return nil, err
	}

	return &TransitionMetrics{
		transitions:   transitions,
		duration:      duration,
		auditFailures: auditFailures,
	}, nil
}

func (m *TransitionMetrics) RecordTransition(ctx context.Context, outcome, from, to string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("from", from),
		attribute.String("to", to),
	)
	m.transitions.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

func (m *TransitionMetrics) RecordAuditFailure(ctx context.Context) {
	m.auditFailures.Add(ctx, 1)
}
