package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Release outcomes reported by RecordRelease.
const (
	ReleaseOutcomeReleased       = "released"
	ReleaseOutcomeNotFound       = "not_found"
	ReleaseOutcomeForbidden      = "forbidden"
	ReleaseOutcomeRateLimited    = "rate_limited"
	ReleaseOutcomeIntegrityError = "integrity_error"
	ReleaseOutcomeError          = "error"
)

// UnknownService labels release attempts that never resolved to a stored record, so caller-chosen
// service names cannot create new series.
const UnknownService = "unknown"

// BusinessMetrics records vault and admin operations.
type BusinessMetrics interface {
	// RecordOperation counts an operation. domain is "vault" or "auth", operation names the use
	// case method (e.g. "key_rotate", "admin_init") and status is "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordRelease counts one credential release attempt for a service by its outcome.
	RecordRelease(ctx context.Context, serviceName, outcome string)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	releaseCounter   metric.Int64Counter
}

// NewBusinessMetrics creates a BusinessMetrics backed by the given meter provider. Metric names are
// prefixed with namespace (e.g. "keyvault_key_releases_total").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of vault and admin operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of vault and admin operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	releaseCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_key_releases_total", namespace),
		metric.WithDescription("Credential release attempts by service and outcome"),
		metric.WithUnit("{release}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create release counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		releaseCounter:   releaseCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordRelease(ctx context.Context, serviceName, outcome string) {
	b.releaseCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service_name", serviceName),
			attribute.String("outcome", outcome),
		),
	)
}

// NoOpBusinessMetrics discards everything. Used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordRelease(ctx context.Context, serviceName, outcome string) {}
