package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// KeyCountFunc reports the number of stored keys and how many of them are active.
type KeyCountFunc func(ctx context.Context) (total, active int, err error)

// RegisterKeyGauges exports the registry size as "<namespace>_keys" with a state label of "total"
// or "active". The counts are read at scrape time; a failing read skips that scrape.
func RegisterKeyGauges(meterProvider metric.MeterProvider, namespace string, count KeyCountFunc) error {
	meter := meterProvider.Meter(namespace)

	gauge, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_keys", namespace),
		metric.WithDescription("Number of API keys held by the vault"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create key gauge: %w", err)
	}

	totalAttrs := metric.WithAttributes(attribute.String("state", "total"))
	activeAttrs := metric.WithAttributes(attribute.String("state", "active"))

	_, err = meter.RegisterCallback(func(ctx context.Context, observer metric.Observer) error {
		total, active, err := count(ctx)
		if err != nil {
			return err
		}
		observer.ObserveInt64(gauge, int64(total), totalAttrs)
		observer.ObserveInt64(gauge, int64(active), activeAttrs)
		return nil
	}, gauge)
	if err != nil {
		return fmt.Errorf("failed to register key gauge callback: %w", err)
	}

	return nil
}
