// internal/common/observability/metrics.go
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter provider. Instruments are
// exported through the default prometheus registry, so they appear on the
// same /metrics endpoint as the promauto collectors.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	sweepCounter  otelmetric.Int64Counter
	sweepDuration otelmetric.Float64Histogram
	expiredDeals  otelmetric.Int64Counter
	searchCounter otelmetric.Int64Counter
}

// New registers the exporter and instruments. A nil-safe Observability is
// returned alongside any error so callers can keep running without OTel.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	sweepCounter, _ := meter.Int64Counter(
		"reconciler.sweeps",
		otelmetric.WithDescription("Number of expiration sweeps"),
	)
	sweepDuration, _ := meter.Float64Histogram(
		"reconciler.sweep.duration",
		otelmetric.WithDescription("Expiration sweep duration"),
		otelmetric.WithUnit("ms"),
	)
	expiredDeals, _ := meter.Int64Counter(
		"reconciler.deals.expired",
		otelmetric.WithDescription("Deals deactivated by sweeps"),
	)
	searchCounter, _ := meter.Int64Counter(
		"proximity.searches",
		otelmetric.WithDescription("Nearby vendor searches"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		sweepCounter:  sweepCounter,
		sweepDuration: sweepDuration,
		expiredDeals:  expiredDeals,
		searchCounter: searchCounter,
	}, nil
}

// RecordSweep records one reconciler run.
func (o *Observability) RecordSweep(ctx context.Context, status string, expired int64, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.sweepCounter != nil {
		o.sweepCounter.Add(ctx, 1, attrs)
	}
	if o.sweepDuration != nil {
		o.sweepDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.expiredDeals != nil && expired > 0 {
		o.expiredDeals.Add(ctx, expired)
	}
}

// RecordSearch records one nearby search by backend and outcome.
func (o *Observability) RecordSearch(ctx context.Context, backend, status string) {
	if o == nil || o.searchCounter == nil {
		return
	}
	o.searchCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
