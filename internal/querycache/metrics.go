package querycache

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics collects cache behaviour counters. A nil *Metrics is a valid no-op
// collector so the cache never needs nil checks at call sites beyond the
// receiver guard.
type Metrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	staleServes   metric.Int64Counter
	dedups        metric.Int64Counter
	invalidations metric.Int64Counter
	optimistic    metric.Int64Counter
	fetchLatency  metric.Float64Histogram
	fetchErrors   metric.Int64Counter
}

// NewMetrics registers cache metrics on the provided meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.hits, err = meter.Int64Counter(
		"zenlink.cache.hits.total",
		metric.WithDescription("Reads served from a fresh cache entry"),
		metric.WithUnit("{read}"),
	); err != nil {
		return nil, fmt.Errorf("create hits counter: %w", err)
	}
	if m.misses, err = meter.Int64Counter(
		"zenlink.cache.misses.total",
		metric.WithDescription("Reads that required a synchronous fetch"),
		metric.WithUnit("{read}"),
	); err != nil {
		return nil, fmt.Errorf("create misses counter: %w", err)
	}
	if m.staleServes, err = meter.Int64Counter(
		"zenlink.cache.stale_serves.total",
		metric.WithDescription("Reads served stale while revalidating"),
		metric.WithUnit("{read}"),
	); err != nil {
		return nil, fmt.Errorf("create stale serves counter: %w", err)
	}
	if m.dedups, err = meter.Int64Counter(
		"zenlink.cache.dedups.total",
		metric.WithDescription("Fetches shared between concurrent readers"),
		metric.WithUnit("{fetch}"),
	); err != nil {
		return nil, fmt.Errorf("create dedups counter: %w", err)
	}
	if m.invalidations, err = meter.Int64Counter(
		"zenlink.cache.invalidations.total",
		metric.WithDescription("Explicit invalidations after writes"),
		metric.WithUnit("{key}"),
	); err != nil {
		return nil, fmt.Errorf("create invalidations counter: %w", err)
	}
	if m.optimistic, err = meter.Int64Counter(
		"zenlink.cache.optimistic_sets.total",
		metric.WithDescription("Optimistic entry overwrites before confirmation"),
		metric.WithUnit("{key}"),
	); err != nil {
		return nil, fmt.Errorf("create optimistic counter: %w", err)
	}
	if m.fetchLatency, err = meter.Float64Histogram(
		"zenlink.cache.fetch.duration",
		metric.WithDescription("Remote fetch latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("create fetch latency histogram: %w", err)
	}
	if m.fetchErrors, err = meter.Int64Counter(
		"zenlink.cache.fetch.errors.total",
		metric.WithDescription("Remote fetches that settled with an error"),
		metric.WithUnit("{fetch}"),
	); err != nil {
		return nil, fmt.Errorf("create fetch errors counter: %w", err)
	}

	return m, nil
}

// NewPrometheusMetrics wires the otel meter provider to a prometheus
// exporter and returns cache metrics registered on it. The default
// prometheus registry then serves them via promhttp.
func NewPrometheusMetrics() (*Metrics, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	return NewMetrics(provider.Meter("zenlink"))
}

func keyAttr(key string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("key", key))
}

func (m *Metrics) RecordHit(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.hits.Add(ctx, 1, keyAttr(key))
}

func (m *Metrics) RecordMiss(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.misses.Add(ctx, 1, keyAttr(key))
}

func (m *Metrics) RecordStaleServe(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.staleServes.Add(ctx, 1, keyAttr(key))
}

func (m *Metrics) RecordDedup(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.dedups.Add(ctx, 1, keyAttr(key))
}

func (m *Metrics) RecordInvalidation(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.invalidations.Add(ctx, 1, keyAttr(key))
}

func (m *Metrics) RecordOptimisticSet(ctx context.Context, key string) {
	if m == nil {
		return
	}
	m.optimistic.Add(ctx, 1, keyAttr(key))
}

func (m *Metrics) RecordFetch(ctx context.Context, key string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchLatency.Record(ctx, elapsed.Seconds(), keyAttr(key))
	if err != nil {
		m.fetchErrors.Add(ctx, 1, keyAttr(key))
	}
}
