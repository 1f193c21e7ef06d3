// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics records named business events as OpenTelemetry counters.
package metrics

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"codeberg.org/oliverandrich/teamjoin/internal/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// SignupEvent is recorded once per created user.
const SignupEvent = "user.signup"

const exportInterval = 10 * time.Second

// Recorder counts named events.
type Recorder interface {
	Record(ctx context.Context, name string)
}

// Provider owns the meter provider and its shutdown.
type Provider struct {
	metric.MeterProvider
	shutdown func(context.Context) error
}

// Shutdown flushes pending measurements. It is a no-op for disabled metrics.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// NewProvider returns an OTLP/HTTP backed provider when metrics are enabled
// and a noop provider otherwise.
func NewProvider(ctx context.Context, cfg config.MetricsConfig) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{MeterProvider: noop.NewMeterProvider()}, nil
	}

	var opts []otlpmetrichttp.Option
	switch {
	case strings.HasPrefix(cfg.Endpoint, "http://"), strings.HasPrefix(cfg.Endpoint, "https://"):
		opts = append(opts, otlpmetrichttp.WithEndpointURL(cfg.Endpoint))
	case cfg.Endpoint != "":
		opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint), otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName(cfg.ServiceName)))
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)

	slog.Info("metrics initialized", "endpoint", cfg.Endpoint)
	return &Provider{MeterProvider: provider, shutdown: provider.Shutdown}, nil
}

func serviceName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "teamjoin"
	}
	return name
}

// OTelRecorder maps each event name to an Int64Counter created on first use.
type OTelRecorder struct {
	meter    metric.Meter
	counters sync.Map // name -> metric.Int64Counter
}

// NewRecorder creates a recorder using a meter from provider.
func NewRecorder(provider metric.MeterProvider, name string) *OTelRecorder {
	return &OTelRecorder{meter: provider.Meter(serviceName(name))}
}

// Record increments the counter for name by one.
func (r *OTelRecorder) Record(ctx context.Context, name string) {
	counter, err := r.counter(name)
	if err != nil {
		slog.WarnContext(ctx, "metric_counter_failed", "name", name, "error", err)
		return
	}
	counter.Add(ctx, 1)
}

func (r *OTelRecorder) counter(name string) (metric.Int64Counter, error) {
	if c, ok := r.counters.Load(name); ok {
		return c.(metric.Int64Counter), nil
	}
	c, err := r.meter.Int64Counter(name)
	if err != nil {
		return nil, err
	}
	actual, _ := r.counters.LoadOrStore(name, c)
	return actual.(metric.Int64Counter), nil
}

// Noop discards all events.
type Noop struct{}

// Record implements Recorder.
func (Noop) Record(context.Context, string) {}
