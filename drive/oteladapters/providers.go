package oteladapters

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/hyperdrive-promise-go/drive/observable"
)

// ErrMissingServiceName is returned by NewProviders when the config has no service name.
var ErrMissingServiceName = errors.New("service name must not be empty")

const (
	// DefaultCollectorEndpoint is the OTLP gRPC endpoint used when none is configured.
	DefaultCollectorEndpoint = "localhost:4317"

	// DefaultMetricInterval is the export interval used when none is configured.
	DefaultMetricInterval = 5 * time.Second
)

// ProviderConfig selects where the telemetry of instrumented drives is exported to.
type ProviderConfig struct {
	ServiceName    string
	ServiceVersion string

	// TraceEndpoint and MetricEndpoint default to DefaultCollectorEndpoint.
	TraceEndpoint  string
	MetricEndpoint string
	MetricInterval time.Duration

	// Insecure disables TLS towards the collector.
	Insecure bool
}

// Providers holds the OpenTelemetry providers exporting over OTLP gRPC.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Resource       *resource.Resource

	serviceName string
}

// NewProviders creates tracer and meter providers that export to an OTLP collector.
// The exporters connect lazily, so an unreachable collector is only noticed on export.
func NewProviders(ctx context.Context, cfg ProviderConfig) (*Providers, error) {
	if cfg.ServiceName == "" {
		return nil, ErrMissingServiceName
	}

	cfg = withDefaults(cfg)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceOptions := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.TraceEndpoint)}
	metricOptions := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.MetricEndpoint)}
	if cfg.Insecure {
		traceOptions = append(traceOptions, otlptracegrpc.WithInsecure())
		metricOptions = append(metricOptions, otlpmetricgrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOptions...)
	if err != nil {
		return nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions...)
	if err != nil {
		return nil, errors.Join(err, traceExporter.Shutdown(ctx))
	}

	return &Providers{
		TracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		),
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.MetricInterval))),
			sdkmetric.WithResource(res),
		),
		Resource:    res,
		serviceName: cfg.ServiceName,
	}, nil
}

func withDefaults(cfg ProviderConfig) ProviderConfig {
	if cfg.TraceEndpoint == "" {
		cfg.TraceEndpoint = DefaultCollectorEndpoint
	}

	if cfg.MetricEndpoint == "" {
		cfg.MetricEndpoint = DefaultCollectorEndpoint
	}

	if cfg.MetricInterval <= 0 {
		cfg.MetricInterval = DefaultMetricInterval
	}

	return cfg
}

// SetGlobal installs the providers and the W3C trace context propagator as the OpenTelemetry globals.
func (p *Providers) SetGlobal() {
	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
}

// DriveOptions returns the observable options that export through these providers.
// Logs go through the slog bridge and thus the global LoggerProvider.
func (p *Providers) DriveOptions() []observable.Option {
	return []observable.Option{
		observable.WithTracing(NewTracingCollector(p.TracerProvider.Tracer(p.serviceName))),
		observable.WithMetrics(NewMetricsCollector(p.MeterProvider.Meter(p.serviceName))),
		observable.WithContextualLogger(NewSlogBridgeLogger(p.serviceName)),
	}
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}
