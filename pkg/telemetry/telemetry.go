// Package telemetry sets up OpenTelemetry tracing over OTLP/gRPC.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/depgate/depgate/pkg/defaults"
)

// Options configures the exporter.
type Options struct {
	// Endpoint is the collector address (default: localhost:4317).
	Endpoint string

	// ServiceName is reported as service.name (default: depgate).
	ServiceName string

	// Insecure disables TLS to the collector.
	Insecure bool

	// Headers are sent with every export request.
	Headers map[string]string

	ConnectTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Global also installs the provider as the otel global.
	Global bool
}

func (o *Options) applyDefaults() {
	if o.Endpoint == "" {
		o.Endpoint = defaults.OTelEndpoint
	}
	if o.ServiceName == "" {
		o.ServiceName = defaults.ToolName
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = defaults.OTelConnectTimeout
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = defaults.OTelShutdownTimeout
	}
}

// Provider owns a tracer provider and its exporter.
type Provider struct {
	tp              *sdktrace.TracerProvider
	tracer          trace.Tracer
	shutdownTimeout time.Duration
}

// Setup creates an OTLP/gRPC exporter and a batching tracer provider.
// The exporter does not block on an unreachable collector; spans are
// dropped until it becomes reachable.
func Setup(ctx context.Context, opts Options) (*Provider, error) {
	opts.applyDefaults()

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "policy"),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	if opts.Global {
		otel.SetTracerProvider(tp)
	}

	return &Provider{
		tp:              tp,
		tracer:          tp.Tracer(opts.ServiceName + "/policy"),
		shutdownTimeout: opts.ShutdownTimeout,
	}, nil
}

// Tracer returns the provider's tracer. A nil Provider yields a no-op tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return noop.NewTracerProvider().Tracer(defaults.ToolName)
	}
	return p.tracer
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.shutdownTimeout)
	defer cancel()

	if err := p.tp.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}
