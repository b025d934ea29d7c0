package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Provider owns a real OpenTelemetry SDK TracerProvider, installed
// process-wide so every Tracer created with New picks it up instead
// of otel's no-op default. A process embedding the engine that already
// runs its own TracerProvider has no reason to construct one of these.
type Provider struct {
	sdk *sdktrace.TracerProvider
}

// NewProvider builds a TracerProvider tagged with serviceName and
// installs it globally. No exporter is attached, so spans are sampled
// and ended but not shipped anywhere, and the returned Provider offers
// no way to attach one afterwards. The construction order follows
// stargate's resource-first, exporter-optional shape.
func NewProvider(ctx context.Context, serviceName string) (*Provider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	sdk := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(sdk)

	return &Provider{sdk: sdk}, nil
}

// Shutdown flushes and stops the underlying TracerProvider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.sdk == nil {
		return nil
	}
	return p.sdk.Shutdown(ctx)
}
