// Package tracing wraps OpenTelemetry span creation for active probes so
// the engine can be embedded into a proxy that already exports traces
// without dragging in an exporter of its own.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/relayhealth/relayhealth"

// Tracer starts spans around probe operations. With no global
// TracerProvider registered (the default posture in tests; the demo
// binary installs one via NewProvider) it degrades to otel's no-op
// tracer, so callers never need to special-case "tracing disabled".
type Tracer struct {
	tracer trace.Tracer
}

// New returns a Tracer bound to the process-wide TracerProvider.
func New() *Tracer {
	return &Tracer{tracer: otel.Tracer(instrumentationName)}
}

// StartProbe opens a span describing an active probe against target.
func (t *Tracer) StartProbe(ctx context.Context, ip string, port int, hostname string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "relayhealth.probe", trace.WithAttributes(
		attribute.String("relayhealth.target.ip", ip),
		attribute.Int("relayhealth.target.port", port),
		attribute.String("relayhealth.target.hostname", hostname),
	))
}
