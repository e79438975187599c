package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/loadable-dev/loadable/pkg/future"
)

// Default tracer name for loadable spans.
const defaultTracerName = "loadable"

// TracingConfig configures the OpenTelemetry probe.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "loadable").
	TracerName string

	// Filter determines which managers to trace.
	// Return true to trace the manager's operations, false to skip.
	// If nil, all operations are traced.
	Filter func(manager string) bool

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry probe.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithManagerFilter sets a filter function for managers.
func WithManagerFilter(filter func(manager string) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// defaultTracingConfig returns the default tracing configuration.
func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName: defaultTracerName,
		Filter:     nil,
	}
}

// Tracing is a future.Probe that opens one OpenTelemetry span per
// operation, named "loadable.execute" or "loadable.refresh", carrying
// manager and mode attributes. The span's context is handed to the
// operation, so downstream calls nest under it.
//
// Phase changes and stored errors carry no context and produce no
// spans; pair Tracing with Metrics through Multi to capture those.
type Tracing struct {
	tracer trace.Tracer
	filter func(manager string) bool
}

// NewTracing creates the probe.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before creating managers:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return &Tracing{
		tracer: config.tracer,
		filter: config.Filter,
	}
}

// OperationStarted implements future.Probe. The settle callback records
// the error, sets the span status, and ends the span.
func (t *Tracing) OperationStarted(ctx context.Context, manager, mode string) (context.Context, func(error)) {
	if t.filter != nil && !t.filter(manager) {
		return ctx, func(error) {}
	}

	spanCtx, span := t.tracer.Start(
		ctx,
		fmt.Sprintf("loadable.%s", mode),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("loadable.manager", manager),
			attribute.String("loadable.mode", mode),
		),
	)

	return spanCtx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// PhaseChanged implements future.Probe. No-op; phase changes have no
// span to attach to.
func (t *Tracing) PhaseChanged(manager string, view future.ViewState) {}

// ErrorStored implements future.Probe. No-op; the operation span already
// records the error.
func (t *Tracing) ErrorStored(manager string, err error) {}
