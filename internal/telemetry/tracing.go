package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/riskgraph"

// TracingConfig selects the span exporter. Exporter "none" leaves the global no-op provider.
type TracingConfig struct {
	ServiceName    string  `yaml:"service_name"`
	ServiceVersion string  `yaml:"service_version"`
	Environment    string  `yaml:"environment"`
	Exporter       string  `yaml:"exporter"`
	SampleRate     float64 `yaml:"sample_rate"`
}

// DefaultTracingConfig returns the disabled tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "riskgraph",
		Environment: "development",
		Exporter:    "none",
		SampleRate:  1.0,
	}
}

// InitTracing installs a global tracer provider and returns its shutdown function.
// Spans go to out (stderr when nil) for the stdout exporter.
func InitTracing(config TracingConfig, out io.Writer) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	var exp sdktrace.SpanExporter
	switch config.Exporter {
	case "", "none":
		return noop, nil
	case "stdout":
		if out == nil {
			out = os.Stderr
		}
		var err error
		exp, err = stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("failed to create span exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", config.Exporter)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
		attribute.String("environment", config.Environment),
		attribute.String("host.name", getHostname()),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(config.SampleRate),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, name, opts...)
}

func AddSpanAttributes(span trace.Span, attributes map[string]string) {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	span.SetAttributes(attrs...)
}

func RecordSpanError(span trace.Span, err error, attributes map[string]string) {
	span.RecordError(err)
	if attributes != nil {
		AddSpanAttributes(span, attributes)
	}
	span.SetStatus(codes.Error, err.Error())
}

func getHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
