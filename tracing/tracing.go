// Package tracing provides OpenTelemetry tracing for the wikitext MCP server.
// It configures trace exporters and provides utilities for creating spans.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	TracerName = "wikitext-mcp-server"
)

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	OTLPEndpoint   string    // If set, uses OTLP exporter; otherwise the console exporter
	SampleRate     float64   // fraction of traces kept, clamped to [0, 1]
	Console        io.Writer // console exporter output; nil means stderr
}

// DefaultConfig returns defaults for tracing, overridden by OTEL_* variables
func DefaultConfig() Config {
	return Config{
		ServiceName:    TracerName,
		ServiceVersion: "1.0.0",
		Environment:    getEnvOrDefault("OTEL_ENVIRONMENT", "development"),
		Enabled:        os.Getenv("OTEL_ENABLED") == "true" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SampleRate:     1.0,
	}
}

// Setup initializes OpenTelemetry tracing and returns a shutdown function.
// The console exporter defaults to stderr so it never mixes with the stdio transport.
func Setup(ctx context.Context, config Config) (func(context.Context) error, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, config)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, config Config) (sdktrace.SpanExporter, error) {
	if config.OTLPEndpoint != "" {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(config.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	w := config.Console
	if w == nil {
		w = os.Stderr
	}
	return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
}

// sampler clamps rate to [0, 1]; the ends sample everything or nothing.
func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the named tracer for the server
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a new span with the given name and returns the context and span
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// AddToolAttributes adds standard tool attributes to a span
func AddToolAttributes(span trace.Span, toolName, category string) {
	span.SetAttributes(
		attribute.String("mcp.tool.name", toolName),
		attribute.String("mcp.tool.category", category),
	)
}

// AddDocumentAttributes adds the input size and parse diagnostics of a page to a span
func AddDocumentAttributes(span trace.Span, inputBytes, tokens, malformedLinks int) {
	span.SetAttributes(
		attribute.Int("wikitext.input.bytes", inputBytes),
		attribute.Int("wikitext.tokens", tokens),
	)
	if malformedLinks > 0 {
		span.SetAttributes(attribute.Int("wikitext.malformed_links", malformedLinks))
	}
}

// AddRenderAttributes adds the render format to a span
func AddRenderAttributes(span trace.Span, format string, cached bool) {
	span.SetAttributes(
		attribute.String("wikitext.render.format", format),
		attribute.Bool("wikitext.render.cached", cached),
	)
}

// RecordError records an error on the span and marks it failed
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
