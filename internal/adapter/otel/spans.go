package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "contextforge"

// StartScanSpan starts a span for a project scan.
func StartScanSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "scan",
		trace.WithAttributes(
			attribute.String("scan.path", path),
		),
	)
}

// StartGenerateSpan starts a span for context document generation.
func StartGenerateSpan(ctx context.Context, path, project string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "generate",
		trace.WithAttributes(
			attribute.String("scan.path", path),
			attribute.String("project.name", project),
		),
	)
}

// StartToolSpan starts a span for an MCP tool call.
func StartToolSpan(ctx context.Context, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "tool",
		trace.WithAttributes(
			attribute.String("tool.name", tool),
		),
	)
}
