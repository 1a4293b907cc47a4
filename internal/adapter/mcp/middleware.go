package mcp

import (
	"context"
	"log/slog"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/ContextForge/internal/adapter/otel"
)

// instrumentTool wraps every tool handler with a span, a call counter and
// a debug log line. In-band error results count as failures too.
func (s *Server) instrumentTool(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
		name := req.Params.Name
		ctx, span := cfotel.StartToolSpan(ctx, name)
		defer span.End()

		start := time.Now()
		result, err := next(ctx, req)
		failed := err != nil || (result != nil && result.IsError)

		if s.deps.Metrics != nil {
			s.deps.Metrics.ToolCalls.Add(ctx, 1, metric.WithAttributes(
				attribute.String("tool", name),
				attribute.Bool("error", failed),
			))
		}
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, "tool failed")
		case failed:
			span.SetStatus(codes.Error, "tool returned error result")
		}

		slog.Debug("tool call",
			"tool", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", failed,
		)
		return result, err
	}
}
