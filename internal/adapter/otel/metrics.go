package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "contextforge"

// Metrics holds all ContextForge metric instruments.
type Metrics struct {
	ScansStarted metric.Int64Counter
	ScansFailed  metric.Int64Counter
	ToolCalls    metric.Int64Counter
	ScanDuration metric.Float64Histogram
	Documents    metric.Int64Counter
	Tokens       metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.ScansStarted, err = meter.Int64Counter("contextforge.scans.started",
		metric.WithDescription("Number of project scans started"))
	if err != nil {
		return nil, err
	}

	m.ScansFailed, err = meter.Int64Counter("contextforge.scans.failed",
		metric.WithDescription("Number of project scans failed"))
	if err != nil {
		return nil, err
	}

	m.ToolCalls, err = meter.Int64Counter("contextforge.toolcalls",
		metric.WithDescription("Number of MCP tool calls"))
	if err != nil {
		return nil, err
	}

	m.ScanDuration, err = meter.Float64Histogram("contextforge.scan.duration_seconds",
		metric.WithDescription("Project scan duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.Documents, err = meter.Int64Counter("contextforge.documents.generated",
		metric.WithDescription("Number of context documents generated"))
	if err != nil {
		return nil, err
	}

	m.Tokens, err = meter.Int64Counter("contextforge.tokens.estimated",
		metric.WithDescription("Total tokens across estimates"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// CacheStats exposes hit and miss totals from a cache.
type CacheStats interface {
	Hits() uint64
	Misses() uint64
}

// RegisterCacheStats exports cache hit and miss totals as observable
// counters backed by the given stats source.
func RegisterCacheStats(stats CacheStats) error {
	meter := otel.Meter(meterName)

	hits, err := meter.Int64ObservableCounter("contextforge.cache.hits",
		metric.WithDescription("Document cache hits"))
	if err != nil {
		return err
	}
	misses, err := meter.Int64ObservableCounter("contextforge.cache.misses",
		metric.WithDescription("Document cache misses"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(hits, int64(stats.Hits()))     //nolint:gosec // G115: counter fits in int64
		o.ObserveInt64(misses, int64(stats.Misses())) //nolint:gosec // G115: counter fits in int64
		return nil
	}, hits, misses)
	return err
}
