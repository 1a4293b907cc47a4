// Package service implements business logic on top of ports.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/ContextForge/internal/adapter/otel"
	"github.com/Strob0t/ContextForge/internal/domain/scan"
	"github.com/Strob0t/ContextForge/internal/port/rulestore"
)

// ScannerService scans project directories against the detection table.
type ScannerService struct {
	source  rulestore.Source
	metrics *cfotel.Metrics

	// A broken rules source degrades every scan the same way; warn once.
	warnOnce sync.Once
}

// NewScannerService creates a ScannerService.
func NewScannerService(source rulestore.Source) *ScannerService {
	return &ScannerService{source: source}
}

// SetMetrics wires the metric instruments.
func (s *ScannerService) SetMetrics(m *cfotel.Metrics) {
	s.metrics = m
}

// Scan detects languages and applicable standards for one directory.
func (s *ScannerService) Scan(ctx context.Context, path string) (*scan.Report, error) {
	ctx, span := cfotel.StartScanSpan(ctx, path)
	defer span.End()

	if s.metrics != nil {
		s.metrics.ScansStarted.Add(ctx, 1)
	}
	start := time.Now()

	table, err := s.source.Table(ctx)
	if err != nil {
		s.warnOnce.Do(func() {
			slog.Warn("rules unavailable, scanning with empty table", "error", err)
		})
	}

	report, err := scan.Scan(path, table)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ScansFailed.Add(ctx, 1)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		return nil, err
	}

	lang := report.Primary()
	if lang == "" {
		lang = "unknown"
	}
	if s.metrics != nil {
		s.metrics.ScanDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("language", lang)))
	}

	slog.Debug("project scanned",
		"path", report.Path,
		"language", lang,
		"confidence", report.Confidence,
		"files", report.TotalFiles,
	)
	return report, nil
}
