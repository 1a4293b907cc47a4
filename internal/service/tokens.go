package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	cfotel "github.com/Strob0t/ContextForge/internal/adapter/otel"
	"github.com/Strob0t/ContextForge/internal/domain/tokens"
)

// TokenService estimates token usage for context files on disk.
type TokenService struct {
	metrics *cfotel.Metrics
}

// NewTokenService creates a TokenService.
func NewTokenService() *TokenService {
	return &TokenService{}
}

// SetMetrics wires the metric instruments.
func (s *TokenService) SetMetrics(m *cfotel.Metrics) {
	s.metrics = m
}

// EstimateFile reads a context file and estimates its token usage.
func (s *TokenService) EstimateFile(ctx context.Context, path string) (*tokens.Estimate, error) {
	content, err := readContextFile(path)
	if err != nil {
		return nil, err
	}

	est := tokens.EstimateText(content)
	est.File = path

	if s.metrics != nil {
		s.metrics.Tokens.Add(ctx, int64(est.EstimatedTokens))
	}
	slog.Debug("tokens estimated", "file", path, "tokens", est.EstimatedTokens)
	return est, nil
}

// OptimizeFile reads a context file and derives optimization suggestions.
func (s *TokenService) OptimizeFile(ctx context.Context, path string) (*tokens.Optimization, error) {
	content, err := readContextFile(path)
	if err != nil {
		return nil, err
	}

	opt := tokens.Optimize(content)
	opt.File = path

	if s.metrics != nil {
		s.metrics.Tokens.Add(ctx, int64(opt.CurrentTokens))
	}
	slog.Debug("optimizations suggested",
		"file", path,
		"suggestions", len(opt.Suggestions),
		"savings", opt.PotentialSavings,
	)
	return opt, nil
}

// readContextFile loads the target file. The error text is shown verbatim
// to tool callers, hence the sentence casing.
func readContextFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the tool caller
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("File not found: %s", path) //nolint:staticcheck // ST1005: tool-facing message
	case err != nil:
		return "", fmt.Errorf("Could not read file: %v", err) //nolint:staticcheck // ST1005: tool-facing message
	}
	return string(data), nil
}
