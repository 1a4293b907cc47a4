package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/ContextForge/internal/adapter/otel"
	"github.com/Strob0t/ContextForge/internal/domain/scan"
	"github.com/Strob0t/ContextForge/internal/port/rulestore"
)

// generatorName appears in the generated document's banner and footer.
const generatorName = "contextforge"

// ContextService assembles the LLM context document for a project.
type ContextService struct {
	scanner *ScannerService
	source  rulestore.Source
	metrics *cfotel.Metrics
}

// NewContextService creates a ContextService.
func NewContextService(scanner *ScannerService, source rulestore.Source) *ContextService {
	return &ContextService{scanner: scanner, source: source}
}

// SetMetrics wires the metric instruments.
func (s *ContextService) SetMetrics(m *cfotel.Metrics) {
	s.metrics = m
}

// standardDoc pairs a standards document name with its loaded content.
type standardDoc struct {
	name string
	body string
}

// Generate scans path and renders the context document. projectName
// overrides the directory-derived name when non-empty.
func (s *ContextService) Generate(ctx context.Context, path, projectName string) (string, error) {
	ctx, span := cfotel.StartGenerateSpan(ctx, path, projectName)
	defer span.End()

	report, err := s.scanner.Scan(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		return "", fmt.Errorf("generate context: %w", err)
	}

	name := projectName
	if name == "" {
		name = report.ProjectName
	}
	if name == "" {
		name = "unknown-project"
	}

	docs := s.loadStandards(ctx, report.Standards)
	doc := buildDocument(report, name, docs, time.Now())

	lang := report.Primary()
	if lang == "" {
		lang = "unknown"
	}
	if s.metrics != nil {
		s.metrics.Documents.Add(ctx, 1,
			metric.WithAttributes(attribute.String("language", lang)))
	}

	slog.Info("context generated",
		"project", name,
		"language", lang,
		"standards", len(report.Standards),
		"bytes", len(doc),
	)
	return doc, nil
}

// Summary scans path and returns the one-line generation summary.
func (s *ContextService) Summary(ctx context.Context, path string) (string, error) {
	report, err := s.scanner.Scan(ctx, path)
	if err != nil {
		return "", err
	}
	lang := report.Primary()
	if lang == "" {
		lang = "Unknown"
	}
	return fmt.Sprintf("Generated context for %s project (confidence: %.1f%%, %d standards applied)",
		lang, report.Confidence*100, len(report.Standards)), nil
}

// loadStandards reads each standards document, substituting a placeholder
// for documents the source cannot serve.
func (s *ContextService) loadStandards(ctx context.Context, standards []string) []standardDoc {
	docs := make([]standardDoc, 0, len(standards))
	for _, name := range standards {
		body, err := s.source.ReadDocument(ctx, name)
		if err != nil {
			slog.Warn("could not load standard", "name", name, "error", err)
			body = fmt.Sprintf("# %s\n\n*Content not available*", name)
		}
		docs = append(docs, standardDoc{name: name, body: body})
	}
	return docs
}

// buildDocument renders the context document. The layout is a tool-facing
// contract; downstream automation greps these headings.
func buildDocument(report *scan.Report, name string, docs []standardDoc, now time.Time) string {
	lines := []string{
		"# LLM Context - " + name,
		"",
		fmt.Sprintf("*Generated on %s by %s*", now.Format("2006-01-02 15:04:05"), generatorName),
		"",
		"## Project Detection Results",
		"",
	}

	if primary := report.Primary(); primary != "" {
		desc := "Unknown"
		if m, ok := report.Detected.Get(primary); ok && m.Description != "" {
			desc = m.Description
		}
		lines = append(lines,
			fmt.Sprintf("**Detected Language:** %s (confidence: %.1f%%)", primary, report.Confidence*100),
			"**Project Type:** "+desc,
			"",
		)
	} else {
		lines = append(lines,
			"**Detected Language:** Unknown/Mixed",
			"**Project Type:** Generic project",
			"",
		)
	}

	lines = append(lines,
		fmt.Sprintf("**Total Files Scanned:** %d", report.TotalFiles),
		"",
	)

	if mf := report.MandatoryFiles; mf != nil && len(mf.Required) > 0 {
		lines = append(lines, "### Required Files Status", "")

		present := make(map[string]bool, len(mf.Present))
		for _, f := range mf.Present {
			present[f] = true
		}
		for _, f := range mf.Required {
			status := "❌"
			if present[f] {
				status = "✅"
			}
			lines = append(lines, fmt.Sprintf("- %s %s", status, f))
		}
		lines = append(lines, "")

		if len(mf.Missing) > 0 {
			lines = append(lines, "**Missing Files:** Consider creating the following files:", "")
			for _, f := range mf.Missing {
				lines = append(lines, "- "+f)
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines,
		"---",
		"",
		"## Applicable Coding Standards",
		"",
	)
	for _, d := range docs {
		lines = append(lines,
			"### "+d.name,
			"",
			d.body,
			"",
			"---",
			"",
		)
	}

	lines = append(lines,
		"## How to Use This Context",
		"",
		"This file contains universal coding standards and project context that work with any LLM.",
		"Copy the content as follows:",
		"",
		"### Claude (Anthropic)",
		"1. Rename this file to `CLAUDE.md`",
		"2. Place in your project root directory",
		"3. Claude will automatically read it",
		"",
		"### ChatGPT (OpenAI)",
		"1. Create a new Project in ChatGPT",
		"2. Copy this content to Project's Custom Instructions",
		"3. Or upload as a file to the Project's Knowledge base",
		"",
		"### Gemini (Google)",
		"1. For Firebase Studio: Copy to `.idx/airules.md`",
		"2. For GitHub: Copy to `.gemini/styleguide.md`",
		"3. For general use: Reference as needed",
		"",
		"### Other LLMs",
		"- Use as system prompt or context document",
		"- Reference key sections as needed",
		"- Adapt file name to your LLM's conventions",
		"",
		"---",
		"",
		fmt.Sprintf("*Context optimized for token efficiency • LLM-agnostic design • Generated by %s*", generatorName),
	)

	return strings.Join(lines, "\n")
}
