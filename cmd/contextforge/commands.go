package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/Strob0t/ContextForge/internal/adapter/rulesdir"
	"github.com/Strob0t/ContextForge/internal/config"
	"github.com/Strob0t/ContextForge/internal/domain/scan"
	"github.com/Strob0t/ContextForge/internal/domain/tokens"
	"github.com/Strob0t/ContextForge/internal/service"
)

func printHelp() {
	fmt.Fprintf(os.Stderr, `Usage: contextforge <command> [options]

Commands:
  serve      Run the MCP server (default when no command is given)
  scan       Scan a project directory and report detected languages
  generate   Generate an LLM context document for a project
  estimate   Estimate token usage for a context file
  optimize   Suggest token optimizations for a context file
  registry   Build a projects.yaml registry for a directory of projects
  version    Print the version
  help       Show this help message

Examples:
  contextforge serve --transport http
  contextforge scan ~/code/myproject
  contextforge generate ~/code/myproject -o LLM_CONTEXT.md
  contextforge estimate LLM_CONTEXT.md --json
  contextforge registry ~/code
`)
}

// loadCLIDeps builds the rules source for one-shot commands, which skip
// the document cache and telemetry.
func loadCLIDeps(configPath string) (*config.Config, *rulesdir.Source, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	source := rulesdir.New(rulesdir.Config{
		SearchPaths:      cfg.Rules.SearchPaths,
		EmbeddedFallback: cfg.Rules.EmbeddedFallback,
	})
	return cfg, source, nil
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigFile, "config file path")
	asJSON := fs.Bool("json", false, "emit the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: contextforge scan [--json] <path>")
	}

	_, source, err := loadCLIDeps(*configPath)
	if err != nil {
		return err
	}

	report, err := service.NewScannerService(source).Scan(context.Background(), fs.Arg(0))
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		return json.NewEncoder(os.Stdout).Encode(report)
	}
	return printReport(report)
}

func printReport(report *scan.Report) error {
	primary := report.Primary()
	if primary == "" {
		primary = "unknown"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Project:\t%s\n", report.ProjectName)
	_, _ = fmt.Fprintf(w, "Path:\t%s\n", report.Path)
	_, _ = fmt.Fprintf(w, "Language:\t%s (%.1f%% confidence)\n", primary, report.Confidence*100)
	if report.Detected.Len() > 1 {
		for _, lang := range report.Detected.Languages() {
			m, _ := report.Detected.Get(lang)
			_, _ = fmt.Fprintf(w, "  %s:\t%.1f%%\n", lang, m.Confidence*100)
		}
	}
	_, _ = fmt.Fprintf(w, "Files scanned:\t%d\n", report.TotalFiles)
	_, _ = fmt.Fprintf(w, "Standards:\t%s\n", strings.Join(report.Standards, ", "))
	if report.MandatoryFiles != nil && len(report.MandatoryFiles.Missing) > 0 {
		_, _ = fmt.Fprintf(w, "Missing files:\t%s\n", strings.Join(report.MandatoryFiles.Missing, ", "))
	}
	return w.Flush()
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigFile, "config file path")
	name := fs.String("name", "", "project name override")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: contextforge generate [--name NAME] [-o FILE] <path>")
	}

	_, source, err := loadCLIDeps(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	scannerSvc := service.NewScannerService(source)
	contextSvc := service.NewContextService(scannerSvc, source)

	doc, err := contextSvc.Generate(ctx, fs.Arg(0), *name)
	if err != nil {
		return err
	}

	if *out == "" {
		fmt.Println(doc)
		return nil
	}
	if err := os.WriteFile(*out, []byte(doc+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	summary, err := contextSvc.Summary(ctx, fs.Arg(0))
	if err != nil {
		summary = "Generated context"
	}
	fmt.Fprintf(os.Stderr, "%s -> %s\n", summary, *out)
	return nil
}

func runEstimate(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "emit the full estimate as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: contextforge estimate [--json] <context-file>")
	}

	est, err := service.NewTokenService().EstimateFile(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		return json.NewEncoder(os.Stdout).Encode(est)
	}
	return printEstimate(est)
}

func printEstimate(est *tokens.Estimate) error {
	models := make([]string, 0, len(est.CostEstimates))
	for m := range est.CostEstimates {
		models = append(models, m)
	}
	sort.Strings(models)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "File:\t%s\n", est.File)
	_, _ = fmt.Fprintf(w, "Size:\t%d bytes\n", est.FileSizeBytes)
	_, _ = fmt.Fprintf(w, "Words:\t%d\n", est.WordCount)
	_, _ = fmt.Fprintf(w, "Estimated tokens:\t%d\n", est.EstimatedTokens)
	_, _ = fmt.Fprintf(w, "Optimization potential:\t%s\n", est.Potential)
	for _, model := range models {
		_, _ = fmt.Fprintf(w, "Cost (%s):\t$%.4f\n", model, est.CostEstimates[model])
	}
	return w.Flush()
}

func runOptimize(args []string) error {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "emit the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: contextforge optimize [--json] <context-file>")
	}

	opt, err := service.NewTokenService().OptimizeFile(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		return json.NewEncoder(os.Stdout).Encode(opt)
	}
	return printOptimization(opt)
}

func printOptimization(opt *tokens.Optimization) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "File:\t%s\n", opt.File)
	_, _ = fmt.Fprintf(w, "Current tokens:\t%d\n", opt.CurrentTokens)
	_, _ = fmt.Fprintf(w, "Potential savings:\t%d\n", opt.PotentialSavings)
	_, _ = fmt.Fprintf(w, "Difficulty:\t%s\n", opt.Difficulty)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(opt.Suggestions) == 0 {
		fmt.Println("No optimization suggestions.")
		return nil
	}
	fmt.Println()
	for _, s := range opt.Suggestions {
		fmt.Printf("[%s] %s (~%d tokens)\n", s.Priority, s.Title, s.TokenSavings)
		fmt.Printf("    %s\n", s.Action)
	}
	return nil
}

func runRegistry(args []string) error {
	fs := flag.NewFlagSet("registry", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigFile, "config file path")
	out := fs.String("o", "", "output file (default <base-dir>/projects.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: contextforge registry [-o FILE] <base-dir>")
	}

	cfg, source, err := loadCLIDeps(*configPath)
	if err != nil {
		return err
	}

	svc := service.NewRegistryService(source, cfg.Registry.MaxParallel)
	idx, err := svc.Build(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(fs.Arg(0), cfg.Registry.Output)
	}
	if err := svc.Write(idx, outPath); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Registry written: %s (%d projects)\n", outPath, len(idx.Projects))
	return nil
}
