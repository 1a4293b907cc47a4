package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Strob0t/ContextForge/internal/adapter/mcp"
	cfotel "github.com/Strob0t/ContextForge/internal/adapter/otel"
	"github.com/Strob0t/ContextForge/internal/adapter/ristretto"
	"github.com/Strob0t/ContextForge/internal/adapter/rulesdir"
	"github.com/Strob0t/ContextForge/internal/config"
	"github.com/Strob0t/ContextForge/internal/logger"
	"github.com/Strob0t/ContextForge/internal/port/cache"
	"github.com/Strob0t/ContextForge/internal/service"
)

const serviceName = "contextforge"

// version is stamped by release builds via -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// run dispatches subcommands. No command means serve, so a bare binary
// works as an MCP stdio server out of the box.
func run(args []string) error {
	if len(args) == 0 {
		return runServe(nil)
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "scan":
		return runScan(args[1:])
	case "generate":
		return runGenerate(args[1:])
	case "estimate":
		return runEstimate(args[1:])
	case "optimize":
		return runOptimize(args[1:])
	case "registry":
		return runRegistry(args[1:])
	case "version":
		fmt.Printf("%s %s\n", serviceName, version)
		return nil
	case "help", "--help", "-h":
		printHelp()
		return nil
	default:
		printHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigFile, "config file path")
	transport := fs.String("transport", "", "override server.transport (stdio or http)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch *transport {
	case "":
	case "stdio", "http":
		cfg.Server.Transport = *transport
	default:
		return fmt.Errorf("--transport must be stdio or http, got %q", *transport)
	}

	log, closer := logger.New(cfg.Logging)
	defer closer.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"transport", cfg.Server.Transport,
		"log_level", cfg.Logging.Level,
		"cache_enabled", cfg.Cache.Enabled,
		"otel_enabled", cfg.Telemetry.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	shutdownOtel, err := cfotel.Setup(ctx, cfg.Telemetry, serviceName, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(flushCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	var docCache cache.Cache = cache.Bypass{}
	if cfg.Cache.Enabled {
		rc, err := ristretto.New(cfg.Cache.MaxSizeMB * 1024 * 1024)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer rc.Close()
		docCache = rc
		if cfg.Telemetry.Enabled {
			if err := cfotel.RegisterCacheStats(rc.Stats()); err != nil {
				slog.Warn("cache stats not exported", "error", err)
			}
		}
	}

	source := rulesdir.New(rulesdir.Config{
		SearchPaths:      cfg.Rules.SearchPaths,
		EmbeddedFallback: cfg.Rules.EmbeddedFallback,
		Cache:            docCache,
		Logger:           slog.Default(),
	})

	// --- Services ---

	scannerSvc := service.NewScannerService(source)
	contextSvc := service.NewContextService(scannerSvc, source)
	tokenSvc := service.NewTokenService()
	instructionsSvc := service.NewInstructionsService()

	var metrics *cfotel.Metrics
	if cfg.Telemetry.Enabled {
		metrics, err = cfotel.NewMetrics()
		if err != nil {
			return fmt.Errorf("otel metrics: %w", err)
		}
		scannerSvc.SetMetrics(metrics)
		contextSvc.SetMetrics(metrics)
		tokenSvc.SetMetrics(metrics)
	}

	srv := mcp.NewServer(mcp.ServerConfig{
		Addr:       cfg.Server.Addr,
		Name:       serviceName,
		Version:    version,
		CORSOrigin: cfg.Server.CORSOrigin,
		APIKey:     cfg.Server.APIKey,
		RateRPS:    cfg.Server.RateLimitRPS,
		RateBurst:  cfg.Server.RateLimitBurst,
	}, mcp.ServerDeps{
		Scanner:      scannerSvc,
		Generator:    contextSvc,
		Estimator:    tokenSvc,
		Instructions: instructionsSvc,
		Rules:        source,
		Metrics:      metrics,
	})

	if cfg.Server.Transport == "stdio" {
		if err := srv.ServeStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
