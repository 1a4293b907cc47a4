package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "contextforge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Transport, "CONTEXTFORGE_TRANSPORT")
	setString(&cfg.Server.Addr, "CONTEXTFORGE_ADDR")
	setString(&cfg.Server.CORSOrigin, "CONTEXTFORGE_CORS_ORIGIN")
	setString(&cfg.Server.APIKey, "CONTEXTFORGE_API_KEY")
	setFloat64(&cfg.Server.RateLimitRPS, "CONTEXTFORGE_RATE_LIMIT_RPS")
	setInt(&cfg.Server.RateLimitBurst, "CONTEXTFORGE_RATE_LIMIT_BURST")
	setStringList(&cfg.Rules.SearchPaths, "CONTEXTFORGE_RULES_PATHS")
	setBool(&cfg.Rules.EmbeddedFallback, "CONTEXTFORGE_RULES_EMBEDDED")
	setBool(&cfg.Cache.Enabled, "CONTEXTFORGE_CACHE_ENABLED")
	setInt64(&cfg.Cache.MaxSizeMB, "CONTEXTFORGE_CACHE_MAX_MB")
	setString(&cfg.Logging.Level, "CONTEXTFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CONTEXTFORGE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "CONTEXTFORGE_LOG_ASYNC")
	setBool(&cfg.Telemetry.Enabled, "CONTEXTFORGE_OTEL_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "CONTEXTFORGE_OTEL_ENDPOINT")
	setFloat64(&cfg.Telemetry.SampleRatio, "CONTEXTFORGE_OTEL_SAMPLE_RATIO")
	setInt(&cfg.Registry.MaxParallel, "CONTEXTFORGE_REGISTRY_PARALLEL")
	setString(&cfg.Registry.Output, "CONTEXTFORGE_REGISTRY_OUTPUT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	switch cfg.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("server.transport must be stdio or http, got %q", cfg.Server.Transport)
	}
	if cfg.Server.Transport == "http" && cfg.Server.Addr == "" {
		return errors.New("server.addr is required for the http transport")
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst < 1 {
		return errors.New("server.rate_limit_burst must be >= 1 when rate limiting is enabled")
	}
	if cfg.Cache.Enabled && cfg.Cache.MaxSizeMB < 1 {
		return errors.New("cache.max_size_mb must be >= 1")
	}
	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		return errors.New("telemetry.sample_ratio must be within [0, 1]")
	}
	if cfg.Registry.MaxParallel < 1 {
		return errors.New("registry.max_parallel must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setStringList(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
