// Package config provides hierarchical configuration loading for ContextForge.
// Precedence: defaults < YAML file < environment variables.
package config

// Config holds all runtime configuration for the ContextForge server and CLI.
type Config struct {
	Server    Server    `yaml:"server"`
	Rules     Rules     `yaml:"rules"`
	Cache     Cache     `yaml:"cache"`
	Logging   Logging   `yaml:"logging"`
	Telemetry Telemetry `yaml:"telemetry"`
	Registry  Registry  `yaml:"registry"`
}

// Server holds MCP transport configuration.
type Server struct {
	Transport      string  `yaml:"transport"` // "stdio" | "http"
	Addr           string  `yaml:"addr"`      // listen address for the http transport
	CORSOrigin     string  `yaml:"cors_origin"`
	APIKey         string  `yaml:"api_key"`        // shared key for the http transport, empty disables auth
	RateLimitRPS   float64 `yaml:"rate_limit_rps"` // per-client requests/sec on /mcp, 0 disables
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Rules holds rules directory resolution configuration.
type Rules struct {
	SearchPaths      []string `yaml:"search_paths"`      // candidate dirs, first match wins
	EmbeddedFallback bool     `yaml:"embedded_fallback"` // serve compiled-in rules when none match
}

// Cache holds standards document cache configuration.
type Cache struct {
	Enabled   bool  `yaml:"enabled"`
	MaxSizeMB int64 `yaml:"max_size_mb"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Telemetry holds OpenTelemetry export configuration.
type Telemetry struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC endpoint, host:port
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Registry holds project registry builder configuration.
type Registry struct {
	MaxParallel int    `yaml:"max_parallel"` // concurrent project detections
	Output      string `yaml:"output"`       // registry filename
}

// Defaults returns a Config with sensible default values for local use.
func Defaults() Config {
	return Config{
		Server: Server{
			Transport:      "stdio",
			Addr:           ":8117",
			CORSOrigin:     "*",
			RateLimitBurst: 20,
		},
		Rules: Rules{
			SearchPaths:      []string{"rules", "~/.config/contextforge/rules"},
			EmbeddedFallback: true,
		},
		Cache: Cache{
			Enabled:   true,
			MaxSizeMB: 16,
		},
		Logging: Logging{
			Level:   "info",
			Service: "contextforge",
		},
		Telemetry: Telemetry{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			SampleRatio: 1.0,
		},
		Registry: Registry{
			MaxParallel: 4,
			Output:      "projects.yaml",
		},
	}
}
