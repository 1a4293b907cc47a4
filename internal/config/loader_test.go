package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Transport != "stdio" {
		t.Errorf("expected transport stdio, got %s", cfg.Server.Transport)
	}
	if cfg.Server.Addr != ":8117" {
		t.Errorf("expected addr :8117, got %s", cfg.Server.Addr)
	}
	if len(cfg.Rules.SearchPaths) == 0 || cfg.Rules.SearchPaths[0] != "rules" {
		t.Errorf("expected first search path 'rules', got %v", cfg.Rules.SearchPaths)
	}
	if !cfg.Rules.EmbeddedFallback {
		t.Error("expected embedded fallback enabled by default")
	}
	if cfg.Cache.MaxSizeMB != 16 {
		t.Errorf("expected cache max 16 MB, got %d", cfg.Cache.MaxSizeMB)
	}
	if cfg.Telemetry.SampleRatio != 1.0 {
		t.Errorf("expected sample ratio 1.0, got %v", cfg.Telemetry.SampleRatio)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  transport: "http"
  addr: ":9090"
rules:
  search_paths: ["/srv/rules"]
cache:
  max_size_mb: 64
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Transport != "http" {
		t.Errorf("expected transport http, got %s", cfg.Server.Transport)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if len(cfg.Rules.SearchPaths) != 1 || cfg.Rules.SearchPaths[0] != "/srv/rules" {
		t.Errorf("expected search paths [/srv/rules], got %v", cfg.Rules.SearchPaths)
	}
	if cfg.Cache.MaxSizeMB != 64 {
		t.Errorf("expected cache max 64 MB, got %d", cfg.Cache.MaxSizeMB)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Registry.MaxParallel != 4 {
		t.Errorf("expected default registry parallelism 4, got %d", cfg.Registry.MaxParallel)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("CONTEXTFORGE_TRANSPORT", "http")
	t.Setenv("CONTEXTFORGE_ADDR", ":7070")
	t.Setenv("CONTEXTFORGE_RULES_PATHS", " /a/rules , /b/rules ,")
	t.Setenv("CONTEXTFORGE_CACHE_ENABLED", "false")
	t.Setenv("CONTEXTFORGE_LOG_LEVEL", "warn")
	t.Setenv("CONTEXTFORGE_OTEL_SAMPLE_RATIO", "0.25")
	t.Setenv("CONTEXTFORGE_REGISTRY_PARALLEL", "8")

	loadEnv(&cfg)

	if cfg.Server.Transport != "http" {
		t.Errorf("expected transport http, got %s", cfg.Server.Transport)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("expected addr :7070, got %s", cfg.Server.Addr)
	}
	want := []string{"/a/rules", "/b/rules"}
	if len(cfg.Rules.SearchPaths) != len(want) {
		t.Fatalf("expected search paths %v, got %v", want, cfg.Rules.SearchPaths)
	}
	for i := range want {
		if cfg.Rules.SearchPaths[i] != want[i] {
			t.Errorf("search path %d = %q, want %q", i, cfg.Rules.SearchPaths[i], want[i])
		}
	}
	if cfg.Cache.Enabled {
		t.Error("expected cache disabled")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Telemetry.SampleRatio != 0.25 {
		t.Errorf("expected sample ratio 0.25, got %v", cfg.Telemetry.SampleRatio)
	}
	if cfg.Registry.MaxParallel != 8 {
		t.Errorf("expected registry parallelism 8, got %d", cfg.Registry.MaxParallel)
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "bad transport",
			modify: func(c *Config) { c.Server.Transport = "tcp" },
			errMsg: `server.transport must be stdio or http, got "tcp"`,
		},
		{
			name: "http without addr",
			modify: func(c *Config) {
				c.Server.Transport = "http"
				c.Server.Addr = ""
			},
			errMsg: "server.addr is required for the http transport",
		},
		{
			name: "rate limit without burst",
			modify: func(c *Config) {
				c.Server.RateLimitRPS = 5
				c.Server.RateLimitBurst = 0
			},
			errMsg: "server.rate_limit_burst must be >= 1 when rate limiting is enabled",
		},
		{
			name:   "zero cache size",
			modify: func(c *Config) { c.Cache.MaxSizeMB = 0 },
			errMsg: "cache.max_size_mb must be >= 1",
		},
		{
			name:   "sample ratio out of range",
			modify: func(c *Config) { c.Telemetry.SampleRatio = 1.5 },
			errMsg: "telemetry.sample_ratio must be within [0, 1]",
		},
		{
			name:   "zero registry parallelism",
			modify: func(c *Config) { c.Registry.MaxParallel = 0 },
			errMsg: "registry.max_parallel must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := validate(&cfg)
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.errMsg)
			}
			if err.Error() != tt.errMsg {
				t.Errorf("expected %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidateDisabledCacheIgnoresSize(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.Enabled = false
	cfg.Cache.MaxSizeMB = 0
	if err := validate(&cfg); err != nil {
		t.Errorf("disabled cache should not validate size, got %v", err)
	}
}
