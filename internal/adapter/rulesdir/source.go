// Package rulesdir serves the detection table and standards documents from
// a rules directory on disk, falling back to a compiled-in copy when no
// directory is configured.
package rulesdir

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Strob0t/ContextForge/internal/domain"
	"github.com/Strob0t/ContextForge/internal/domain/rules"
	"github.com/Strob0t/ContextForge/internal/port/cache"
)

//go:embed rules
var embedded embed.FS

// tableFile is the detection table's filename inside a rules directory.
const tableFile = "goto.yaml"

// Config configures a filesystem rules source.
type Config struct {
	// SearchPaths are candidate rules directories, tried in order. The
	// first one containing goto.yaml wins. A leading ~ expands to the
	// user's home directory.
	SearchPaths []string

	// EmbeddedFallback serves the compiled-in rules when no candidate
	// matches. When false a missing table degrades to an empty one.
	EmbeddedFallback bool

	// Cache holds documents read from disk, keyed by resolved file path.
	// nil disables caching.
	Cache cache.Cache

	Logger *slog.Logger
}

// Source implements rulestore.Source over a rules directory. The table is
// loaded once at construction; a malformed file degrades to an empty table
// so scans keep running while detecting nothing.
type Source struct {
	root    string // resolved rules dir, "" when serving embedded rules
	table   *rules.Table
	loadErr error
	cache   cache.Cache
	log     *slog.Logger
}

// New resolves the rules directory and loads the detection table.
func New(cfg Config) *Source {
	s := &Source{cache: cfg.Cache, log: cfg.Logger}
	if s.cache == nil {
		s.cache = cache.Bypass{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	for _, dir := range cfg.SearchPaths {
		resolved, err := expandPath(dir)
		if err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(resolved, tableFile)); err == nil {
			s.root = resolved
			break
		}
	}

	switch {
	case s.root != "":
		data, err := os.ReadFile(filepath.Join(s.root, tableFile))
		if err != nil {
			s.degrade(fmt.Errorf("read %s: %w", tableFile, err))
			return s
		}
		s.load(data)
		if s.loadErr == nil {
			s.log.Info("rules loaded", "root", s.root, "languages", len(s.table.Rules))
		}
	case cfg.EmbeddedFallback:
		data, err := embedded.ReadFile(path.Join("rules", tableFile))
		if err != nil {
			s.degrade(fmt.Errorf("embedded rules: %w", err))
			return s
		}
		s.load(data)
		if s.loadErr == nil {
			s.log.Info("rules loaded", "root", "embedded", "languages", len(s.table.Rules))
		}
	default:
		s.degrade(fmt.Errorf("no rules directory in %v: %w", cfg.SearchPaths, domain.ErrNotFound))
	}
	return s
}

func (s *Source) load(data []byte) {
	table, err := rules.Parse(data)
	if err != nil {
		s.degrade(err)
		return
	}
	s.table = table
}

func (s *Source) degrade(err error) {
	s.table = &rules.Table{}
	s.loadErr = err
	s.log.Warn("rules table unavailable, language detection disabled", "error", err)
}

// Table returns the loaded detection table. A degraded source returns an
// empty table together with the load error; callers may keep scanning.
func (s *Source) Table(_ context.Context) (*rules.Table, error) {
	return s.table, s.loadErr
}

// ReadDocument returns a standards document by its table-relative name.
// Disk reads go through the document cache; the embedded source reads
// straight from the binary.
func (s *Source) ReadDocument(ctx context.Context, name string) (string, error) {
	if !fs.ValidPath(name) || strings.Contains(name, "\\") {
		return "", fmt.Errorf("read document: invalid name %q: %w", name, domain.ErrNotFound)
	}

	if s.root == "" {
		data, err := embedded.ReadFile(path.Join("rules", name))
		if err != nil {
			return "", fmt.Errorf("read document %s: %w", name, domain.ErrNotFound)
		}
		return string(data), nil
	}

	full := filepath.Join(s.root, filepath.FromSlash(name))
	if data, ok, _ := s.cache.Get(ctx, full); ok {
		return string(data), nil
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read document %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", name, err)
	}
	_ = s.cache.Set(ctx, full, data, 0)
	return string(data), nil
}

// Root returns the resolved rules directory, or "" for embedded rules.
func (s *Source) Root() string {
	return s.root
}

// expandPath resolves a leading ~ and returns an absolute path.
func expandPath(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}
