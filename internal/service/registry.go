package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/ContextForge/internal/domain/registry"
	"github.com/Strob0t/ContextForge/internal/domain/scan"
	"github.com/Strob0t/ContextForge/internal/port/rulestore"
)

// skipDirs are base-level directories never treated as checkouts.
var skipDirs = map[string]bool{
	"rules":       true,
	"__pycache__": true,
}

// RegistryService builds the projects.yaml index for a directory of
// checkouts.
type RegistryService struct {
	source      rulestore.Source
	maxParallel int
}

// NewRegistryService creates a RegistryService. maxParallel bounds
// concurrent directory detections.
func NewRegistryService(source rulestore.Source, maxParallel int) *RegistryService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &RegistryService{source: source, maxParallel: maxParallel}
}

// candidate is one directory considered for a registry entry.
type candidate struct {
	name string // index key, "parent" or "parent/sub"
	dir  string // absolute path to detect against
}

// Build scans baseDir's immediate children, plus one nested level for
// grouping directories, and indexes every directory a detection rule
// matches. Directories no rule matches are omitted.
func (s *RegistryService) Build(ctx context.Context, baseDir string) (*registry.Index, error) {
	abs, err := scan.ResolvePath(baseDir)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve %s: %w", baseDir, err)
	}

	table, err := s.source.Table(ctx)
	if err != nil {
		slog.Warn("rules unavailable, registry will be empty", "error", err)
	}

	candidates, err := collectCandidates(abs)
	if err != nil {
		return nil, err
	}

	types := make([]string, len(candidates))
	var g errgroup.Group
	g.SetLimit(s.maxParallel)
	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			types[i] = registry.DetectType(c.dir, table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("registry: detect: %w", err)
	}

	idx := &registry.Index{Projects: map[string]registry.Entry{}}
	for i, c := range candidates {
		if types[i] == registry.Unknown {
			continue
		}
		idx.Projects[c.name] = registry.Entry{Type: types[i], Path: c.name}
	}

	slog.Info("registry built",
		"base", abs,
		"candidates", len(candidates),
		"projects", len(idx.Projects),
	)
	return idx, nil
}

// Write renders the index and writes it to outPath.
func (s *RegistryService) Write(idx *registry.Index, outPath string) error {
	data, err := idx.Marshal()
	if err != nil {
		return fmt.Errorf("registry: marshal: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", outPath, err)
	}
	return nil
}

// collectCandidates lists base-level directories and, for those that have
// subdirectories, the subdirectories as well. Hidden names are skipped
// everywhere; the skipDirs set applies at the base level only.
func collectCandidates(base string) ([]candidate, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("registry: read base dir: %w", err)
	}

	var out []candidate
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || skipDirs[name] || hidden(name) {
			continue
		}
		dir := filepath.Join(base, name)
		out = append(out, candidate{name: name, dir: dir})

		subs, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, sub := range subs {
			if !sub.IsDir() || hidden(sub.Name()) {
				continue
			}
			out = append(out, candidate{
				name: path.Join(name, sub.Name()),
				dir:  filepath.Join(dir, sub.Name()),
			})
		}
	}
	return out, nil
}

func hidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
