package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Strob0t/ContextForge/internal/domain"
	"github.com/Strob0t/ContextForge/internal/domain/rules"
)

// ResolvePath expands a leading ~ and makes the path absolute. Boundaries
// use it to report the same resolved path a scan would have used.
func ResolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Abs(path)
}

// Scan inspects a single directory level and builds the detection report.
// Only regular files count; directories and symlinks are skipped and there
// is no recursion. The listing is captured once, so a directory mutated
// while scanning yields an arbitrary but harmless snapshot.
//
// Failures wrap the domain sentinels: ErrNotFound, ErrNotADirectory and
// ErrPermissionDenied.
func Scan(path string, table *rules.Table) (*Report, error) {
	if table == nil {
		table = &rules.Table{}
	}
	abs, err := ResolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("scan: path does not exist: %s: %w", abs, domain.ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("scan %s: %w", abs, domain.ErrPermissionDenied)
	case err != nil:
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	case !info.IsDir():
		return nil, fmt.Errorf("scan: path is not a directory: %s: %w", abs, domain.ErrNotADirectory)
	}

	entries, err := os.ReadDir(abs)
	if errors.Is(err, fs.ErrPermission) {
		return nil, fmt.Errorf("scan %s: %w", abs, domain.ErrPermissionDenied)
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: read dir: %w", abs, err)
	}

	// ReadDir returns entries sorted by name, which files_found relies on.
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		files = append(files, entry.Name())
	}

	det := Score(files, table)
	primary := PrimaryLanguage(det, table.Priority)

	report := &Report{
		Path:           abs,
		ProjectName:    filepath.Base(abs),
		FilesFound:     files,
		Detected:       det,
		Standards:      StandardsFor(primary, table),
		MandatoryFiles: CheckMandatory(primary, files, table),
		TotalFiles:     len(files),
	}
	if primary != "" {
		report.PrimaryLanguage = &primary
		if m, ok := det.Get(primary); ok {
			report.Confidence = m.Confidence
		}
	}
	return report, nil
}
