package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Strob0t/ContextForge/internal/domain/rules"
	"github.com/Strob0t/ContextForge/internal/domain/scan"
)

// DetectType classifies a checkout directory by the files found in its
// first two levels, using the same scorer as a project scan. Hidden files
// and directories are skipped. Returns Unknown when nothing matches.
func DetectType(dir string, table *rules.Table) string {
	if table.Empty() {
		return Unknown
	}
	files := collectFiles(dir, 2)
	det := scan.Score(files, table)
	if lang := scan.PrimaryLanguage(det, table.Priority); lang != "" {
		return lang
	}
	return Unknown
}

// collectFiles gathers regular file names down to the given depth. Errors
// reading a directory simply truncate the listing.
func collectFiles(dir string, depth int) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case e.IsDir():
			if depth > 1 {
				files = append(files, collectFiles(filepath.Join(dir, name), depth-1)...)
			}
		case e.Type().IsRegular():
			files = append(files, name)
		}
	}
	return files
}
