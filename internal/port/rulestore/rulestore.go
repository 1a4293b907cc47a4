// Package rulestore defines the port interface for loading the detection
// table and the standards documents it references.
package rulestore

import (
	"context"

	"github.com/Strob0t/ContextForge/internal/domain/rules"
)

// Source serves the detection table and standards documents.
type Source interface {
	// Table returns the detection table. Implementations degrade to an
	// empty table instead of failing a scan; the error reports why.
	Table(ctx context.Context) (*rules.Table, error)

	// ReadDocument returns a standards document by its table-relative name,
	// e.g. "coding-standards/python.md".
	ReadDocument(ctx context.Context, name string) (string, error)

	// Root returns the resolved rules directory, or "" when the source is
	// serving embedded defaults.
	Root() string
}
