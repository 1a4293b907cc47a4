// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested path or document does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotADirectory indicates a scan target exists but is not a directory.
var ErrNotADirectory = errors.New("not a directory")

// ErrPermissionDenied indicates the process may not read the target.
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidConfig indicates a configuration or rules file failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")
