package rules

import (
	"path"
	"strings"
)

// Matches reports whether filename matches a detection pattern.
// A pattern without '*' must equal the filename exactly. A pattern of the
// form "*.ext" (no further wildcards) matches by suffix, so "*.tar.gz"
// behaves as expected. Any other '*'-bearing pattern uses shell glob
// semantics; a malformed glob matches nothing.
func Matches(filename, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return filename == pattern
	}
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok && !strings.ContainsAny(suffix, "*?[") {
		return strings.HasSuffix(filename, "."+suffix)
	}
	ok, err := path.Match(pattern, filename)
	return err == nil && ok
}
