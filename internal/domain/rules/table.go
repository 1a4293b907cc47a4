// Package rules defines the language detection table and the filename
// pattern matching used to score projects against it.
package rules

// DefaultStandard is embedded in every generated context when no
// language-specific standards apply.
const DefaultStandard = "coding-standards/general-principles.md"

// keyFilePatterns are the project manifests that grant a single
// confidence boost when any scored file matches one of them.
var keyFilePatterns = []string{
	"package.json",
	"requirements.txt",
	"pubspec.yaml",
	"*.sln",
	"CMakeLists.txt",
}

// Rule describes how one language is detected and which standards apply to it.
type Rule struct {
	Language     string   // table key, e.g. "python"
	Description  string   // human-readable label for reports
	FilePatterns []string // filename patterns that count as evidence
	Mandatory    []string // files a conforming project must contain
	Standards    []string // standards documents, relative to the rules dir
}

// Table is the language detection table. Rules keep the declaration order
// of the rules file; that order breaks confidence ties deterministically.
type Table struct {
	Rules    []Rule
	Priority []string // multi_language priority order, highest first
}

// Rule returns the rule for a language, if present.
func (t *Table) Rule(lang string) (*Rule, bool) {
	for i := range t.Rules {
		if t.Rules[i].Language == lang {
			return &t.Rules[i], true
		}
	}
	return nil, false
}

// Empty reports whether the table has no rules. A nil table is empty.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rules) == 0
}

// IsKeyFile reports whether filename matches any key manifest pattern.
func IsKeyFile(filename string) bool {
	for _, p := range keyFilePatterns {
		if Matches(filename, p) {
			return true
		}
	}
	return false
}
