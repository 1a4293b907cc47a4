package scan

import (
	"github.com/Strob0t/ContextForge/internal/domain/rules"
)

// Confidence weights. These values are observable through the report
// contract and are pinned by tests.
const (
	matchWeight   = 0.3 // per matched file
	keyFileBoost  = 0.4 // granted at most once per language
	maxConfidence = 1.0
)

// Score evaluates file names against every rule in the table and returns
// the languages with at least one match. Patterns are tried in rule order
// and files in their sorted order, so matched_files is deterministic. A
// file matching several patterns of one language is counted once per
// pattern; the repeated evidence raises confidence on purpose.
func Score(files []string, table *rules.Table) *Detections {
	det := &Detections{}
	if table.Empty() {
		return det
	}
	for i := range table.Rules {
		rule := &table.Rules[i]
		var matched []string
		for _, pattern := range rule.FilePatterns {
			for _, f := range files {
				if rules.Matches(f, pattern) {
					matched = append(matched, f)
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		desc := rule.Description
		if desc == "" {
			desc = rule.Language + " project"
		}
		det.Add(rule.Language, LanguageMatch{
			Confidence:   confidence(matched),
			MatchedFiles: matched,
			Description:  desc,
		})
	}
	return det
}

// confidence converts a match set into a score: matchWeight per entry,
// capped, then keyFileBoost once if any entry is a key manifest, capped
// again.
func confidence(matched []string) float64 {
	c := matchWeight * float64(len(matched))
	if c > maxConfidence {
		c = maxConfidence
	}
	for _, f := range matched {
		if rules.IsKeyFile(f) {
			c += keyFileBoost
			break
		}
	}
	if c > maxConfidence {
		c = maxConfidence
	}
	return c
}
