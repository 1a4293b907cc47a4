package scan

import (
	"github.com/Strob0t/ContextForge/internal/domain/rules"
)

// StandardsFor returns the standards documents applicable to a primary
// language. Unknown languages and the no-language case fall back to the
// default standard, so the list is never empty.
func StandardsFor(lang string, table *rules.Table) []string {
	if lang == "" || table.Empty() {
		return []string{rules.DefaultStandard}
	}
	rule, ok := table.Rule(lang)
	if !ok || len(rule.Standards) == 0 {
		return []string{rules.DefaultStandard}
	}
	out := make([]string, len(rule.Standards))
	copy(out, rule.Standards)
	return out
}

// CheckMandatory reports which of the primary language's required files
// exist in the scanned file set. Order follows the rule's mandatory list.
// With no primary language the report is empty and vacuously satisfied.
func CheckMandatory(lang string, files []string, table *rules.Table) *MandatoryReport {
	rep := &MandatoryReport{
		Required:   []string{},
		Present:    []string{},
		Missing:    []string{},
		AllPresent: true,
	}
	if lang == "" || table.Empty() {
		return rep
	}
	rule, ok := table.Rule(lang)
	if !ok {
		return rep
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}
	for _, req := range rule.Mandatory {
		rep.Required = append(rep.Required, req)
		if present[req] {
			rep.Present = append(rep.Present, req)
		} else {
			rep.Missing = append(rep.Missing, req)
		}
	}
	rep.AllPresent = len(rep.Missing) == 0
	return rep
}
