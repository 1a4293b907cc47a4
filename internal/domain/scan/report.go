// Package scan implements directory scanning, language detection scoring
// and the scan report returned to tool callers.
package scan

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LanguageMatch is one language's evidence within a scan.
type LanguageMatch struct {
	Confidence   float64  `json:"confidence"`
	MatchedFiles []string `json:"matched_files"`
	Description  string   `json:"description"`
}

// Detections maps language to its match evidence. It keeps the detection
// table's declaration order, which makes tie-breaking and JSON output
// deterministic; a plain map would lose both.
type Detections struct {
	langs   []string
	matches map[string]LanguageMatch
}

// Add records a language match. Re-adding a language overwrites its match
// without changing its position.
func (d *Detections) Add(lang string, m LanguageMatch) {
	if d.matches == nil {
		d.matches = make(map[string]LanguageMatch)
	}
	if _, ok := d.matches[lang]; !ok {
		d.langs = append(d.langs, lang)
	}
	d.matches[lang] = m
}

// Get returns the match for a language, if any.
func (d *Detections) Get(lang string) (LanguageMatch, bool) {
	m, ok := d.matches[lang]
	return m, ok
}

// Languages returns the detected languages in table declaration order.
func (d *Detections) Languages() []string {
	return d.langs
}

// Len returns the number of detected languages.
func (d *Detections) Len() int {
	return len(d.langs)
}

// MarshalJSON emits a JSON object with keys in declaration order.
func (d *Detections) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lang := range d.langs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(lang)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(d.matches[lang])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a Detections object, keeping the key order of the
// incoming document.
func (d *Detections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("detections: expected JSON object, got %v", tok)
	}
	d.langs = nil
	d.matches = make(map[string]LanguageMatch)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		lang, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("detections: expected string key, got %v", keyTok)
		}
		var m LanguageMatch
		if err := dec.Decode(&m); err != nil {
			return err
		}
		d.Add(lang, m)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MandatoryReport lists which of the primary language's required files are
// present in the scanned directory. With no primary language all lists are
// empty and AllPresent holds vacuously.
type MandatoryReport struct {
	Required   []string `json:"required"`
	Present    []string `json:"present"`
	Missing    []string `json:"missing"`
	AllPresent bool     `json:"all_present"`
}

// Report is the result of scanning one directory. Field names are part of
// the tool-facing contract and must not change.
type Report struct {
	Path            string           `json:"path"`
	ProjectName     string           `json:"project_name"`
	FilesFound      []string         `json:"files_found"`
	Detected        *Detections      `json:"detected_languages"`
	PrimaryLanguage *string          `json:"primary_language"`
	Confidence      float64          `json:"confidence"`
	Standards       []string         `json:"applicable_standards"`
	MandatoryFiles  *MandatoryReport `json:"mandatory_files"`
	TotalFiles      int              `json:"total_files"`
}

// Primary returns the primary language, or "" when none was detected.
func (r *Report) Primary() string {
	if r.PrimaryLanguage == nil {
		return ""
	}
	return *r.PrimaryLanguage
}

// ErrorReport is the failure shape surfaced to tool callers. A failed scan
// never exposes partial results, only the resolved path and the cause.
type ErrorReport struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewErrorReport builds the failure shape for a scan that could not run.
func NewErrorReport(path string, err error) *ErrorReport {
	return &ErrorReport{Path: path, Error: err.Error()}
}
