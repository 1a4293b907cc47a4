// Package registry builds the projects.yaml index that maps checkout
// directories to their detected project type.
package registry

import (
	"gopkg.in/yaml.v3"
)

// Unknown marks a directory no detection rule matched.
const Unknown = "unknown"

// Header precedes the YAML body in generated registry files.
const Header = "# Generated automatically - do not edit manually\n"

// Entry is one detected project.
type Entry struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// Index maps project names to entries. Nested projects use "parent/child"
// names.
type Index struct {
	Projects map[string]Entry `yaml:"projects"`
}

// Marshal renders the index as YAML, preceded by the generated-file header.
// yaml.v3 sorts map keys, which keeps output diffs stable.
func (i *Index) Marshal() ([]byte, error) {
	body, err := yaml.Marshal(i)
	if err != nil {
		return nil, err
	}
	return append([]byte(Header), body...), nil
}

// Parse reads a registry file produced by Marshal.
func Parse(data []byte) (*Index, error) {
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	if idx.Projects == nil {
		idx.Projects = map[string]Entry{}
	}
	return &idx, nil
}
