package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Strob0t/ContextForge/internal/domain"
)

// Parse decodes a rules file into a Table. Decoding walks the YAML node
// tree directly so the table keeps the file's declaration order; Go maps
// would discard it and make tie-breaking nondeterministic.
//
// The schema is validated strictly: unknown keys, duplicate languages and
// rules without file patterns are rejected, wrapping domain.ErrInvalidConfig.
func Parse(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse rules: empty document: %w", domain.ErrInvalidConfig)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse rules: top level must be a mapping: %w", domain.ErrInvalidConfig)
	}

	t := &Table{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "language_detection":
			if err := parseLanguages(t, val); err != nil {
				return nil, err
			}
		case "multi_language":
			if err := parsePriority(t, val); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("parse rules: unknown section %q (line %d): %w",
				key.Value, key.Line, domain.ErrInvalidConfig)
		}
	}
	return t, nil
}

func parseLanguages(t *Table, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("parse rules: language_detection must be a mapping: %w", domain.ErrInvalidConfig)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Value == "" {
			return fmt.Errorf("parse rules: empty language name (line %d): %w", key.Line, domain.ErrInvalidConfig)
		}
		if _, dup := t.Rule(key.Value); dup {
			return fmt.Errorf("parse rules: duplicate language %q (line %d): %w", key.Value, key.Line, domain.ErrInvalidConfig)
		}
		rule, err := parseRule(key.Value, val)
		if err != nil {
			return err
		}
		t.Rules = append(t.Rules, *rule)
	}
	return nil
}

func parseRule(lang string, node *yaml.Node) (*Rule, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse rules: language %q must be a mapping: %w", lang, domain.ErrInvalidConfig)
	}
	rule := &Rule{Language: lang}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var err error
		switch key.Value {
		case "description":
			err = val.Decode(&rule.Description)
		case "files":
			err = val.Decode(&rule.FilePatterns)
		case "mandatory_files":
			err = val.Decode(&rule.Mandatory)
		case "standards":
			err = val.Decode(&rule.Standards)
		default:
			return nil, fmt.Errorf("parse rules: language %q: unknown key %q (line %d): %w",
				lang, key.Value, key.Line, domain.ErrInvalidConfig)
		}
		if err != nil {
			return nil, fmt.Errorf("parse rules: language %q: %s: %w", lang, key.Value, err)
		}
	}
	if len(rule.FilePatterns) == 0 {
		return nil, fmt.Errorf("parse rules: language %q has no file patterns: %w", lang, domain.ErrInvalidConfig)
	}
	return rule, nil
}

func parsePriority(t *Table, node *yaml.Node) error {
	var section struct {
		PriorityOrder []string `yaml:"priority_order"`
	}
	if err := node.Decode(&section); err != nil {
		return fmt.Errorf("parse rules: multi_language: %w", err)
	}
	t.Priority = section.PriorityOrder
	return nil
}
