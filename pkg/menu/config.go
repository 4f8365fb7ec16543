package menu

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMenu is returned when a loaded menu table violates its structure.
var ErrInvalidMenu = errors.New("invalid menu")

// Load reads and validates a YAML menu table from path.
func Load(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load menu %q: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load menu %q: %w", path, err)
	}

	return m, nil
}

// Parse decodes and validates a YAML menu table.
func Parse(data []byte) (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks that every item is either a leaf or a parent, that labels
// are present and unique at the top level, and that paths are absolute.
func (m *Menu) Validate() error {
	var problems []string

	seen := make(map[string]bool, len(m.Items))
	for i, item := range m.Items {
		if item.Label == "" {
			problems = append(problems, fmt.Sprintf("item %d: missing label", i))
		}
		if seen[item.Label] {
			problems = append(problems, fmt.Sprintf("item %q: duplicate label", item.Label))
		}
		seen[item.Label] = true

		switch {
		case item.Path != "" && item.HasSubItems():
			problems = append(problems, fmt.Sprintf("item %q: both path and sub-items set", item.Label))
		case item.Path == "" && !item.HasSubItems():
			problems = append(problems, fmt.Sprintf("item %q: neither path nor sub-items set", item.Label))
		case item.Path != "" && !strings.HasPrefix(item.Path, "/"):
			problems = append(problems, fmt.Sprintf("item %q: path %q is not absolute", item.Label, item.Path))
		}

		for j, s := range item.SubItems {
			if s.Label == "" {
				problems = append(problems, fmt.Sprintf("item %q: sub-item %d missing label", item.Label, j))
			}
			if !strings.HasPrefix(s.Path, "/") {
				problems = append(problems, fmt.Sprintf("item %q: sub-item path %q is not absolute", item.Label, s.Path))
			}
		}
	}

	for i, u := range m.UserItems {
		if u.Label == "" {
			problems = append(problems, fmt.Sprintf("user item %d: missing label", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMenu, strings.Join(problems, "; "))
	}

	return nil
}
