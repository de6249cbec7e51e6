// Package suite loads test suites: named collections of categorized test
// cases declared in YAML. Built-in suites ship embedded in the binary;
// anything else is treated as a file path.
package suite

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/convocheck/internal/model"
)

//go:embed suites/smoke.yaml
var smokeSuiteYAML []byte

//go:embed suites/companion.yaml
var companionSuiteYAML []byte

var builtinSuites = map[string][]byte{
	"smoke":     smokeSuiteYAML,
	"companion": companionSuiteYAML,
}

// Suite is a versioned collection of test categories.
type Suite struct {
	Name       string     `yaml:"name"`
	Version    string     `yaml:"version,omitempty"`
	Categories []Category `yaml:"categories"`
}

// Category groups related test cases under a caller-assigned label. The
// aggregator reports per-category rollups using these names.
type Category struct {
	Name  string           `yaml:"name"`
	Cases []model.TestCase `yaml:"cases"`
}

// Load resolves a built-in suite by name, falling back to reading the
// argument as a YAML file path.
func Load(nameOrPath string) (*Suite, error) {
	if data, ok := builtinSuites[nameOrPath]; ok {
		return parse(data, nameOrPath)
	}

	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("suite %q: not a built-in and not readable: %w", nameOrPath, err)
	}
	return parse(data, nameOrPath)
}

func parse(data []byte, origin string) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite %q: %w", origin, err)
	}
	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("suite %q: %w", origin, err)
	}

	// Stamp the category onto each case so downstream consumers never
	// need the suite structure to classify an entry.
	for ci := range s.Categories {
		for i := range s.Categories[ci].Cases {
			if s.Categories[ci].Cases[i].Category == "" {
				s.Categories[ci].Cases[i].Category = s.Categories[ci].Name
			}
		}
	}

	return &s, nil
}

func validate(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("missing suite name")
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("no categories declared")
	}
	for _, cat := range s.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		for _, c := range cat.Cases {
			if c.Name == "" {
				return fmt.Errorf("category %q: case with empty name", cat.Name)
			}
			if c.Request.Method == "" || c.Request.Path == "" {
				return fmt.Errorf("case %q: request needs method and path", c.Name)
			}
		}
	}
	return nil
}

// List returns sorted names of all built-in suites.
func List() []string {
	names := make([]string, 0, len(builtinSuites))
	for name := range builtinSuites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cases returns the suite's cases flattened in declaration order.
func (s *Suite) Cases() []model.TestCase {
	var out []model.TestCase
	for _, cat := range s.Categories {
		out = append(out, cat.Cases...)
	}
	return out
}
