package model

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Durations appear in suite files as strings ("2s", "500ms"). yaml.v3 does
// not decode those into time.Duration, so Request and Predicate unmarshal
// through alias structs and parse by hand.

type requestYAML struct {
	Method   string            `yaml:"method"`
	Path     string            `yaml:"path"`
	Encoding Encoding          `yaml:"encoding"`
	Body     map[string]any    `yaml:"body"`
	Query    map[string]string `yaml:"query"`
	Headers  map[string]string `yaml:"headers"`
	Timeout  string            `yaml:"timeout"`
}

func (r *Request) UnmarshalYAML(node *yaml.Node) error {
	var raw requestYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*r = Request{
		Method:   raw.Method,
		Path:     raw.Path,
		Encoding: raw.Encoding,
		Body:     raw.Body,
		Query:    raw.Query,
		Headers:  raw.Headers,
	}

	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("request timeout %q: %w", raw.Timeout, err)
		}
		r.Timeout = d
	}

	return nil
}

type predicateYAML struct {
	Kind          PredicateKind `yaml:"kind"`
	Field         string        `yaml:"field"`
	Value         string        `yaml:"value"`
	Values        []string      `yaml:"values"`
	Statuses      []int         `yaml:"statuses"`
	Min           int           `yaml:"min"`
	Under         string        `yaml:"under"`
	Informational bool          `yaml:"informational"`
}

func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	var raw predicateYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Kind == "" {
		return fmt.Errorf("predicate is missing kind")
	}

	*p = Predicate{
		Kind:          raw.Kind,
		Field:         raw.Field,
		Value:         raw.Value,
		Values:        raw.Values,
		Statuses:      raw.Statuses,
		Min:           raw.Min,
		Informational: raw.Informational,
	}

	if raw.Under != "" {
		d, err := time.ParseDuration(raw.Under)
		if err != nil {
			return fmt.Errorf("predicate %s: under %q: %w", raw.Kind, raw.Under, err)
		}
		p.Under = d
	}

	return nil
}
