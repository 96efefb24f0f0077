package migration

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the YAML representation of a set of declarative migrations.
type Catalog struct {
	Migrations []CatalogMigration `yaml:"migrations"`
}

// CatalogMigration describes one migration in a catalog file.
type CatalogMigration struct {
	From        string         `yaml:"from"`
	To          string         `yaml:"to"`
	Description string         `yaml:"description,omitempty"`
	Steps       []CatalogStep  `yaml:"steps"`
	Rollback    []CatalogStep  `yaml:"rollback,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
}

// CatalogStep describes one declarative step.
type CatalogStep struct {
	Kind        string `yaml:"kind"`
	Description string `yaml:"description,omitempty"`
	Path        string `yaml:"path,omitempty"`
	Target      string `yaml:"target,omitempty"`
	Value       any    `yaml:"value,omitempty"`
	Expr        string `yaml:"expr,omitempty"`
	Pre         string `yaml:"pre,omitempty"`
	Post        string `yaml:"post,omitempty"`
}

// LoadCatalogFile reads and parses a YAML catalog from path.
func LoadCatalogFile(path string) ([]Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("migration: read catalog %s: %w", path, err)
	}
	migrations, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return migrations, nil
}

// ParseCatalog parses YAML into migrations, validating every step.
func ParseCatalog(data []byte) ([]Migration, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("migration: parse catalog: %w", err)
	}

	out := make([]Migration, 0, len(catalog.Migrations))
	for i, cm := range catalog.Migrations {
		m, err := cm.build()
		if err != nil {
			return nil, fmt.Errorf("migration: catalog entry %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (cm CatalogMigration) build() (Migration, error) {
	from, to := strings.TrimSpace(cm.From), strings.TrimSpace(cm.To)
	if from == "" || to == "" {
		return Migration{}, ErrEmptyVersion
	}
	if len(cm.Steps) == 0 {
		return Migration{}, fmt.Errorf("%s has no steps", Key(from, to))
	}
	steps, err := buildSteps(cm.Steps)
	if err != nil {
		return Migration{}, fmt.Errorf("%s: %w", Key(from, to), err)
	}
	rollback, err := buildSteps(cm.Rollback)
	if err != nil {
		return Migration{}, fmt.Errorf("%s rollback: %w", Key(from, to), err)
	}
	return Migration{
		From:          from,
		To:            to,
		Description:   cm.Description,
		Steps:         steps,
		RollbackSteps: rollback,
		Metadata:      cm.Metadata,
	}, nil
}

func buildSteps(entries []CatalogStep) ([]Step, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	steps := make([]Step, 0, len(entries))
	for i, entry := range entries {
		step, err := entry.build()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (cs CatalogStep) build() (Step, error) {
	kind, err := ParseStepKind(cs.Kind)
	if err != nil {
		return Step{}, err
	}
	step := Step{
		Kind:        kind,
		Description: cs.Description,
		Path:        strings.TrimSpace(cs.Path),
		Target:      strings.TrimSpace(cs.Target),
		Value:       cs.Value,
		Expr:        strings.TrimSpace(cs.Expr),
		Pre:         strings.TrimSpace(cs.Pre),
		Post:        strings.TrimSpace(cs.Post),
	}

	switch kind {
	case StepAdd, StepRemove:
		if step.Path == "" {
			return Step{}, fmt.Errorf("%s step requires path", kind)
		}
	case StepRename:
		if step.Path == "" || step.Target == "" {
			return Step{}, fmt.Errorf("rename step requires path and target")
		}
	case StepTransform:
		if step.Path == "" || step.Expr == "" {
			return Step{}, fmt.Errorf("transform step requires path and expr")
		}
	case StepCustom:
		if step.Expr == "" {
			return Step{}, fmt.Errorf("custom step requires expr")
		}
	}
	if step.Path != "" {
		segments := SplitPath(step.Path)
		if len(segments) == 0 {
			return Step{}, fmt.Errorf("path %q has no keys", step.Path)
		}
		if segments[len(segments)-1] == wildcard {
			return Step{}, fmt.Errorf("path %q must end with a key", step.Path)
		}
	}
	return step, nil
}
