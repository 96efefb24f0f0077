package migration

import (
	"fmt"
	"strings"
)

// Data is the untyped payload migrations operate on.
type Data = map[string]any

// Func transforms data and returns the authoritative new state.
type Func func(Data) (Data, error)

// Condition validates data; a nil error means the condition holds.
type Condition func(Data) error

// StepKind tags the operation a Step performs.
type StepKind int

const (
	StepTransform StepKind = iota
	StepAdd
	StepRemove
	StepRename
	StepCustom
)

func (k StepKind) String() string {
	switch k {
	case StepTransform:
		return "transform"
	case StepAdd:
		return "add"
	case StepRemove:
		return "remove"
	case StepRename:
		return "rename"
	case StepCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseStepKind converts a kind name into a StepKind.
func ParseStepKind(value string) (StepKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "transform":
		return StepTransform, nil
	case "add":
		return StepAdd, nil
	case "remove":
		return StepRemove, nil
	case "rename":
		return StepRename, nil
	case "custom":
		return StepCustom, nil
	default:
		return 0, fmt.Errorf("migration: unknown step kind %q", value)
	}
}

// MarshalText renders the kind name.
func (k StepKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *StepKind) UnmarshalText(text []byte) error {
	parsed, err := ParseStepKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Step is one atomic transformation. Function fields win over the
// declarative ones when both are present.
type Step struct {
	Kind        StepKind
	Description string

	// Path is a dotted path where "*" expands every element of a list,
	// e.g. "scene.nodes.*.id".
	Path string
	// Target is the new key name for StepRename.
	Target string
	// Value is the default inserted by StepAdd.
	Value any
	// Expr is evaluated by StepTransform (per matched value, bound as
	// `value`) and StepCustom (against the whole payload).
	Expr string
	// Pre and Post are boolean expressions checked around Forward.
	Pre  string
	Post string

	Forward       Func
	Rollback      Func
	Precondition  Condition
	Postcondition Condition
}

// Label identifies the step in errors and logs.
func (s Step) Label() string {
	if s.Description != "" {
		return s.Description
	}
	if s.Path != "" {
		return fmt.Sprintf("%s %s", s.Kind, s.Path)
	}
	return s.Kind.String()
}

// Migration is a directed edge in the version graph.
type Migration struct {
	From          string
	To            string
	Description   string
	Steps         []Step
	RollbackSteps []Step
	Metadata      map[string]any
}

// Key returns the registry key "{from}->{to}".
func (m Migration) Key() string {
	return Key(m.From, m.To)
}

// Key formats the registry key for a version pair.
func Key(from, to string) string {
	return from + "->" + to
}

// Predicate adapts a boolean check into a Condition that reports desc on
// failure.
func Predicate(desc string, fn func(Data) bool) Condition {
	return func(data Data) error {
		if fn == nil || fn(data) {
			return nil
		}
		return fmt.Errorf("condition not met: %s", desc)
	}
}

// AddField inserts value at path wherever the key is missing.
func AddField(path string, value any, description string) Step {
	return Step{Kind: StepAdd, Path: path, Value: value, Description: description}
}

// RemoveField deletes path.
func RemoveField(path string, description string) Step {
	return Step{Kind: StepRemove, Path: path, Description: description}
}

// RenameField moves the last key of path to target, keeping an existing
// target value when both are present.
func RenameField(path, target, description string) Step {
	return Step{Kind: StepRename, Path: path, Target: target, Description: description}
}

// TransformField replaces each value matched by path with fn(value).
func TransformField(path, description string, fn func(any) (any, error)) Step {
	return Step{
		Kind:        StepTransform,
		Path:        path,
		Description: description,
		Forward: func(data Data) (Data, error) {
			err := Walk(data, path, func(parent map[string]any, key string) error {
				current, ok := parent[key]
				if !ok {
					return nil
				}
				next, err := fn(current)
				if err != nil {
					return err
				}
				parent[key] = next
				return nil
			})
			return data, err
		},
	}
}

// CustomStep wraps an arbitrary Go transformation.
func CustomStep(description string, fn Func) Step {
	return Step{Kind: StepCustom, Description: description, Forward: fn}
}
