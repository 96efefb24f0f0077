package snapshot

import (
	"errors"
	"fmt"
	"strings"
)

// Reasons an individual entity is rejected. EntityError wraps one of them.
var (
	ErrNotObject          = errors.New("entry is not an object")
	ErrMissingGUID        = errors.New("missing guid")
	ErrMissingType        = errors.New("missing type")
	ErrDuplicateGUID      = errors.New("duplicate guid")
	ErrMissingEndpoint    = errors.New("missing source or target")
	ErrUnresolvedEndpoint = errors.New("endpoint references an unknown node")
	ErrNotArray           = errors.New("collection is not an array")
)

// InputShapeError reports a payload that is not an object.
type InputShapeError struct {
	Got string
	Err error
}

func (e *InputShapeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("snapshot: payload must be an object: %v", e.Err)
	}
	return fmt.Sprintf("snapshot: payload must be an object, got %s", e.Got)
}

func (e *InputShapeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SceneStageError reports that the scene object itself could not be built.
// It always aborts hydration with no entities.
type SceneStageError struct {
	Err error
}

func (e *SceneStageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("snapshot: scene stage: %v", e.Err)
}

func (e *SceneStageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EntityKind names the collection an entity belongs to.
type EntityKind string

const (
	KindNode    EntityKind = "node"
	KindEdge    EntityKind = "edge"
	KindContext EntityKind = "context"
)

// EntityError reports a single node, edge or context that failed to hydrate.
// Index is the position in the source collection, or -1 when the collection
// itself is malformed.
type EntityError struct {
	Kind  EntityKind
	Index int
	GUID  string
	Err   error
}

func (e *EntityError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("snapshot: ")
	if e.Index < 0 {
		fmt.Fprintf(&b, "%ss", e.Kind)
	} else {
		fmt.Fprintf(&b, "%s[%d]", e.Kind, e.Index)
	}
	if e.GUID != "" {
		fmt.Fprintf(&b, " %q", e.GUID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EntityError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Violation is one failed invariant found by the validation stage.
type Violation struct {
	Kind    EntityKind
	GUID    string
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.GUID == "" {
		return fmt.Sprintf("%s %s: %s", v.Kind, v.Field, v.Message)
	}
	return fmt.Sprintf("%s %q %s: %s", v.Kind, v.GUID, v.Field, v.Message)
}

// ValidationError collects every violation found by the validation stage.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch len(e.Violations) {
	case 0:
		return "snapshot: validation failed"
	case 1:
		return "snapshot: validation failed: " + e.Violations[0].String()
	default:
		return fmt.Sprintf("snapshot: validation failed: %s (and %d more)", e.Violations[0].String(), len(e.Violations)-1)
	}
}
