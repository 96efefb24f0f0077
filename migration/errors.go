package migration

import (
	"errors"
	"fmt"
)

// ErrEmptyVersion rejects migrations without both endpoints.
var ErrEmptyVersion = errors.New("migration: from and to versions are required")

// PathError reports that no chain of registered migrations connects two
// versions.
type PathError struct {
	From string
	To   string
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("migration: no migration path from %q to %q", e.From, e.To)
}

// Phase names the point of a step where it failed.
type Phase string

const (
	PhasePrecondition  Phase = "precondition"
	PhaseForward       Phase = "forward"
	PhasePostcondition Phase = "postcondition"
	PhaseRollback      Phase = "rollback"
)

// StepError reports a failed step. Any StepError aborts the whole migration
// call it happened in.
type StepError struct {
	Migration   string
	Index       int
	Kind        StepKind
	Description string
	Phase       Phase
	Err         error
}

func (e *StepError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("migration: %s step %d (%s %q) failed at %s: %v",
		e.Migration, e.Index+1, e.Kind, e.Description, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
