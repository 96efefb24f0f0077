package eval

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyExpression = errors.New("expression must not be empty")
	// ErrDetachedRule is returned by a CompiledRule built outside its
	// evaluator.
	ErrDetachedRule = errors.New("compiled rule has no evaluator")
)

// Phase says where an expression failed.
type Phase string

const (
	PhaseCompile Phase = "compile"
	PhaseRun     Phase = "run"
	// PhaseResult means the expression ran but produced a value of the
	// wrong type.
	PhaseResult Phase = "result"
)

// EvaluationError reports a failed expression together with the engine and
// phase it failed in.
type EvaluationError struct {
	Engine string
	Phase  Phase
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	expr := "<empty>"
	if e.Expr != "" {
		expr = fmt.Sprintf("%q", e.Expr)
	}
	return fmt.Sprintf("eval: %s %s %s: %v", e.Engine, e.Phase, expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// failure wraps err in an EvaluationError. An err that already carries one
// is returned unchanged so the innermost phase wins.
func failure(engine string, phase Phase, expr string, err error) error {
	if err == nil {
		return nil
	}
	var existing *EvaluationError
	if errors.As(err, &existing) {
		return err
	}
	return &EvaluationError{Engine: engine, Phase: phase, Expr: expr, Err: err}
}
