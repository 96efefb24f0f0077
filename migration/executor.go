package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-snapshot/eval"
	"github.com/goliatone/go-snapshot/layering"
)

// VersionPath is where the executor stamps the version after each migration.
const VersionPath = "schema.version"

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithEvaluator sets the engine used to compile declarative steps.
func WithEvaluator(evaluator eval.Evaluator) ExecutorOption {
	return func(x *Executor) {
		if evaluator != nil {
			x.evaluator = evaluator
		}
	}
}

// WithClock overrides the time source used for durations.
func WithClock(now func() time.Time) ExecutorOption {
	return func(x *Executor) {
		if now != nil {
			x.now = now
		}
	}
}

// Executor applies migrations resolved from a Registry.
type Executor struct {
	registry  *Registry
	evaluator eval.Evaluator
	now       func() time.Time
}

// NewExecutor constructs an executor over registry. Declarative steps are
// compiled with the expr engine, builtin functions and a program cache
// unless WithEvaluator says otherwise.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	x := &Executor{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(x)
		}
	}
	if x.evaluator == nil {
		x.evaluator = eval.NewExprEvaluator(
			eval.WithFunctionRegistry(eval.BuiltinFunctions()),
			eval.WithProgramCache(eval.NewMemoryCache()),
		)
	}
	return x
}

// Registry returns the registry the executor resolves paths from.
func (x *Executor) Registry() *Registry {
	return x.registry
}

// MigrateOptions tunes a MigrateSnapshot call.
type MigrateOptions struct {
	// Vars are extra bindings visible to declarative step expressions.
	Vars map[string]any
}

// Timing records how long one migration took.
type Timing struct {
	Migration string
	Duration  time.Duration
}

// Result is the outcome of MigrateSnapshot. Data is nil unless Success.
type Result struct {
	Success  bool
	Data     Data
	Warnings []string
	Errors   []string
	Err      error
	Path     []string
	Duration time.Duration
	Timings  []Timing
}

// ApplyMigration runs m's steps in order against a copy of data. On failure
// it returns a *StepError and no data; data itself is never modified.
func (x *Executor) ApplyMigration(data Data, m Migration) (Data, error) {
	working := layering.CloneMap(data)
	if working == nil {
		working = Data{}
	}
	return x.applyMigration(working, m, nil)
}

// MigrateSnapshot moves data from one version to another along the shortest
// registered path. Every migration on the path commits, or none does.
func (x *Executor) MigrateSnapshot(ctx context.Context, data Data, from, to string, opts MigrateOptions) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	start := x.now()
	working := layering.CloneMap(data)
	if working == nil {
		working = Data{}
	}

	if from == to {
		return Result{
			Success:  true,
			Data:     working,
			Path:     []string{},
			Duration: x.now().Sub(start),
		}
	}

	path := x.registry.FindPath(from, to)
	if len(path) == 0 {
		err := &PathError{From: from, To: to}
		return Result{
			Errors:   []string{err.Error()},
			Err:      err,
			Duration: x.now().Sub(start),
		}
	}

	result := Result{Path: PathKeys(path)}
	fail := func(err error) Result {
		result.Success = false
		result.Data = nil
		result.Err = err
		result.Errors = append(result.Errors, err.Error())
		result.Duration = x.now().Sub(start)
		return result
	}

	for _, m := range path {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("migration: %s: %w", m.Key(), err))
		}
		began := x.now()
		next, err := x.applyMigration(working, m, opts.Vars)
		if err != nil {
			return fail(err)
		}
		if err := Set(next, VersionPath, m.To); err != nil {
			return fail(fmt.Errorf("migration: stamp version for %s: %w", m.Key(), err))
		}
		working = next
		result.Timings = append(result.Timings, Timing{Migration: m.Key(), Duration: x.now().Sub(began)})
		result.Warnings = append(result.Warnings, describeApplied(m))
	}

	result.Success = true
	result.Data = working
	result.Duration = x.now().Sub(start)
	return result
}

// RollbackMigration reverses m on a copy of data. RollbackSteps run in
// declared order when present; otherwise each step's rollback runs in reverse
// order, derived from the tagged fields when no Rollback function is set.
func (x *Executor) RollbackMigration(data Data, m Migration) (Data, error) {
	working := layering.CloneMap(data)
	if working == nil {
		working = Data{}
	}

	var err error
	if len(m.RollbackSteps) > 0 {
		working, err = x.applyMigration(working, Migration{From: m.To, To: m.From, Steps: m.RollbackSteps}, nil)
		if err != nil {
			return nil, err
		}
	} else {
		for i := len(m.Steps) - 1; i >= 0; i-- {
			step := m.Steps[i]
			rollback, derr := x.rollbackFor(step)
			if derr != nil {
				return nil, &StepError{Migration: m.Key(), Index: i, Kind: step.Kind, Description: step.Label(), Phase: PhaseRollback, Err: derr}
			}
			working, err = x.applyStep(working, m.Key(), i, Step{Kind: step.Kind, Description: step.Description, Forward: rollback}, nil)
			if err != nil {
				var stepErr *StepError
				if errors.As(err, &stepErr) {
					stepErr.Phase = PhaseRollback
				}
				return nil, err
			}
		}
	}
	if err := Set(working, VersionPath, m.From); err != nil {
		return nil, err
	}
	return working, nil
}

func (x *Executor) applyMigration(data Data, m Migration, vars map[string]any) (Data, error) {
	current := data
	for i, step := range m.Steps {
		next, err := x.applyStep(current, m.Key(), i, step, vars)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func (x *Executor) applyStep(data Data, key string, index int, step Step, vars map[string]any) (out Data, err error) {
	phase := PhasePrecondition
	fail := func(cause error) error {
		return &StepError{
			Migration:   key,
			Index:       index,
			Kind:        step.Kind,
			Description: step.Label(),
			Phase:       phase,
			Err:         cause,
		}
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			out = nil
			err = fail(fmt.Errorf("panic: %v", recovered))
		}
	}()

	for _, check := range x.conditions(step.Precondition, step.Pre, vars) {
		if cerr := check(data); cerr != nil {
			return nil, fail(cerr)
		}
	}

	phase = PhaseForward
	forward := step.Forward
	if forward == nil {
		forward, err = x.compileForward(step, vars)
		if err != nil {
			return nil, fail(err)
		}
	}
	next, ferr := forward(data)
	if ferr != nil {
		return nil, fail(ferr)
	}
	if next == nil {
		return nil, fail(errors.New("forward returned no data"))
	}

	phase = PhasePostcondition
	for _, check := range x.conditions(step.Postcondition, step.Post, vars) {
		if cerr := check(next); cerr != nil {
			return nil, fail(cerr)
		}
	}
	return next, nil
}

func (x *Executor) conditions(fn Condition, expr string, vars map[string]any) []Condition {
	var out []Condition
	if fn != nil {
		out = append(out, fn)
	}
	if strings.TrimSpace(expr) != "" {
		out = append(out, exprCondition(x.evaluator, expr, vars))
	}
	return out
}

// ExprCondition adapts a boolean expression into a Condition.
func ExprCondition(evaluator eval.Evaluator, expr string) Condition {
	return exprCondition(evaluator, expr, nil)
}

func exprCondition(evaluator eval.Evaluator, expr string, vars map[string]any) Condition {
	return func(data Data) error {
		ok, err := eval.Bool(evaluator, eval.Context{Data: data, Vars: vars}, expr)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("condition not met: %s", expr)
		}
		return nil
	}
}

func (x *Executor) compileForward(step Step, vars map[string]any) (Func, error) {
	needPath := func() error {
		if strings.TrimSpace(step.Path) == "" {
			return fmt.Errorf("%s step requires a path", step.Kind)
		}
		return nil
	}
	needExpr := func() error {
		if strings.TrimSpace(step.Expr) == "" {
			return fmt.Errorf("%s step requires an expression", step.Kind)
		}
		return nil
	}

	switch step.Kind {
	case StepAdd:
		if err := needPath(); err != nil {
			return nil, err
		}
		return func(data Data) (Data, error) {
			return data, Walk(data, step.Path, func(parent map[string]any, key string) error {
				if _, ok := parent[key]; !ok {
					parent[key] = layering.Clone(step.Value)
				}
				return nil
			})
		}, nil
	case StepRemove:
		if err := needPath(); err != nil {
			return nil, err
		}
		return func(data Data) (Data, error) {
			return data, Walk(data, step.Path, func(parent map[string]any, key string) error {
				delete(parent, key)
				return nil
			})
		}, nil
	case StepRename:
		if err := needPath(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(step.Target) == "" {
			return nil, errors.New("rename step requires a target")
		}
		return renameFunc(step.Path, step.Target), nil
	case StepTransform:
		if err := needPath(); err != nil {
			return nil, err
		}
		if err := needExpr(); err != nil {
			return nil, err
		}
		return func(data Data) (Data, error) {
			return data, Walk(data, step.Path, func(parent map[string]any, key string) error {
				current, ok := parent[key]
				if !ok {
					return nil
				}
				bindings := map[string]any{"value": current, "parent": parent}
				for k, v := range vars {
					if _, reserved := bindings[k]; !reserved {
						bindings[k] = v
					}
				}
				next, err := x.evaluator.Evaluate(eval.Context{Data: data, Vars: bindings}, step.Expr)
				if err != nil {
					return err
				}
				parent[key] = next
				return nil
			})
		}, nil
	case StepCustom:
		if err := needExpr(); err != nil {
			return nil, err
		}
		return func(data Data) (Data, error) {
			value, err := x.evaluator.Evaluate(eval.Context{Data: data, Vars: vars}, step.Expr)
			if err != nil {
				return nil, err
			}
			next, ok := value.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("custom step must return an object, got %T", value)
			}
			return next, nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported step kind %s", step.Kind)
	}
}

func (x *Executor) rollbackFor(step Step) (Func, error) {
	if step.Rollback != nil {
		return step.Rollback, nil
	}
	switch step.Kind {
	case StepAdd:
		path := step.Path
		return func(data Data) (Data, error) {
			return data, Walk(data, path, func(parent map[string]any, key string) error {
				delete(parent, key)
				return nil
			})
		}, nil
	case StepRename:
		segments := SplitPath(step.Path)
		if len(segments) == 0 {
			return nil, errors.New("rename step requires a path")
		}
		original := segments[len(segments)-1]
		segments[len(segments)-1] = step.Target
		return renameFunc(strings.Join(segments, "."), original), nil
	default:
		return nil, fmt.Errorf("%s step %q has no rollback", step.Kind, step.Label())
	}
}

func renameFunc(path, target string) Func {
	return func(data Data) (Data, error) {
		return data, Walk(data, path, func(parent map[string]any, key string) error {
			value, ok := parent[key]
			if !ok || key == target {
				return nil
			}
			if _, exists := parent[target]; !exists {
				parent[target] = value
			}
			delete(parent, key)
			return nil
		})
	}
}

func describeApplied(m Migration) string {
	if m.Description == "" {
		return fmt.Sprintf("applied migration %s", m.Key())
	}
	return fmt.Sprintf("applied migration %s: %s", m.Key(), m.Description)
}
