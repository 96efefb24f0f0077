// Package eval runs the small expressions declarative migration steps carry:
// preconditions, postconditions, field transforms and custom step bodies.
//
// Three engines are available. expr (github.com/expr-lang/expr) is the
// default, cel uses github.com/google/cel-go and js uses goja when the module
// is built with the js_eval tag. Every engine sees the same bindings: the
// top-level keys of Context.Data, the keys of Context.Vars, plus `data`,
// `vars` and `now`.
package eval

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

var (
	// ErrUnknownEngine is returned by New for unsupported engine names.
	ErrUnknownEngine = errors.New("eval: unknown engine")
	// ErrEngineUnavailable is returned when an engine was not compiled in.
	ErrEngineUnavailable = errors.New("eval: engine unavailable in this build")
)

// Context carries the inputs an expression is evaluated against.
type Context struct {
	Data map[string]any
	Vars map[string]any
	Now  *time.Time
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Data == nil {
		ctx.Data = map[string]any{}
	}
	if ctx.Vars == nil {
		ctx.Vars = map[string]any{}
	}
	return ctx
}

func (ctx Context) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

// bindings flattens the context into the variable set shared by all engines.
// Vars win over data keys with the same name.
func (ctx Context) bindings() map[string]any {
	out := make(map[string]any, len(ctx.Data)+len(ctx.Vars)+3)
	for key, value := range ctx.Data {
		out[key] = value
	}
	for key, value := range ctx.Vars {
		out[key] = value
	}
	out["data"] = ctx.Data
	out["vars"] = ctx.Vars
	out["now"] = ctx.timestamp()
	return out
}

// Evaluator executes expressions against a Context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

// Option configures an evaluator instance.
type Option func(*config)

type config struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// WithProgramCache wires a ProgramCache into the evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry functions to expressions. The
// registry is cloned so later registrations do not leak into the evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// New returns the evaluator registered under engine. An empty name selects
// the expr engine.
func New(engine string, opts ...Option) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(opts...), nil
	case EngineCEL:
		return NewCELEvaluator(opts...), nil
	case EngineJS:
		evaluator := NewJSEvaluator(opts...)
		if evaluator == nil {
			return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, EngineJS)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// EngineName reports the engine backing e.
func EngineName(e Evaluator) string {
	switch e.(type) {
	case *exprEvaluator:
		return EngineExpr
	case *celEvaluator:
		return EngineCEL
	case nil:
		return "unknown"
	}
	if jsEvaluatorAvailable() && isJSEvaluator(e) {
		return EngineJS
	}
	return fmt.Sprintf("%T", e)
}

// Bool evaluates expr and requires a boolean outcome.
func Bool(e Evaluator, ctx Context, expr string) (bool, error) {
	if e == nil {
		return false, errors.New("eval: evaluator is nil")
	}
	value, err := e.Evaluate(ctx, expr)
	if err != nil {
		return false, err
	}
	result, ok := value.(bool)
	if !ok {
		return false, failure(EngineName(e), PhaseResult, expr, fmt.Errorf("expected bool result, got %T", value))
	}
	return result, nil
}
