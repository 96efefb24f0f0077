package eval

import (
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...Option) Evaluator {
	cfg := applyOptions(opts)
	return &celEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *celEvaluator) Evaluate(ctx Context, expression string) (any, error) {
	if expression == "" {
		return nil, failure(EngineCEL, PhaseCompile, "", ErrEmptyExpression)
	}
	ctx = ctx.withDefaults()
	bindings := ctx.bindings()
	program, err := e.loadOrCompile(expression, bindings)
	if err != nil {
		return nil, failure(EngineCEL, PhaseCompile, expression, err)
	}
	out, _, err := program.program.Eval(e.activation(bindings))
	if err != nil {
		return nil, failure(EngineCEL, PhaseRun, expression, err)
	}
	return out.Value(), nil
}

// Compile defers program construction to evaluation time because the CEL
// environment declares one variable per binding key.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, failure(EngineCEL, PhaseCompile, "", ErrEmptyExpression)
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, bindings map[string]any) (*celProgram, error) {
	names := make([]string, 0, len(bindings))
	for key := range bindings {
		names = append(names, key)
	}
	sort.Strings(names)
	cacheKey := EngineCEL + ":" + expression + "|" + strings.Join(names, ",")

	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(names)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(names []string) (*celgo.Env, error) {
	opts := make([]celgo.EnvOption, 0, len(names)+1)
	for _, name := range names {
		if name == "now" {
			opts = append(opts, celgo.Variable(name, celgo.TimestampType))
			continue
		}
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload(
			"call_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType},
			celgo.DynType,
			celgo.FunctionBinding(e.callBinding()),
		)))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(bindings map[string]any) map[string]any {
	activation := make(map[string]any, len(bindings))
	for key, value := range bindings {
		activation[key] = value
	}
	return activation
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx Context) (any, error) {
	if r.evaluator == nil {
		return nil, failure(EngineCEL, PhaseRun, "", ErrDetachedRule)
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

func (e *celEvaluator) callBinding() functions.FunctionOp {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("eval: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("eval: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
