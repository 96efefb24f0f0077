package eval

import (
	"errors"
	"strings"
	"testing"
)

var evaluatorFactories = []struct {
	name string
	new  func(opts ...Option) Evaluator
}{
	{name: EngineExpr, new: NewExprEvaluator},
	{name: EngineCEL, new: NewCELEvaluator},
	{name: EngineJS, new: NewJSEvaluator},
}

func sampleData() map[string]any {
	return map[string]any{
		"schema": map[string]any{"version": "0.9.0"},
		"scene": map[string]any{
			"name":  "Demo",
			"nodes": []any{map[string]any{"id": "n1"}},
		},
	}
}

func TestConditionsAcrossEngines(t *testing.T) {
	cases := []struct {
		name string
		expr string
		want bool
	}{
		{name: "version matches", expr: `schema.version == "0.9.0"`, want: true},
		{name: "version differs", expr: `schema.version == "1.0.0"`, want: false},
		{name: "scene name", expr: `scene.name != ""`, want: true},
	}

	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new()
			if evaluator == nil {
				t.Skipf("%s engine not compiled in", factory.name)
			}
			for _, tc := range cases {
				tc := tc
				t.Run(tc.name, func(t *testing.T) {
					got, err := Bool(evaluator, Context{Data: sampleData()}, tc.expr)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if got != tc.want {
						t.Fatalf("expected %v, got %v", tc.want, got)
					}
				})
			}
		})
	}
}

func TestVarsShadowData(t *testing.T) {
	for _, factory := range evaluatorFactories {
		factory := factory
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new()
			if evaluator == nil {
				t.Skipf("%s engine not compiled in", factory.name)
			}
			ctx := Context{
				Data: sampleData(),
				Vars: map[string]any{"value": "n1"},
			}
			got, err := evaluator.Evaluate(ctx, `value + "-renamed"`)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "n1-renamed" {
				t.Fatalf("expected n1-renamed, got %#v", got)
			}
		})
	}
}

func TestCompiledRuleReusesCache(t *testing.T) {
	cache := NewMemoryCache()
	evaluator := NewExprEvaluator(WithProgramCache(cache))

	rule, err := evaluator.Compile(`schema.version == "0.9.0"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached program, got %d", cache.Len())
	}
	value, err := rule.Evaluate(Context{Data: sampleData()})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if value != true {
		t.Fatalf("expected true, got %#v", value)
	}
	if _, err := evaluator.Evaluate(Context{Data: sampleData()}, `schema.version == "0.9.0"`); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected cache hit, got %d programs", cache.Len())
	}
}

func TestBuiltinFunctionsExposedToExpr(t *testing.T) {
	evaluator := NewExprEvaluator(WithFunctionRegistry(BuiltinFunctions()))

	got, err := evaluator.Evaluate(Context{Data: sampleData()}, `slug(scene.name + " Scene")`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != "demo-scene" {
		t.Fatalf("expected demo-scene, got %#v", got)
	}

	got, err = evaluator.Evaluate(Context{}, `coalesce("", nil, "fallback")`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != "fallback" {
		t.Fatalf("expected fallback, got %#v", got)
	}
}

func TestBoolRejectsNonBoolean(t *testing.T) {
	_, err := Bool(NewExprEvaluator(), Context{Data: sampleData()}, `scene.name`)
	if err == nil {
		t.Fatalf("expected error for non-boolean result")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != EngineExpr || evalErr.Phase != PhaseResult {
		t.Fatalf("expected expr result failure, got %+v", evalErr)
	}
}

func TestNewResolvesEngines(t *testing.T) {
	if e, err := New(""); err != nil || EngineName(e) != EngineExpr {
		t.Fatalf("expected default expr engine, got %v / %v", e, err)
	}
	if e, err := New("CEL"); err != nil || EngineName(e) != EngineCEL {
		t.Fatalf("expected cel engine, got %v / %v", e, err)
	}
	if _, err := New("lua"); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
	if !jsEvaluatorAvailable() {
		if _, err := New(EngineJS); !errors.Is(err, ErrEngineUnavailable) {
			t.Fatalf("expected ErrEngineUnavailable, got %v", err)
		}
	}
}

func TestEmptyExpressionRejected(t *testing.T) {
	_, err := NewExprEvaluator().Evaluate(Context{}, "")
	if err == nil || !strings.HasPrefix(err.Error(), "eval:") {
		t.Fatalf("expected prefixed error, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Demo":            "demo",
		"  Hello World! ": "hello-world",
		"a--b__c":         "a-b-c",
		"":                "",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
