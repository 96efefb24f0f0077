package migration

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func appendTrail(label string) Step {
	return CustomStep("record "+label, func(d Data) (Data, error) {
		trail, _ := d["trail"].([]any)
		d["trail"] = append(trail, label)
		return d, nil
	})
}

func TestMigrateSnapshotAppliesPathInOrder(t *testing.T) {
	registry := NewRegistry()
	_ = registry.RegisterAll(
		Migration{From: "A", To: "B", Steps: []Step{appendTrail("B")}},
		Migration{From: "B", To: "C", Steps: []Step{appendTrail("C")}},
	)
	executor := NewExecutor(registry)

	input := Data{"schema": map[string]any{"version": "A"}}
	result := executor.MigrateSnapshot(context.Background(), input, "A", "C", MigrateOptions{})

	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if want := []string{"A->B", "B->C"}; !reflect.DeepEqual(want, result.Path) {
		t.Fatalf("path mismatch: %v", result.Path)
	}
	if want := []any{"B", "C"}; !reflect.DeepEqual(want, result.Data["trail"]) {
		t.Fatalf("expected B applied before C, got %v", result.Data["trail"])
	}
	if GetString(result.Data, VersionPath) != "C" {
		t.Fatalf("expected version stamped to C, got %q", GetString(result.Data, VersionPath))
	}
	if len(result.Warnings) != 2 || !strings.Contains(result.Warnings[0], "A->B") {
		t.Fatalf("expected one warning per migration, got %v", result.Warnings)
	}
	if len(result.Timings) != 2 {
		t.Fatalf("expected timings per migration, got %v", result.Timings)
	}
	if _, touched := input["trail"]; touched {
		t.Fatalf("input payload must not be mutated")
	}
	if GetString(input, VersionPath) != "A" {
		t.Fatalf("input version must not be mutated")
	}
}

func TestMigrateSnapshotIdentity(t *testing.T) {
	executor := NewExecutor(NewRegistry())
	input := Data{"scene": map[string]any{"name": "Demo"}}

	result := executor.MigrateSnapshot(context.Background(), input, "1.0.0", "1.0.0", MigrateOptions{})
	if !result.Success || len(result.Path) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected identity result, got %+v", result)
	}
	if !reflect.DeepEqual(input, result.Data) {
		t.Fatalf("expected equal copy, got %#v", result.Data)
	}
}

func TestMigrateSnapshotUnreachable(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(hop("A", "B"))
	result := NewExecutor(registry).MigrateSnapshot(context.Background(), Data{}, "A", "Z", MigrateOptions{})

	if result.Success {
		t.Fatalf("expected failure")
	}
	var pathErr *PathError
	if !errors.As(result.Err, &pathErr) {
		t.Fatalf("expected PathError, got %T", result.Err)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], `"A"`) || !strings.Contains(result.Errors[0], `"Z"`) {
		t.Fatalf("expected error naming both versions, got %v", result.Errors)
	}
}

func TestMigrateSnapshotAllOrNothing(t *testing.T) {
	thirdRan := false
	registry := NewRegistry()
	_ = registry.RegisterAll(
		Migration{From: "A", To: "B", Steps: []Step{appendTrail("B")}},
		Migration{From: "B", To: "C", Steps: []Step{
			appendTrail("C1"),
			{
				Kind:        StepCustom,
				Description: "second",
				Forward: func(d Data) (Data, error) {
					d["second"] = true
					return d, nil
				},
				Postcondition: Predicate("never", func(Data) bool { return false }),
			},
			CustomStep("third", func(d Data) (Data, error) {
				thirdRan = true
				return d, nil
			}),
		}},
	)

	input := Data{"trail": []any{}}
	result := NewExecutor(registry).MigrateSnapshot(context.Background(), input, "A", "C", MigrateOptions{})

	if result.Success {
		t.Fatalf("expected failure")
	}
	if thirdRan {
		t.Fatalf("third step must not run after a failed postcondition")
	}
	if result.Data != nil {
		t.Fatalf("expected no data on failure, got %#v", result.Data)
	}
	var stepErr *StepError
	if !errors.As(result.Err, &stepErr) {
		t.Fatalf("expected StepError, got %T", result.Err)
	}
	if stepErr.Index != 1 || stepErr.Phase != PhasePostcondition || stepErr.Migration != "B->C" {
		t.Fatalf("unexpected step error: %+v", stepErr)
	}
	if len(input["trail"].([]any)) != 0 {
		t.Fatalf("input must stay untouched, got %v", input["trail"])
	}
}

func TestApplyMigrationRecoversPanics(t *testing.T) {
	m := Migration{From: "A", To: "B", Steps: []Step{
		CustomStep("explode", func(Data) (Data, error) { panic("boom") }),
	}}
	data, err := NewExecutor(NewRegistry()).ApplyMigration(Data{}, m)
	if data != nil {
		t.Fatalf("expected nil data")
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Phase != PhaseForward || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected forward StepError carrying panic, got %v", err)
	}
}

func TestApplyMigrationPreconditionAborts(t *testing.T) {
	m := Migration{From: "A", To: "B", Steps: []Step{
		{Kind: StepAdd, Path: "scene.slug", Value: "", Pre: `scene.name != ""`},
	}}
	_, err := NewExecutor(NewRegistry()).ApplyMigration(Data{"scene": map[string]any{"name": ""}}, m)
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Phase != PhasePrecondition {
		t.Fatalf("expected precondition StepError, got %v", err)
	}
}

func TestDeclarativeStepsUseEvaluator(t *testing.T) {
	m := Migration{From: "1.0.0", To: "1.1.0", Steps: []Step{
		AddField("scene.slug", "", "add slug"),
		{Kind: StepTransform, Path: "scene.slug", Expr: `slug(scene.name)`, Post: `scene.slug == "my-demo"`},
		{Kind: StepTransform, Path: "scene.nodes.*.label", Expr: `lower(value)`},
		RemoveField("scene.legacy", "drop legacy"),
	}}
	input := Data{"scene": map[string]any{
		"name":   "My Demo",
		"legacy": true,
		"nodes":  []any{map[string]any{"label": "ONE"}, map[string]any{"label": "Two"}},
	}}

	out, err := NewExecutor(NewRegistry()).ApplyMigration(input, m)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	scene := out["scene"].(map[string]any)
	if scene["slug"] != "my-demo" {
		t.Fatalf("expected slug, got %#v", scene["slug"])
	}
	if _, ok := scene["legacy"]; ok {
		t.Fatalf("expected legacy removed")
	}
	nodes := scene["nodes"].([]any)
	if nodes[0].(map[string]any)["label"] != "one" || nodes[1].(map[string]any)["label"] != "two" {
		t.Fatalf("expected lowered labels, got %#v", nodes)
	}
}

func TestCustomExpressionMustReturnObject(t *testing.T) {
	m := Migration{From: "A", To: "B", Steps: []Step{{Kind: StepCustom, Expr: `1 + 1`}}}
	_, err := NewExecutor(NewRegistry()).ApplyMigration(Data{}, m)
	if err == nil || !strings.Contains(err.Error(), "must return an object") {
		t.Fatalf("expected object error, got %v", err)
	}
}

func TestRollbackMigrationDerivesInverse(t *testing.T) {
	m := Migration{From: "A", To: "B", Steps: []Step{
		RenameField("scene.nodes.*.id", "guid", "rename"),
		AddField("scene.contexts", []any{}, "add contexts"),
	}}
	executor := NewExecutor(NewRegistry())
	input := Data{"schema": map[string]any{"version": "A"}, "scene": map[string]any{"nodes": []any{map[string]any{"id": "n1"}}}}

	forward, err := executor.ApplyMigration(input, m)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	_ = Set(forward, VersionPath, "B")

	back, err := executor.RollbackMigration(forward, m)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if !reflect.DeepEqual(input, back) {
		t.Fatalf("rollback mismatch:\nwant: %#v\n got: %#v", input, back)
	}
}

func TestRollbackMigrationRejectsIrreversibleStep(t *testing.T) {
	m := Migration{From: "A", To: "B", Steps: []Step{RemoveField("scene.legacy", "drop")}}
	_, err := NewExecutor(NewRegistry()).RollbackMigration(Data{}, m)
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Phase != PhaseRollback {
		t.Fatalf("expected rollback StepError, got %v", err)
	}
}

func TestMigrateSnapshotHonoursCancellation(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(hop("A", "B"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewExecutor(registry).MigrateSnapshot(ctx, Data{}, "A", "B", MigrateOptions{})
	if result.Success || !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("expected cancellation failure, got %+v", result)
	}
}
