package snapshot

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-snapshot/pkg/activity"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestHydrateEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	h := New(WithActivityHooks(activity.Hooks{capture}))

	ctx := ContextWithActor(context.Background(), Actor{ActorID: "actor-1", TenantID: "tenant-1"})
	result := h.Hydrate(ctx, loadSnapshot(t, "legacy_v090.json"), DefaultHydrationOptions())
	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}

	want := []string{activity.VerbSnapshotMigrated, activity.VerbSnapshotHydrated}
	if got := capture.Verbs(); !reflect.DeepEqual(want, got) {
		t.Fatalf("expected verbs %v, got %v", want, got)
	}
	event := capture.Events[1]
	if event.ActorID != "actor-1" || event.TenantID != "tenant-1" {
		t.Fatalf("expected actor copied onto the event, got %+v", event)
	}
	if event.ObjectType != activity.ObjectTypeScene || event.ObjectID != "scene-legacy" {
		t.Fatalf("unexpected object %s/%s", event.ObjectType, event.ObjectID)
	}
	if event.Channel != activity.DefaultChannel {
		t.Fatalf("expected default channel, got %q", event.Channel)
	}
}

func TestHydrateEmitsFailure(t *testing.T) {
	capture := &activity.CaptureHook{}
	h := New(WithActivityHooks(activity.Hooks{capture}))

	h.Hydrate(context.Background(), []any{}, DefaultHydrationOptions())

	if got := capture.Verbs(); len(got) != 1 || got[0] != activity.VerbSnapshotHydrationFailed {
		t.Fatalf("expected a failure event, got %v", got)
	}
	if capture.Events[0].Metadata["error"] == nil {
		t.Fatalf("expected the error in event metadata")
	}
}

func TestHydrateAttachesTraceID(t *testing.T) {
	capture := &activity.CaptureHook{}
	provider := sdktrace.NewTracerProvider()
	h := New(WithActivityHooks(activity.Hooks{capture}), WithTracerProvider(provider))

	h.Hydrate(context.Background(), loadSnapshot(t, "board_v100.json"), DefaultHydrationOptions())

	if len(capture.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(capture.Events))
	}
	if id, _ := capture.Events[0].Metadata["trace_id"].(string); len(id) != 32 {
		t.Fatalf("expected a trace id, got %v", capture.Events[0].Metadata["trace_id"])
	}
}

func TestHookFailuresDoNotFailHydration(t *testing.T) {
	log := &eventLog{}
	hooks := activity.Hooks{
		activity.HookFunc(func(context.Context, activity.Event) error { return errors.New("sink down") }),
		activity.HookFunc(func(context.Context, activity.Event) error { panic("boom") }),
	}
	h := New(WithActivityHooks(hooks), WithLogger(log))

	result := h.Hydrate(context.Background(), loadSnapshot(t, "board_v100.json"), DefaultHydrationOptions())
	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	found := false
	for _, event := range log.events {
		if event.Stage == StageActivity && event.Err != nil {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected hook failure logged")
	}
}

func TestActivityDisabledByConfig(t *testing.T) {
	capture := &activity.CaptureHook{}
	h := New(WithActivityHooks(activity.Hooks{capture}), WithActivityConfig(activity.Config{Enabled: false}))

	h.Hydrate(context.Background(), loadSnapshot(t, "board_v100.json"), DefaultHydrationOptions())
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(capture.Events))
	}
	if len(h.ActivityHooks()) != 1 {
		t.Fatalf("expected hooks retained")
	}
}
