package snapshot

import (
	"context"
	"fmt"

	"github.com/goliatone/go-snapshot/pkg/activity"
)

// Actor identifies who asked for a hydration. It is copied onto activity
// events.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

type actorKey struct{}

// ContextWithActor attaches actor to ctx.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor attached by ContextWithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// ActivityHooks returns a copy of the hooks configured on h.
func (h *Hydrator) ActivityHooks() activity.Hooks {
	if h == nil {
		return nil
	}
	return activity.CloneHooks(h.hooks)
}

func newEmitter(cfg hydratorConfig) *activity.Emitter {
	config := activity.Config{Enabled: len(cfg.activityHooks) > 0}
	if cfg.activityConfig != nil {
		config = *cfg.activityConfig
	}
	return activity.NewEmitter(cfg.activityHooks, config)
}

func (h *Hydrator) eventInput(ctx context.Context, result HydrationResult) activity.SnapshotEventInput {
	actor, _ := ActorFromContext(ctx)
	input := activity.SnapshotEventInput{
		ActorID:       actor.ActorID,
		UserID:        actor.UserID,
		TenantID:      actor.TenantID,
		RunID:         result.Metadata.RunID,
		SourceVersion: result.Metadata.SourceVersion,
		TargetVersion: result.Metadata.TargetVersion,
		MigrationPath: result.Metadata.MigrationPath,
		Counts:        result.Metadata.Counts.asMap(),
		Warnings:      len(result.Warnings),
		Errors:        result.Errors,
		OccurredAt:    h.now(),
	}
	if result.Scene != nil {
		input.SceneGUID = result.Scene.GUID
	}
	if traceID := traceIDFrom(ctx); traceID != "" {
		input.Metadata = map[string]any{"trace_id": traceID}
	}
	return input
}

// emit never fails a hydration; hook errors are reported to the logger.
func (h *Hydrator) emit(ctx context.Context, runID string, event activity.Event) {
	if !h.emitter.Enabled() {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			h.log(LogEvent{RunID: runID, Stage: StageActivity, Err: fmt.Errorf("snapshot: activity hook panic: %v", recovered)})
		}
	}()
	if err := h.emitter.Emit(ctx, event); err != nil {
		h.log(LogEvent{RunID: runID, Stage: StageActivity, Err: err})
	}
}
