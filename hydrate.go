package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-snapshot/migration"
	"github.com/goliatone/go-snapshot/pkg/activity"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Hydrator migrates snapshots to its target version and hydrates them into
// scene entities. A Hydrator is safe for concurrent use; registering
// migrations while calls are in flight is supported but each call resolves
// its migration path once.
type Hydrator struct {
	registry      *migration.Registry
	executor      *migration.Executor
	target        string
	logger        Logger
	tracer        trace.Tracer
	hooks         activity.Hooks
	emitter       *activity.Emitter
	sceneDefaults map[string]any
	decoders      decoders
	cache         *resultCache
	now           func() time.Time
}

// New builds a Hydrator. Without options it targets migration.CurrentVersion
// using a fresh migration.DefaultRegistry.
func New(opts ...Option) *Hydrator {
	cfg := applyOptions(opts)
	if cfg.registry == nil {
		cfg.registry = migration.DefaultRegistry()
	}
	if cfg.target == "" {
		cfg.target = migration.CurrentVersion
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	var execOpts []migration.ExecutorOption
	if cfg.evaluator != nil {
		execOpts = append(execOpts, migration.WithEvaluator(cfg.evaluator))
	}
	execOpts = append(execOpts, migration.WithClock(cfg.now))

	return &Hydrator{
		registry:      cfg.registry,
		executor:      migration.NewExecutor(cfg.registry, execOpts...),
		target:        cfg.target,
		logger:        cfg.logger,
		tracer:        newTracer(cfg.tracerProvider),
		hooks:         cfg.activityHooks,
		emitter:       newEmitter(cfg),
		sceneDefaults: cfg.sceneDefaults,
		decoders:      newDecoders(),
		cache:         newResultCache(cfg.cacheSize),
		now:           cfg.now,
	}
}

// Registry returns the registry migrations are resolved from.
func (h *Hydrator) Registry() *migration.Registry {
	return h.registry
}

// TargetVersion returns the schema version snapshots are migrated to.
func (h *Hydrator) TargetVersion() string {
	return h.target
}

// HydrateSnapshot hydrates payload with a Hydrator built from defaults. Each
// call gets its own registry, so Cache has no effect here.
func HydrateSnapshot(ctx context.Context, payload any, opts HydrationOptions) HydrationResult {
	return New().Hydrate(ctx, payload, opts)
}

// HydrateJSON decodes raw and hydrates it with a default Hydrator.
func HydrateJSON(ctx context.Context, raw []byte, opts HydrationOptions) HydrationResult {
	return New().HydrateJSON(ctx, raw, opts)
}

// HydrateJSON decodes raw and hydrates the result. Malformed JSON yields an
// *InputShapeError.
func (h *Hydrator) HydrateJSON(ctx context.Context, raw []byte, opts HydrationOptions) HydrationResult {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return h.execute(ctx, opts, nil, &InputShapeError{Got: "invalid JSON", Err: err})
	}
	return h.Hydrate(ctx, payload, opts)
}

// Hydrate migrates payload to the target version when needed and runs the
// hydration stages. It never panics and always returns a result; check
// Success and Err.
//
// Entries are decoded through encoding/json. NaN and infinite numbers are
// replaced with null first, so those fields take their defaults and a
// warning is recorded.
func (h *Hydrator) Hydrate(ctx context.Context, payload any, opts HydrationOptions) HydrationResult {
	data, ok := payload.(map[string]any)
	if !ok {
		return h.execute(ctx, opts, nil, &InputShapeError{Got: describe(payload)})
	}
	return h.execute(ctx, opts, func(ctx context.Context, b *resultBuilder) HydrationResult {
		return h.hydrate(ctx, b, data, opts)
	}, nil)
}

// Migrate moves data from its declared version to the target version
// without hydrating it. Data without a declared version is returned as is.
func (h *Hydrator) Migrate(ctx context.Context, data map[string]any) migration.Result {
	from, ok, err := declaredVersion(data)
	if err != nil {
		return migration.Result{Errors: []string{err.Error()}, Err: err}
	}
	if !ok {
		from = h.target
	}
	return h.executor.MigrateSnapshot(ctx, data, from, h.target, migration.MigrateOptions{})
}

// execute wraps one call with timeout, tracing, panic recovery, logging and
// activity. A non-nil early error fails the call without running fn.
func (h *Hydrator) execute(ctx context.Context, opts HydrationOptions, fn func(context.Context, *resultBuilder) HydrationResult, early error) (result HydrationResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	ctx, span := h.tracer.Start(ctx, spanHydrate, trace.WithAttributes(
		attribute.String("snapshot.run_id", runID),
		attribute.String("snapshot.target_version", h.target),
		attribute.Bool("snapshot.strict", opts.Strict),
		attribute.Bool("snapshot.validate", opts.Validate),
	))
	b := newResultBuilder(h.now, runID, h.target, opts)

	defer func() {
		if recovered := recover(); recovered != nil {
			b.clearEntities()
			result = b.fail(fmt.Errorf("snapshot: panic during hydration: %v", recovered))
		}
		h.complete(ctx, span, result)
	}()

	if early != nil {
		return b.fail(early)
	}
	return fn(ctx, b)
}

func (h *Hydrator) hydrate(ctx context.Context, b *resultBuilder, data map[string]any, opts HydrationOptions) HydrationResult {
	var key string
	if opts.Cache {
		key = cacheKey(data, opts, h.target, h.registry.Generation())
		if cached, hit := h.cache.get(key); hit {
			return h.fromCache(b, cached)
		}
	}

	version, declared, err := declaredVersion(data)
	if err != nil {
		return b.fail(err)
	}
	if !declared {
		b.warn("snapshot: no schema version declared, assuming %s", h.target)
		version = h.target
	}
	b.result.Metadata.SourceVersion = version

	working := data
	if version != h.target {
		migrated, err := h.migrate(ctx, b, data, version)
		if err != nil {
			if !opts.Fallback || opts.Strict || ctx.Err() != nil {
				return b.fail(err)
			}
			b.recordError(err)
			b.warn("snapshot: migration from %s to %s failed, hydrating the %s payload as is", version, h.target, version)
		} else {
			working = migrated
			version = h.target
		}
	}

	r := &run{h: h, b: b, opts: opts, version: version}
	if err := r.pipeline(ctx, working); err != nil {
		return b.fail(err)
	}
	result := b.finish(true)
	if opts.Cache {
		h.cache.put(key, result)
	}
	return result
}

func (h *Hydrator) fromCache(b *resultBuilder, cached HydrationResult) HydrationResult {
	cached.Metadata.RunID = b.result.Metadata.RunID
	cached.Metadata.Cached = true
	cached.Performance = Performance{}
	b.result = cached
	return b.finish(cached.Success)
}

func (h *Hydrator) migrate(ctx context.Context, b *resultBuilder, data map[string]any, from string) (map[string]any, error) {
	ctx, span := h.tracer.Start(ctx, spanMigrate, trace.WithAttributes(
		attribute.String("snapshot.source_version", from),
		attribute.String("snapshot.target_version", h.target),
	))
	res := h.executor.MigrateSnapshot(ctx, data, from, h.target, migration.MigrateOptions{})

	b.stage(StageMigrate, res.Duration)
	b.result.Warnings = append(b.result.Warnings, res.Warnings...)
	if res.Success {
		b.result.Metadata.Migrated = true
		b.result.Metadata.MigrationPath = append([]string{}, res.Path...)
	}
	h.log(LogEvent{
		RunID:    b.result.Metadata.RunID,
		Stage:    StageMigrate,
		Duration: res.Duration,
		Count:    len(res.Path),
		Err:      res.Err,
	})
	endSpan(span, res.Err, attribute.StringSlice("snapshot.migration_path", res.Path))

	if !res.Success {
		return nil, res.Err
	}
	h.emit(ctx, b.result.Metadata.RunID, activity.BuildSnapshotMigratedEvent(h.eventInput(ctx, b.result)))
	return res.Data, nil
}

func (h *Hydrator) complete(ctx context.Context, span trace.Span, result HydrationResult) {
	counts := result.Metadata.Counts
	h.log(LogEvent{
		RunID:    result.Metadata.RunID,
		Duration: result.Performance.TotalTime,
		Count:    counts.Nodes + counts.Edges + counts.Contexts,
		Skipped:  counts.Skipped,
		Cached:   result.Metadata.Cached,
		Err:      result.Err,
	})

	emitCtx := context.WithoutCancel(ctx)
	input := h.eventInput(emitCtx, result)
	if result.Success {
		h.emit(emitCtx, result.Metadata.RunID, activity.BuildSnapshotHydratedEvent(input))
	} else {
		h.emit(emitCtx, result.Metadata.RunID, activity.BuildSnapshotHydrationFailedEvent(input))
	}

	endSpan(span, result.Err,
		attribute.Bool("snapshot.success", result.Success),
		attribute.Bool("snapshot.migrated", result.Metadata.Migrated),
		attribute.Bool("snapshot.cached", result.Metadata.Cached),
		attribute.Int("snapshot.nodes", counts.Nodes),
		attribute.Int("snapshot.edges", counts.Edges),
		attribute.Int("snapshot.contexts", counts.Contexts),
	)
}
