package snapshot

import (
	"time"

	"github.com/goliatone/go-snapshot/eval"
	"github.com/goliatone/go-snapshot/layering"
	"github.com/goliatone/go-snapshot/migration"
	"github.com/goliatone/go-snapshot/pkg/activity"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Hydrator.
type Option func(*hydratorConfig)

type hydratorConfig struct {
	registry       *migration.Registry
	target         string
	evaluator      eval.Evaluator
	logger         Logger
	tracerProvider trace.TracerProvider
	activityHooks  activity.Hooks
	activityConfig *activity.Config
	sceneDefaults  map[string]any
	cacheSize      int
	now            func() time.Time
}

func applyOptions(opts []Option) hydratorConfig {
	cfg := hydratorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRegistry sets the migrations the Hydrator resolves paths from. The
// default is migration.DefaultRegistry().
func WithRegistry(registry *migration.Registry) Option {
	return func(cfg *hydratorConfig) {
		cfg.registry = registry
	}
}

// WithTargetVersion sets the schema version snapshots are migrated to. The
// default is migration.CurrentVersion.
func WithTargetVersion(version string) Option {
	return func(cfg *hydratorConfig) {
		cfg.target = version
	}
}

// WithEvaluator sets the expression engine used by declarative migration
// steps.
func WithEvaluator(evaluator eval.Evaluator) Option {
	return func(cfg *hydratorConfig) {
		cfg.evaluator = evaluator
	}
}

// WithLogger attaches a hydration logger. A nil logger disables logging.
func WithLogger(logger Logger) Option {
	return func(cfg *hydratorConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithTracerProvider sets the OpenTelemetry provider spans are created from.
// The global provider is used otherwise.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *hydratorConfig) {
		cfg.tracerProvider = provider
	}
}

// WithActivityHooks attaches activity hooks. Nil entries are dropped.
// Emission is enabled unless WithActivityConfig says otherwise.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *hydratorConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig overrides the activity emitter configuration.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *hydratorConfig) {
		c := config
		cfg.activityConfig = &c
	}
}

// WithSceneDefaults supplies a payload merged beneath every snapshot's scene
// object. Values in the snapshot win; missing keys, including nested ones,
// are filled from defaults.
func WithSceneDefaults(defaults map[string]any) Option {
	cloned := layering.CloneMap(defaults)
	return func(cfg *hydratorConfig) {
		cfg.sceneDefaults = cloned
	}
}

// WithClock overrides the time source used for timings and timestamps.
func WithClock(now func() time.Time) Option {
	return func(cfg *hydratorConfig) {
		cfg.now = now
	}
}

// WithCacheSize bounds how many results the Hydrator keeps when
// HydrationOptions.Cache is set. Non-positive sizes use DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(cfg *hydratorConfig) {
		cfg.cacheSize = size
	}
}
