package snapshot

import (
	"time"

	"github.com/goliatone/go-snapshot/scene"
)

// HydrationOptions tunes a single hydration call. The zero value disables
// validation; start from DefaultHydrationOptions instead.
type HydrationOptions struct {
	// Validate runs the validation stage before entities are linked.
	Validate bool
	// Strict turns any malformed entity into a fatal error and disables
	// Fallback.
	Strict bool
	// Fallback hydrates the original payload when migration fails.
	Fallback bool
	// Cache memoizes results per payload content inside the Hydrator.
	Cache bool
	// Timeout bounds the whole call when positive.
	Timeout time.Duration
}

// DefaultHydrationOptions returns lenient options with validation enabled.
func DefaultHydrationOptions() HydrationOptions {
	return HydrationOptions{Validate: true}
}

// Stage names a hydration pipeline step.
type Stage string

const (
	StageMigrate  Stage = "migrate"
	StageScene    Stage = "scene"
	StageNodes    Stage = "nodes"
	StageEdges    Stage = "edges"
	StageContexts Stage = "contexts"
	StageValidate Stage = "validate"
	// StageActivity tags logger events about failed activity hooks.
	StageActivity Stage = "activity"
)

// StageTiming records how long one stage ran.
type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Performance splits the call duration into buckets. LoadTime covers
// migration, ParseTime the scene to contexts stages and ValidationTime the
// validation stage. MemoryUsage is the heap in use when the call finished.
type Performance struct {
	LoadTime       time.Duration `json:"load_time"`
	ParseTime      time.Duration `json:"parse_time"`
	ValidationTime time.Duration `json:"validation_time"`
	TotalTime      time.Duration `json:"total_time"`
	MemoryUsage    uint64        `json:"memory_usage"`
	Stages         []StageTiming `json:"stages,omitempty"`
}

// Counts tallies hydrated and skipped entities.
type Counts struct {
	Nodes    int `json:"nodes"`
	Edges    int `json:"edges"`
	Contexts int `json:"contexts"`
	Skipped  int `json:"skipped"`
}

func (c Counts) asMap() map[string]int {
	return map[string]int{
		"nodes":    c.Nodes,
		"edges":    c.Edges,
		"contexts": c.Contexts,
		"skipped":  c.Skipped,
	}
}

// Metadata describes how a result was produced.
type Metadata struct {
	RunID         string    `json:"run_id"`
	Migrated      bool      `json:"migrated"`
	Cached        bool      `json:"cached"`
	SourceVersion string    `json:"source_version,omitempty"`
	TargetVersion string    `json:"target_version"`
	MigrationPath []string  `json:"migration_path"`
	Strict        bool      `json:"strict"`
	Validate      bool      `json:"validate"`
	HydratedAt    time.Time `json:"hydrated_at"`
	Counts        Counts    `json:"counts"`
}

// HydrationResult is the outcome of one hydration call. It is built fresh
// per call and owned by the caller.
//
// Scene is nil when the payload never produced a scene. Nodes, Edges and
// Contexts hold the entities of every stage that completed, even when a
// later stage failed; Scene.Nodes and friends are set only after
// validation. Errors lists every recorded failure, and Err holds the fatal
// one, if any.
type HydrationResult struct {
	Success     bool            `json:"success"`
	Scene       *scene.Scene    `json:"scene,omitempty"`
	Nodes       []scene.Node    `json:"nodes"`
	Edges       []scene.Edge    `json:"edges"`
	Contexts    []scene.Context `json:"contexts"`
	Warnings    []string        `json:"warnings"`
	Errors      []string        `json:"errors"`
	Err         error           `json:"-"`
	Performance Performance     `json:"performance"`
	Metadata    Metadata        `json:"metadata"`
}
