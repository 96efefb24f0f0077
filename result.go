package snapshot

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/goliatone/go-snapshot/scene"
)

// resultBuilder accumulates one HydrationResult. Entities are committed
// per stage so a failing stage never leaks partial output.
type resultBuilder struct {
	now    func() time.Time
	start  time.Time
	result HydrationResult
}

func newResultBuilder(now func() time.Time, runID, target string, opts HydrationOptions) *resultBuilder {
	return &resultBuilder{
		now:   now,
		start: now(),
		result: HydrationResult{
			Nodes:    []scene.Node{},
			Edges:    []scene.Edge{},
			Contexts: []scene.Context{},
			Warnings: []string{},
			Errors:   []string{},
			Metadata: Metadata{
				RunID:         runID,
				TargetVersion: target,
				MigrationPath: []string{},
				Strict:        opts.Strict,
				Validate:      opts.Validate,
			},
		},
	}
}

func (b *resultBuilder) warn(format string, args ...any) {
	b.result.Warnings = append(b.result.Warnings, fmt.Sprintf(format, args...))
}

func (b *resultBuilder) recordError(err error) {
	if err == nil {
		return
	}
	b.result.Errors = append(b.result.Errors, err.Error())
}

// skip records a lenient entity failure.
func (b *resultBuilder) skip(err error) {
	b.recordError(err)
	b.result.Metadata.Counts.Skipped++
}

func (b *resultBuilder) stage(stage Stage, d time.Duration) {
	perf := &b.result.Performance
	perf.Stages = append(perf.Stages, StageTiming{Stage: stage, Duration: d})
	switch stage {
	case StageMigrate:
		perf.LoadTime += d
	case StageValidate:
		perf.ValidationTime += d
	default:
		perf.ParseTime += d
	}
}

func (b *resultBuilder) setScene(s scene.Scene) {
	b.result.Scene = &s
}

func (b *resultBuilder) setNodes(nodes []scene.Node) {
	b.result.Nodes = nodes
	b.result.Metadata.Counts.Nodes = len(nodes)
}

func (b *resultBuilder) setEdges(edges []scene.Edge) {
	b.result.Edges = edges
	b.result.Metadata.Counts.Edges = len(edges)
}

func (b *resultBuilder) setContexts(contexts []scene.Context) {
	b.result.Contexts = contexts
	b.result.Metadata.Counts.Contexts = len(contexts)
}

// link attaches copies of the collections to the scene.
func (b *resultBuilder) link() {
	if b.result.Scene == nil {
		return
	}
	b.result.Scene.Nodes = append([]scene.Node{}, b.result.Nodes...)
	b.result.Scene.Edges = append([]scene.Edge{}, b.result.Edges...)
	b.result.Scene.Contexts = append([]scene.Context{}, b.result.Contexts...)
}

// clearEntities drops everything produced so far. Used when the failure
// happened before or inside the scene stage.
func (b *resultBuilder) clearEntities() {
	b.result.Scene = nil
	b.setNodes([]scene.Node{})
	b.setEdges([]scene.Edge{})
	b.setContexts([]scene.Context{})
}

// fail finishes the result as failed with err as the fatal error. The
// error message is recorded unless an entity error with the same text is
// already listed.
func (b *resultBuilder) fail(err error) HydrationResult {
	if err == nil {
		err = errors.New("snapshot: hydration failed")
	}
	msg := err.Error()
	if len(b.result.Errors) == 0 || b.result.Errors[len(b.result.Errors)-1] != msg {
		b.result.Errors = append(b.result.Errors, msg)
	}
	b.result.Err = err
	return b.finish(false)
}

func (b *resultBuilder) finish(success bool) HydrationResult {
	b.result.Success = success
	end := b.now()
	b.result.Performance.TotalTime = end.Sub(b.start)
	b.result.Performance.MemoryUsage = heapInUse()
	b.result.Metadata.HydratedAt = end
	return b.result
}

func heapInUse() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}
