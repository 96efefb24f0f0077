package snapshot

import (
	"context"
	"testing"

	"github.com/goliatone/go-snapshot/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrateCacheReturnsDetachedCopies(t *testing.T) {
	h := New()
	opts := DefaultHydrationOptions()
	opts.Cache = true

	first := h.Hydrate(context.Background(), loadSnapshot(t, "legacy_v090.json"), opts)
	require.True(t, first.Success, first.Errors)
	assert.False(t, first.Metadata.Cached)
	assert.Equal(t, 1, h.cache.len())

	first.Nodes[0].GUID = "mutated"
	first.Scene.Name = "mutated"

	second := h.Hydrate(context.Background(), loadSnapshot(t, "legacy_v090.json"), opts)
	require.True(t, second.Success)
	assert.True(t, second.Metadata.Cached)
	assert.True(t, second.Metadata.Migrated)
	assert.NotEqual(t, first.Metadata.RunID, second.Metadata.RunID)
	assert.Equal(t, "n1", second.Nodes[0].GUID)
	assert.Equal(t, "Legacy Board", second.Scene.Name)
	assert.Equal(t, []string{"0.9.0->1.0.0"}, second.Metadata.MigrationPath)
}

func TestHydrateCacheKeyTracksOptionsAndRegistry(t *testing.T) {
	registry := migration.DefaultRegistry()
	h := New(WithRegistry(registry))
	payload := loadSnapshot(t, "board_v100.json")

	lenient := HydrationOptions{Validate: true, Cache: true}
	strict := HydrationOptions{Validate: true, Cache: true, Strict: true}

	h.Hydrate(context.Background(), payload, lenient)
	assert.False(t, h.Hydrate(context.Background(), payload, strict).Metadata.Cached)
	assert.True(t, h.Hydrate(context.Background(), payload, strict).Metadata.Cached)

	require.NoError(t, registry.Register(migration.Migration{From: "1.0.0", To: "1.1.0"}))
	assert.False(t, h.Hydrate(context.Background(), payload, lenient).Metadata.Cached)
}

func TestHydrateCacheSkipsFailures(t *testing.T) {
	h := New()
	opts := HydrationOptions{Cache: true, Strict: true}
	payload := v100([]any{map[string]any{"guid": "n1"}}, nil)

	require.False(t, h.Hydrate(context.Background(), payload, opts).Success)
	assert.Equal(t, 0, h.cache.len())
}

func TestResultCacheEvictsOldest(t *testing.T) {
	cache := newResultCache(2)
	cache.put("a", HydrationResult{Success: true})
	cache.put("b", HydrationResult{Success: true})
	cache.put("c", HydrationResult{Success: true})

	_, hasA := cache.get("a")
	_, hasC := cache.get("c")
	assert.False(t, hasA)
	assert.True(t, hasC)
	assert.Equal(t, 2, cache.len())
}

func TestCacheKey(t *testing.T) {
	data := map[string]any{"scene": map[string]any{"name": "a"}}
	opts := DefaultHydrationOptions()

	base := cacheKey(data, opts, "1.0.0", 1)
	assert.NotEmpty(t, base)
	assert.Equal(t, base, cacheKey(map[string]any{"scene": map[string]any{"name": "a"}}, opts, "1.0.0", 1))
	assert.NotEqual(t, base, cacheKey(data, opts, "1.1.0", 1))
	assert.NotEqual(t, base, cacheKey(data, opts, "1.0.0", 2))
	assert.Empty(t, cacheKey(map[string]any{"bad": func() {}}, opts, "1.0.0", 1))
}
