package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPathDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"scene", "nodes", "*", "id"}, SplitPath(" scene..nodes.*.id "))
	assert.Empty(t, SplitPath(""))
}

func TestWalkExpandsWildcards(t *testing.T) {
	data := Data{"scene": map[string]any{
		"nodes": []any{
			map[string]any{"id": "a"},
			"not-an-object",
			map[string]any{"id": "b"},
		},
		"extra": []map[string]any{{"id": "c"}},
	}}

	var seen []string
	collect := func(parent map[string]any, key string) error {
		if v, ok := parent[key].(string); ok {
			seen = append(seen, v)
		}
		return nil
	}
	require.NoError(t, Walk(data, "scene.nodes.*.id", collect))
	require.NoError(t, Walk(data, "scene.extra.*.id", collect))
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestWalkMissingBranchIsNoop(t *testing.T) {
	calls := 0
	err := Walk(Data{}, "scene.nodes.*.id", func(map[string]any, string) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestWalkRejectsTrailingWildcard(t *testing.T) {
	err := Walk(Data{}, "scene.nodes.*", func(map[string]any, string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must end with a key")
}

func TestGetAndSet(t *testing.T) {
	data := Data{"scene": "flat"}
	require.NoError(t, Set(data, "scene.name", "Demo"))
	require.NoError(t, Set(data, VersionPath, "1.0.0"))

	value, ok := Get(data, "scene.name")
	require.True(t, ok)
	assert.Equal(t, "Demo", value)
	assert.Equal(t, "1.0.0", GetString(data, VersionPath))
	assert.Equal(t, "", GetString(data, "scene.missing"))

	assert.Error(t, Set(data, "scene.*.name", "x"))
	assert.Error(t, Set(data, "", "x"))
}
