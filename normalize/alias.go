package normalize

import (
	"encoding/json"
	"strconv"
)

// Alias maps a legacy or shorthand key onto its canonical name.
type Alias struct {
	From string
	To   string
}

var (
	NodeAliases = []Alias{
		{From: "id", To: "guid"},
		{From: "type", To: "node_type"},
	}
	EdgeAliases = []Alias{
		{From: "id", To: "guid"},
		{From: "type", To: "edge_type"},
		{From: "source_guid", To: "source"},
		{From: "from", To: "source"},
		{From: "target_guid", To: "target"},
		{From: "to", To: "target"},
	}
	ContextAliases = []Alias{
		{From: "id", To: "guid"},
		{From: "type", To: "context_type"},
		{From: "target", To: "target_guid"},
	}
	SceneAliases = []Alias{
		{From: "id", To: "guid"},
		{From: "type", To: "scene_type"},
	}
)

// ApplyAliases moves aliased keys of entry onto their canonical names in
// place. A canonical key that is already present wins and the alias is
// dropped; among aliases the first listed wins.
func ApplyAliases(entry map[string]any, aliases []Alias) map[string]any {
	if entry == nil {
		return nil
	}
	for _, alias := range aliases {
		value, ok := entry[alias.From]
		if !ok {
			continue
		}
		delete(entry, alias.From)
		if _, exists := entry[alias.To]; !exists {
			entry[alias.To] = value
		}
	}
	return entry
}

// StringifyIdentifiers rewrites numeric values under keys into strings so
// snapshots that used numeric ids still decode.
func StringifyIdentifiers(entry map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		switch v := entry[key].(type) {
		case float64:
			entry[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			entry[key] = strconv.Itoa(v)
		case int64:
			entry[key] = strconv.FormatInt(v, 10)
		case json.Number:
			entry[key] = v.String()
		}
	}
	return entry
}
