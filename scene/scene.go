// Package scene defines the hydrated entities produced from a snapshot.
//
// Every value here is fully defaulted. Durable numeric identifiers (the ID
// fields) are owned by the persistence layer and left at zero.
package scene

// Scene is the root entity of a hydrated snapshot. Nodes, Edges and Contexts
// are attached only once hydration has validated and linked them.
type Scene struct {
	ID          int64       `json:"id,omitempty"`
	GUID        string      `json:"guid"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	SceneType   string      `json:"scene_type"`
	Config      SceneConfig `json:"config"`
	Meta        SceneMeta   `json:"meta"`
	Style       SceneStyle  `json:"style"`
	Nodes       []Node      `json:"nodes,omitempty"`
	Edges       []Edge      `json:"edges,omitempty"`
	Contexts    []Context   `json:"contexts,omitempty"`
}

// SceneConfig controls canvas layout and interaction.
type SceneConfig struct {
	Layout      string  `json:"layout"`
	Zoom        float64 `json:"zoom"`
	MinZoom     float64 `json:"min_zoom"`
	MaxZoom     float64 `json:"max_zoom"`
	GridSize    float64 `json:"grid_size"`
	SnapToGrid  bool    `json:"snap_to_grid"`
	ShowGrid    bool    `json:"show_grid"`
	Interactive bool    `json:"interactive"`
}

// SceneMeta carries descriptive bookkeeping copied from the snapshot.
// Timestamps stay in their serialized form.
type SceneMeta struct {
	Author    string         `json:"author,omitempty"`
	Tags      []string       `json:"tags"`
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// SceneStyle is the unresolved presentation hint for the canvas.
type SceneStyle struct {
	BackgroundColor string `json:"background_color"`
	Theme           string `json:"theme"`
	FontFamily      string `json:"font_family,omitempty"`
}
