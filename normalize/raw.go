package normalize

// The Raw types are the intermediate representation decoded from snapshot
// entries. Every field is optional; a nil pointer means the snapshot did not
// supply it and the normalizer picks the default.

type RawPosition struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

type RawDimensions struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

type RawTransform struct {
	Rotation *float64 `json:"rotation,omitempty"`
	ScaleX   *float64 `json:"scale_x,omitempty"`
	ScaleY   *float64 `json:"scale_y,omitempty"`
	SkewX    *float64 `json:"skew_x,omitempty"`
	SkewY    *float64 `json:"skew_y,omitempty"`
}

type RawNodeMetadata struct {
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Locked      *bool          `json:"locked,omitempty"`
	Hidden      *bool          `json:"hidden,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

type RawNodeStyle struct {
	Color           *string  `json:"color,omitempty"`
	BackgroundColor *string  `json:"background_color,omitempty"`
	BorderColor     *string  `json:"border_color,omitempty"`
	BorderWidth     *float64 `json:"border_width,omitempty"`
	Opacity         *float64 `json:"opacity,omitempty"`
	Shape           *string  `json:"shape,omitempty"`
	FontSize        *float64 `json:"font_size,omitempty"`
}

// RawNode is one entry of scene.nodes.
type RawNode struct {
	GUID       *string          `json:"guid,omitempty"`
	NodeType   *string          `json:"node_type,omitempty"`
	Position   *RawPosition     `json:"position,omitempty"`
	Dimensions *RawDimensions   `json:"dimensions,omitempty"`
	Metadata   *RawNodeMetadata `json:"metadata,omitempty"`
	Style      *RawNodeStyle    `json:"style,omitempty"`
	Transform  *RawTransform    `json:"transform,omitempty"`
}

type RawEdgePath struct {
	Kind         *string       `json:"kind,omitempty"`
	Points       []RawPosition `json:"points,omitempty"`
	Curvature    *float64      `json:"curvature,omitempty"`
	SourceHandle *string       `json:"source_handle,omitempty"`
	TargetHandle *string       `json:"target_handle,omitempty"`
}

type RawEdgeMetadata struct {
	Label    *string        `json:"label,omitempty"`
	Weight   *float64       `json:"weight,omitempty"`
	Directed *bool          `json:"directed,omitempty"`
	Animated *bool          `json:"animated,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type RawEdgeStyle struct {
	Color     *string  `json:"color,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	LineStyle *string  `json:"line_style,omitempty"`
	Opacity   *float64 `json:"opacity,omitempty"`
	ArrowHead *string  `json:"arrow_head,omitempty"`
}

// RawEdge is one entry of scene.edges.
type RawEdge struct {
	GUID      *string          `json:"guid,omitempty"`
	Source    *string          `json:"source,omitempty"`
	Target    *string          `json:"target,omitempty"`
	EdgeType  *string          `json:"edge_type,omitempty"`
	Path      *RawEdgePath     `json:"path,omitempty"`
	Metadata  *RawEdgeMetadata `json:"metadata,omitempty"`
	Style     *RawEdgeStyle    `json:"style,omitempty"`
	Transform *RawTransform    `json:"transform,omitempty"`
}

type RawContextMetadata struct {
	Description *string        `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Visible     *bool          `json:"visible,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// RawContext is one entry of scene.contexts.
type RawContext struct {
	GUID        *string             `json:"guid,omitempty"`
	Name        *string             `json:"name,omitempty"`
	ContextType *string             `json:"context_type,omitempty"`
	TargetGUID  *string             `json:"target_guid,omitempty"`
	Coordinates *RawPosition        `json:"coordinates,omitempty"`
	Metadata    *RawContextMetadata `json:"metadata,omitempty"`
}

type RawSceneConfig struct {
	Layout      *string  `json:"layout,omitempty"`
	Zoom        *float64 `json:"zoom,omitempty"`
	MinZoom     *float64 `json:"min_zoom,omitempty"`
	MaxZoom     *float64 `json:"max_zoom,omitempty"`
	GridSize    *float64 `json:"grid_size,omitempty"`
	SnapToGrid  *bool    `json:"snap_to_grid,omitempty"`
	ShowGrid    *bool    `json:"show_grid,omitempty"`
	Interactive *bool    `json:"interactive,omitempty"`
}

type RawSceneMeta struct {
	Author    *string        `json:"author,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Version   *string        `json:"version,omitempty"`
	CreatedAt *string        `json:"created_at,omitempty"`
	UpdatedAt *string        `json:"updated_at,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

type RawSceneStyle struct {
	BackgroundColor *string `json:"background_color,omitempty"`
	Theme           *string `json:"theme,omitempty"`
	FontFamily      *string `json:"font_family,omitempty"`
}

// RawScene holds the identity and settings of the scene object. Its
// collections are decoded entry by entry.
type RawScene struct {
	GUID        *string         `json:"guid,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Slug        *string         `json:"slug,omitempty"`
	Description *string         `json:"description,omitempty"`
	SceneType   *string         `json:"scene_type,omitempty"`
	Config      *RawSceneConfig `json:"config,omitempty"`
	Meta        *RawSceneMeta   `json:"meta,omitempty"`
	Style       *RawSceneStyle  `json:"style,omitempty"`
}
