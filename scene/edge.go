package scene

// Edge is a hydrated connection between two nodes of the same scene.
type Edge struct {
	ID         int64        `json:"id,omitempty"`
	GUID       string       `json:"guid"`
	SceneGUID  string       `json:"scene_guid"`
	SourceGUID string       `json:"source_guid"`
	TargetGUID string       `json:"target_guid"`
	EdgeType   string       `json:"edge_type"`
	Path       EdgePath     `json:"path"`
	Metadata   EdgeMetadata `json:"metadata"`
	Style      EdgeStyle    `json:"style"`
	Transform  Transform    `json:"transform"`
}

// EdgePath describes how an edge is routed between its endpoints.
type EdgePath struct {
	Kind         string     `json:"kind"`
	Points       []Position `json:"points"`
	Curvature    float64    `json:"curvature"`
	SourceHandle string     `json:"source_handle,omitempty"`
	TargetHandle string     `json:"target_handle,omitempty"`
}

type EdgeMetadata struct {
	Label    string         `json:"label"`
	Weight   float64        `json:"weight"`
	Directed bool           `json:"directed"`
	Animated bool           `json:"animated"`
	Data     map[string]any `json:"data,omitempty"`
}

type EdgeStyle struct {
	Color     string  `json:"color"`
	Width     float64 `json:"width"`
	LineStyle string  `json:"line_style"`
	Opacity   float64 `json:"opacity"`
	ArrowHead string  `json:"arrow_head"`
}
