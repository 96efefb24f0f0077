package scene

// Context is an annotation anchored to the scene or to one of its entities.
// TargetGUID is carried as given and not resolved.
type Context struct {
	ID          int64           `json:"id,omitempty"`
	GUID        string          `json:"guid"`
	SceneGUID   string          `json:"scene_guid"`
	Name        string          `json:"name"`
	ContextType string          `json:"context_type"`
	TargetGUID  string          `json:"target_guid,omitempty"`
	Coordinates Position        `json:"coordinates"`
	Metadata    ContextMetadata `json:"metadata"`
}

type ContextMetadata struct {
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags"`
	Visible     bool           `json:"visible"`
	Data        map[string]any `json:"data,omitempty"`
}
