package scene

// Node is a hydrated scene node.
type Node struct {
	ID         int64        `json:"id,omitempty"`
	GUID       string       `json:"guid"`
	SceneGUID  string       `json:"scene_guid"`
	NodeType   string       `json:"node_type"`
	Position   Position     `json:"position"`
	Dimensions Dimensions   `json:"dimensions"`
	Metadata   NodeMetadata `json:"metadata"`
	Style      NodeStyle    `json:"style"`
	Transform  Transform    `json:"transform"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeMetadata holds the human-facing payload of a node.
type NodeMetadata struct {
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags"`
	Locked      bool           `json:"locked"`
	Hidden      bool           `json:"hidden"`
	Data        map[string]any `json:"data,omitempty"`
}

type NodeStyle struct {
	Color           string  `json:"color"`
	BackgroundColor string  `json:"background_color"`
	BorderColor     string  `json:"border_color"`
	BorderWidth     float64 `json:"border_width"`
	Opacity         float64 `json:"opacity"`
	Shape           string  `json:"shape"`
	FontSize        float64 `json:"font_size"`
}

// Transform is shared by nodes and edges. Rotation is in degrees.
type Transform struct {
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	SkewX    float64 `json:"skew_x"`
	SkewY    float64 `json:"skew_y"`
}
