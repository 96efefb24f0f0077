package normalize

// Defaults applied when a snapshot omits a field.
const (
	DefaultSceneName = "Untitled Scene"
	DefaultSceneType = "canvas"

	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 100.0

	DefaultNodeColor       = "#111827"
	DefaultNodeBackground  = "#ffffff"
	DefaultNodeBorderColor = "#d1d5db"
	DefaultNodeBorderWidth = 1.0
	DefaultNodeShape       = "rectangle"
	DefaultFontSize        = 14.0
	DefaultOpacity         = 1.0
	DefaultScale           = 1.0

	DefaultEdgeType      = "default"
	DefaultEdgePathKind  = "straight"
	DefaultEdgeWeight    = 1.0
	DefaultEdgeColor     = "#6b7280"
	DefaultEdgeWidth     = 2.0
	DefaultEdgeLineStyle = "solid"
	DefaultEdgeArrowHead = "arrow"

	DefaultContextType = "default"

	DefaultLayout     = "freeform"
	DefaultZoom       = 1.0
	DefaultMinZoom    = 0.1
	DefaultMaxZoom    = 4.0
	DefaultGridSize   = 20.0
	DefaultBackground = "#ffffff"
	DefaultTheme      = "light"
)
