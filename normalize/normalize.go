// Package normalize turns the optional-field intermediate representation of
// a snapshot into fully defaulted scene values.
//
// Normalizers are pure. They accept nil input, never fail and never share
// slices or maps with their argument.
package normalize

import (
	"math"
	"strings"

	"github.com/goliatone/go-snapshot/eval"
	"github.com/goliatone/go-snapshot/layering"
	"github.com/goliatone/go-snapshot/scene"
)

func Position(raw *RawPosition) scene.Position {
	if raw == nil {
		return scene.Position{}
	}
	return scene.Position{
		X: number(raw.X, 0),
		Y: number(raw.Y, 0),
		Z: number(raw.Z, 0),
	}
}

// Dimensions replaces missing or non-positive sizes with the node default.
func Dimensions(raw *RawDimensions) scene.Dimensions {
	out := scene.Dimensions{Width: DefaultNodeWidth, Height: DefaultNodeHeight}
	if raw == nil {
		return out
	}
	out.Width = positive(raw.Width, DefaultNodeWidth)
	out.Height = positive(raw.Height, DefaultNodeHeight)
	return out
}

func NodeMetadata(raw *RawNodeMetadata) scene.NodeMetadata {
	if raw == nil {
		return scene.NodeMetadata{Tags: []string{}}
	}
	return scene.NodeMetadata{
		Label:       text(raw.Label, ""),
		Description: text(raw.Description, ""),
		Tags:        tags(raw.Tags),
		Locked:      flag(raw.Locked, false),
		Hidden:      flag(raw.Hidden, false),
		Data:        layering.CloneMap(raw.Data),
	}
}

func NodeStyle(raw *RawNodeStyle) scene.NodeStyle {
	out := scene.NodeStyle{
		Color:           DefaultNodeColor,
		BackgroundColor: DefaultNodeBackground,
		BorderColor:     DefaultNodeBorderColor,
		BorderWidth:     DefaultNodeBorderWidth,
		Opacity:         DefaultOpacity,
		Shape:           DefaultNodeShape,
		FontSize:        DefaultFontSize,
	}
	if raw == nil {
		return out
	}
	out.Color = text(raw.Color, out.Color)
	out.BackgroundColor = text(raw.BackgroundColor, out.BackgroundColor)
	out.BorderColor = text(raw.BorderColor, out.BorderColor)
	out.BorderWidth = nonNegative(raw.BorderWidth, out.BorderWidth)
	out.Opacity = opacity(raw.Opacity)
	out.Shape = text(raw.Shape, out.Shape)
	out.FontSize = positive(raw.FontSize, out.FontSize)
	return out
}

func Transform(raw *RawTransform) scene.Transform {
	out := scene.Transform{ScaleX: DefaultScale, ScaleY: DefaultScale}
	if raw == nil {
		return out
	}
	out.Rotation = number(raw.Rotation, 0)
	out.ScaleX = number(raw.ScaleX, DefaultScale)
	out.ScaleY = number(raw.ScaleY, DefaultScale)
	out.SkewX = number(raw.SkewX, 0)
	out.SkewY = number(raw.SkewY, 0)
	return out
}

func EdgePath(raw *RawEdgePath) scene.EdgePath {
	out := scene.EdgePath{Kind: DefaultEdgePathKind, Points: []scene.Position{}}
	if raw == nil {
		return out
	}
	out.Kind = text(raw.Kind, DefaultEdgePathKind)
	for i := range raw.Points {
		out.Points = append(out.Points, Position(&raw.Points[i]))
	}
	out.Curvature = number(raw.Curvature, 0)
	out.SourceHandle = text(raw.SourceHandle, "")
	out.TargetHandle = text(raw.TargetHandle, "")
	return out
}

func EdgeMetadata(raw *RawEdgeMetadata) scene.EdgeMetadata {
	out := scene.EdgeMetadata{Weight: DefaultEdgeWeight, Directed: true}
	if raw == nil {
		return out
	}
	out.Label = text(raw.Label, "")
	out.Weight = number(raw.Weight, DefaultEdgeWeight)
	out.Directed = flag(raw.Directed, true)
	out.Animated = flag(raw.Animated, false)
	out.Data = layering.CloneMap(raw.Data)
	return out
}

func EdgeStyle(raw *RawEdgeStyle) scene.EdgeStyle {
	out := scene.EdgeStyle{
		Color:     DefaultEdgeColor,
		Width:     DefaultEdgeWidth,
		LineStyle: DefaultEdgeLineStyle,
		Opacity:   DefaultOpacity,
		ArrowHead: DefaultEdgeArrowHead,
	}
	if raw == nil {
		return out
	}
	out.Color = text(raw.Color, out.Color)
	out.Width = positive(raw.Width, out.Width)
	out.LineStyle = text(raw.LineStyle, out.LineStyle)
	out.Opacity = opacity(raw.Opacity)
	out.ArrowHead = text(raw.ArrowHead, out.ArrowHead)
	return out
}

// SceneConfig defaults the canvas settings and keeps Zoom inside
// [MinZoom, MaxZoom].
func SceneConfig(raw *RawSceneConfig) scene.SceneConfig {
	out := scene.SceneConfig{
		Layout:      DefaultLayout,
		Zoom:        DefaultZoom,
		MinZoom:     DefaultMinZoom,
		MaxZoom:     DefaultMaxZoom,
		GridSize:    DefaultGridSize,
		Interactive: true,
	}
	if raw == nil {
		return out
	}
	out.Layout = text(raw.Layout, out.Layout)
	out.MinZoom = positive(raw.MinZoom, out.MinZoom)
	out.MaxZoom = positive(raw.MaxZoom, out.MaxZoom)
	if out.MinZoom > out.MaxZoom {
		out.MinZoom, out.MaxZoom = out.MaxZoom, out.MinZoom
	}
	out.Zoom = math.Min(math.Max(positive(raw.Zoom, out.Zoom), out.MinZoom), out.MaxZoom)
	out.GridSize = positive(raw.GridSize, out.GridSize)
	out.SnapToGrid = flag(raw.SnapToGrid, false)
	out.ShowGrid = flag(raw.ShowGrid, false)
	out.Interactive = flag(raw.Interactive, true)
	return out
}

func SceneMeta(raw *RawSceneMeta) scene.SceneMeta {
	if raw == nil {
		return scene.SceneMeta{Tags: []string{}}
	}
	return scene.SceneMeta{
		Author:    text(raw.Author, ""),
		Tags:      tags(raw.Tags),
		Version:   text(raw.Version, ""),
		CreatedAt: text(raw.CreatedAt, ""),
		UpdatedAt: text(raw.UpdatedAt, ""),
		Extra:     layering.CloneMap(raw.Extra),
	}
}

func SceneStyle(raw *RawSceneStyle) scene.SceneStyle {
	out := scene.SceneStyle{BackgroundColor: DefaultBackground, Theme: DefaultTheme}
	if raw == nil {
		return out
	}
	out.BackgroundColor = text(raw.BackgroundColor, out.BackgroundColor)
	out.Theme = text(raw.Theme, out.Theme)
	out.FontFamily = text(raw.FontFamily, "")
	return out
}

func ContextMetadata(raw *RawContextMetadata) scene.ContextMetadata {
	if raw == nil {
		return scene.ContextMetadata{Tags: []string{}, Visible: true}
	}
	return scene.ContextMetadata{
		Description: text(raw.Description, ""),
		Tags:        tags(raw.Tags),
		Visible:     flag(raw.Visible, true),
		Data:        layering.CloneMap(raw.Data),
	}
}

// Text returns the trimmed value of p, or "" when p is nil.
func Text(p *string) string {
	return text(p, "")
}

func text(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	if v := strings.TrimSpace(*p); v != "" {
		return v
	}
	return fallback
}

func number(p *float64, fallback float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return fallback
	}
	return *p
}

func positive(p *float64, fallback float64) float64 {
	if v := number(p, fallback); v > 0 {
		return v
	}
	return fallback
}

func nonNegative(p *float64, fallback float64) float64 {
	if v := number(p, fallback); v >= 0 {
		return v
	}
	return fallback
}

func opacity(p *float64) float64 {
	return math.Min(math.Max(number(p, DefaultOpacity), 0), 1)
}

func flag(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func tags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func slug(name string) string {
	return eval.Slug(name)
}
