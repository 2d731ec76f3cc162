package document

import (
	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/typeid"
)

// NewEmptyScene creates a scene with no objects.
func NewEmptyScene(name string, width, height int) *Scene {
	return &Scene{
		ID:         typeid.NewSceneID(),
		Name:       name,
		Width:      width,
		Height:     height,
		Background: "#1a1a2e",
		Objects:    []*Object{},
	}
}

// NewSampleScene creates the demo scene new sessions start from: a rect,
// an ellipse and a triangle.
func NewSampleScene() *Scene {
	s := NewEmptyScene("Scene 1", 1280, 720)
	s.Objects = []*Object{
		{
			ID:        typeid.NewObjectID(),
			Name:      "rect",
			Type:      ObjectTypeShapeRect,
			Transform: geometry.Transform{X: 200, Y: 200, ScaleX: 1, ScaleY: 1},
			Style:     Style{Fill: "#e94560", Stroke: "#000000", StrokeWidth: 2, Opacity: 1},
			Visible:   true,
			Width:     200,
			Height:    150,
		},
		{
			ID:        typeid.NewObjectID(),
			Name:      "ellipse",
			Type:      ObjectTypeShapeEllipse,
			Transform: geometry.Transform{X: 640, Y: 360, ScaleX: 1, ScaleY: 1},
			Style:     Style{Fill: "#0f3460", Stroke: "#16213e", StrokeWidth: 2, Opacity: 1},
			Visible:   true,
			RX:        120,
			RY:        80,
		},
		{
			ID:        typeid.NewObjectID(),
			Name:      "triangle",
			Type:      ObjectTypeVectorPath,
			Transform: geometry.Transform{X: 900, Y: 200, ScaleX: 1, ScaleY: 1},
			Style:     Style{Fill: "#53d769", Stroke: "#2d6a4f", StrokeWidth: 2, Opacity: 1},
			Visible:   true,
			Commands: []surface.PathCommand{
				{"M", 0.0, 150.0},
				{"L", 100.0, 0.0},
				{"L", 200.0, 150.0},
				{"Z"},
			},
		},
	}
	return s
}
