package wireframe

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/surface"
)

// RotatorAnchor is the connector from the top edge to the rotator handle.
// It is derived entirely from the box and the rotator position.
type RotatorAnchor struct {
	config  style.RotatorAnchorConfig
	surface surface.Surface
	parent  surface.Surface

	from, to mgl64.Vec2
	visible  bool
	dirty    bool
}

// NewRotatorAnchor creates the connector in a child of parent.
func NewRotatorAnchor(parent surface.Surface, cfg style.RotatorAnchorConfig) *RotatorAnchor {
	return &RotatorAnchor{
		config:  cfg,
		parent:  parent,
		surface: parent.AddChild("rotator-anchor"),
		dirty:   true,
	}
}

// Config returns the configuration.
func (a *RotatorAnchor) Config() style.RotatorAnchorConfig { return a.config }

// SetConfig replaces the configuration.
func (a *RotatorAnchor) SetConfig(c style.RotatorAnchorConfig) {
	if a.config == c {
		return
	}
	a.config = c
	a.dirty = true
}

// Update recomputes the segment from box and the rotator handle position.
// visible is false when the rotator is hidden.
func (a *RotatorAnchor) Update(box geometry.OrientedBox, rotator mgl64.Vec2, visible bool) {
	edge := box.Point(0.5, 0)
	from := edge.Add(rotator.Sub(edge).Mul(a.config.StartPosition))
	visible = visible && !box.IsEmpty()
	if from == a.from && rotator == a.to && visible == a.visible {
		return
	}
	a.from, a.to, a.visible = from, rotator, visible
	a.dirty = true
}

// Segment returns the current connector end points.
func (a *RotatorAnchor) Segment() (from, to mgl64.Vec2) {
	return a.from, a.to
}

// Render redraws the connector when it changed and reports whether it did.
func (a *RotatorAnchor) Render() bool {
	if !a.dirty {
		return false
	}
	a.dirty = false
	s := a.surface
	s.Clear()
	if !a.visible || !a.config.Enabled || a.from.Sub(a.to).Len() < geometry.Epsilon {
		return true
	}
	s.LineStyle(a.config.Thickness, a.config.Color, a.config.Alpha)
	s.SetDash(a.config.Dash())
	s.MoveTo(a.from[0], a.from[1])
	s.LineTo(a.to[0], a.to[1])
	s.SetDash(nil)
	return true
}

// Destroy detaches the connector.
func (a *RotatorAnchor) Destroy() {
	a.parent.RemoveChild(a.surface)
}
