package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a member's geometry as seen by the bounds computation: its local
// transform in the shared parent frame and its content rectangle in its own
// coordinates.
type Shape struct {
	Transform Transform
	Bounds    Rect
}

// WorldCorners returns the content rectangle's corners in the parent frame.
func (s Shape) WorldCorners() [4]mgl64.Vec2 {
	m := s.Transform.Matrix()
	var out [4]mgl64.Vec2
	for i, c := range s.Bounds.Corners() {
		out[i] = m.Apply(c)
	}
	return out
}

// BoundsOptions controls the orientation of a group's bounding box.
type BoundsOptions struct {
	// Rotation orients the box for multi-member groups. Zero gives an
	// axis-aligned box in the parent frame.
	Rotation float64

	// InheritSingleRotation orients a single-member group along that
	// member's own rotation instead of Rotation.
	InheritSingleRotation bool
}

// ComputeGroupBounds returns the smallest box with the requested orientation
// enclosing every shape. ok is false for an empty group.
func ComputeGroupBounds(shapes []Shape, opts BoundsOptions) (OrientedBox, bool) {
	if len(shapes) == 0 {
		return OrientedBox{}, false
	}

	rotation := opts.Rotation
	if opts.InheritSingleRotation && len(shapes) == 1 {
		rotation = shapes[0].Transform.Rotation
	}

	toLocal := Rotate(-rotation)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range shapes {
		for _, c := range s.WorldCorners() {
			p := toLocal.Apply(c)
			minX = min(minX, p[0])
			minY = min(minY, p[1])
			maxX = max(maxX, p[0])
			maxY = max(maxY, p[1])
		}
	}
	if math.IsInf(minX, 0) || math.IsNaN(minX) || math.IsNaN(maxY) {
		return OrientedBox{}, false
	}

	center := Rotate(rotation).Apply(mgl64.Vec2{(minX + maxX) / 2, (minY + maxY) / 2})
	return OrientedBox{
		Center:     center,
		HalfWidth:  (maxX - minX) / 2,
		HalfHeight: (maxY - minY) / 2,
		Rotation:   NormalizeAngle(rotation),
	}, true
}

// AxisAlignedBounds returns the axis-aligned rectangle enclosing the shapes.
func AxisAlignedBounds(shapes []Shape) Rect {
	box, ok := ComputeGroupBounds(shapes, BoundsOptions{})
	if !ok {
		return Rect{}
	}
	return Rect{
		X:      box.Center[0] - box.HalfWidth,
		Y:      box.Center[1] - box.HalfHeight,
		Width:  box.Width(),
		Height: box.Height(),
	}
}

// Contains reports whether the parent-frame point p lies on the shape's
// content rectangle.
func (s Shape) Contains(p mgl64.Vec2) bool {
	inv, ok := s.Transform.Matrix().TryInvert()
	if !ok {
		return false
	}
	return s.Bounds.Contains(inv.Apply(p))
}
