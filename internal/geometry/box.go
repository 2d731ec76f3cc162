package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p[0] >= r.X && p[0] <= r.X+r.Width && p[1] >= r.Y && p[1] <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rect.
func (r Rect) Center() mgl64.Vec2 {
	return mgl64.Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Corners returns the corners clockwise from the top-left.
func (r Rect) Corners() [4]mgl64.Vec2 {
	return [4]mgl64.Vec2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}

// OrientedBox is a rectangle with a center, signed half-extents, a rotation
// and an optional skew. A negative half-extent means the box is mirrored on
// that axis.
type OrientedBox struct {
	Center     mgl64.Vec2 `json:"center"`
	HalfWidth  float64    `json:"halfWidth"`
	HalfHeight float64    `json:"halfHeight"`
	Rotation   float64    `json:"rotation"`
	SkewX      float64    `json:"skewX"`
	SkewY      float64    `json:"skewY"`
}

// BoxFromRect returns the axis-aligned box covering r.
func BoxFromRect(r Rect) OrientedBox {
	return OrientedBox{
		Center:     r.Center(),
		HalfWidth:  r.Width / 2,
		HalfHeight: r.Height / 2,
	}
}

// Width returns the signed width.
func (b OrientedBox) Width() float64 { return 2 * b.HalfWidth }

// Height returns the signed height.
func (b OrientedBox) Height() float64 { return 2 * b.HalfHeight }

// IsEmpty reports whether either extent is degenerate.
func (b OrientedBox) IsEmpty() bool {
	return math.Abs(b.HalfWidth) < Epsilon || math.Abs(b.HalfHeight) < Epsilon
}

// Frame maps box-local pixel coordinates (origin at the center, axes along
// the rotated and skewed box edges) to world coordinates.
func (b OrientedBox) Frame() Matrix2D {
	return Translate(b.Center[0], b.Center[1]).
		Multiply(Rotate(b.Rotation)).
		Multiply(Shear(b.SkewX, b.SkewY))
}

// Matrix maps normalized box space, centered on the origin so that
// (-0.5, -0.5) is the top-left corner, to world coordinates.
func (b OrientedBox) Matrix() Matrix2D {
	return b.Frame().Multiply(Scale(b.Width(), b.Height()))
}

// Point returns the world position of the normalized anchor (u, v), where
// (0, 0) is the top-left and (1, 1) the bottom-right corner.
func (b OrientedBox) Point(u, v float64) mgl64.Vec2 {
	return b.Matrix().Apply(mgl64.Vec2{u - 0.5, v - 0.5})
}

// LocalToWorld maps a box-local pixel offset to world coordinates.
func (b OrientedBox) LocalToWorld(p mgl64.Vec2) mgl64.Vec2 {
	return b.Frame().Apply(p)
}

// WorldToLocal maps a world point into box-local pixel coordinates.
func (b OrientedBox) WorldToLocal(p mgl64.Vec2) (mgl64.Vec2, bool) {
	inv, ok := b.Frame().TryInvert()
	if !ok {
		return mgl64.Vec2{}, false
	}
	return inv.Apply(p), true
}

// VectorToLocal projects a world-space displacement onto the box axes.
func (b OrientedBox) VectorToLocal(v mgl64.Vec2) (mgl64.Vec2, bool) {
	inv, ok := b.Frame().Linear().TryInvert()
	if !ok {
		return mgl64.Vec2{}, false
	}
	return inv.ApplyVector(v), true
}

// Corners returns the world corners in order top-left, top-right,
// bottom-right, bottom-left.
func (b OrientedBox) Corners() [4]mgl64.Vec2 {
	return [4]mgl64.Vec2{
		b.Point(0, 0),
		b.Point(1, 0),
		b.Point(1, 1),
		b.Point(0, 1),
	}
}

// Contains reports whether p lies inside the box, expanded by pad pixels.
func (b OrientedBox) Contains(p mgl64.Vec2, pad float64) bool {
	local, ok := b.WorldToLocal(p)
	if !ok {
		return false
	}
	return math.Abs(local[0]) <= math.Abs(b.HalfWidth)+pad &&
		math.Abs(local[1]) <= math.Abs(b.HalfHeight)+pad
}

// Translate returns the box moved by d.
func (b OrientedBox) Translate(d mgl64.Vec2) OrientedBox {
	b.Center = b.Center.Add(d)
	return b
}

// Axes returns the unit directions of the box's local x and y axes in world
// space, accounting for rotation, skew and mirroring.
func (b OrientedBox) Axes() (x, y mgl64.Vec2) {
	f := b.Frame()
	x = f.ApplyVector(mgl64.Vec2{sign(b.HalfWidth), 0})
	y = f.ApplyVector(mgl64.Vec2{0, sign(b.HalfHeight)})
	if x.Len() > Epsilon {
		x = x.Normalize()
	}
	if y.Len() > Epsilon {
		y = y.Normalize()
	}
	return x, y
}

// ApproxEqual compares two boxes within tol.
func (b OrientedBox) ApproxEqual(o OrientedBox, tol float64) bool {
	return math.Abs(b.Center[0]-o.Center[0]) <= tol &&
		math.Abs(b.Center[1]-o.Center[1]) <= tol &&
		math.Abs(b.HalfWidth-o.HalfWidth) <= tol &&
		math.Abs(b.HalfHeight-o.HalfHeight) <= tol &&
		math.Abs(AngleDelta(b.Rotation, o.Rotation)) <= tol &&
		math.Abs(b.SkewX-o.SkewX) <= tol &&
		math.Abs(b.SkewY-o.SkewY) <= tol
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
