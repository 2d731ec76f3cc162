package geometry

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerate is returned when a matrix has a (near) zero scale or
// determinant and cannot be decomposed or inverted.
var ErrDegenerate = errors.New("degenerate transform")

// Transform holds the decomposed local transform of a visual object.
// Angles are in radians. The pivot is in the object's own coordinates and
// maps onto (X, Y) in the parent frame.
type Transform struct {
	X        float64 `json:"x" toml:"x"`
	Y        float64 `json:"y" toml:"y"`
	ScaleX   float64 `json:"scaleX" toml:"scale_x"`
	ScaleY   float64 `json:"scaleY" toml:"scale_y"`
	Rotation float64 `json:"rotation" toml:"rotation"`
	SkewX    float64 `json:"skewX" toml:"skew_x"`
	SkewY    float64 `json:"skewY" toml:"skew_y"`
	PivotX   float64 `json:"pivotX" toml:"pivot_x"`
	PivotY   float64 `json:"pivotY" toml:"pivot_y"`
}

// IdentityTransform returns a transform with unit scale at the origin.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Matrix composes T(x, y) * RS * T(-pivot), where RS carries rotation,
// skew and scale:
//
//	a = cos(r+skewY)*sx   c = -sin(r-skewX)*sy
//	b = sin(r+skewY)*sx   d =  cos(r-skewX)*sy
func (t Transform) Matrix() Matrix2D {
	a := math.Cos(t.Rotation+t.SkewY) * t.ScaleX
	b := math.Sin(t.Rotation+t.SkewY) * t.ScaleX
	c := -math.Sin(t.Rotation-t.SkewX) * t.ScaleY
	d := math.Cos(t.Rotation-t.SkewX) * t.ScaleY

	return Matrix2D{
		a, b, c, d,
		t.X - (a*t.PivotX + c*t.PivotY),
		t.Y - (b*t.PivotX + d*t.PivotY),
	}
}

// Pivot returns the pivot as a vector.
func (t Transform) Pivot() mgl64.Vec2 {
	return mgl64.Vec2{t.PivotX, t.PivotY}
}

// Decompose splits m into position, scale, rotation and skew with a zero
// pivot. See DecomposeWithPivot.
func Decompose(m Matrix2D) (Transform, error) {
	return DecomposeWithPivot(m, mgl64.Vec2{})
}

// DecomposeWithPivot splits m into a Transform whose Matrix() reproduces m
// for the given pivot. The result is canonical: skew is expressed in SkewX
// only and a negative determinant is carried by ScaleY.
func DecomposeWithPivot(m Matrix2D, pivot mgl64.Vec2) (Transform, error) {
	if !m.IsFinite() {
		return Transform{}, ErrDegenerate
	}

	a, b, c, d := m[0], m[1], m[2], m[3]
	sx := math.Hypot(a, b)
	sy := math.Hypot(c, d)
	det := m.Determinant()
	if sx < Epsilon || sy < Epsilon || math.Abs(det) < Epsilon {
		return Transform{}, ErrDegenerate
	}
	if det < 0 {
		sy = -sy
	}

	rotation := math.Atan2(b, a)
	phi := math.Atan2(-c/sy, d/sy)

	pos := m.Apply(pivot)
	return Transform{
		X:        pos[0],
		Y:        pos[1],
		ScaleX:   sx,
		ScaleY:   sy,
		Rotation: rotation,
		SkewX:    NormalizeAngle(rotation - phi),
		PivotX:   pivot[0],
		PivotY:   pivot[1],
	}, nil
}

// NormalizeAngle maps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// AngleDelta returns the signed shortest rotation from a to b.
func AngleDelta(a, b float64) float64 {
	return NormalizeAngle(b - a)
}
