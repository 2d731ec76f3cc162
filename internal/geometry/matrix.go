package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the smallest scale, determinant or extent treated as non-degenerate.
const Epsilon = 1e-9

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Shear returns a matrix that skews x by tan(kx)*y and y by tan(ky)*x.
func Shear(kx, ky float64) Matrix2D {
	return Matrix2D{1, math.Tan(ky), math.Tan(kx), 1, 0, 0}
}

// Multiply returns m * other, which applies other first and then m.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Apply transforms a point.
func (m Matrix2D) Apply(p mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{m[0]*p[0] + m[2]*p[1] + m[4], m[1]*p[0] + m[3]*p[1] + m[5]}
}

// ApplyVector transforms a direction, ignoring translation.
func (m Matrix2D) ApplyVector(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{m[0]*v[0] + m[2]*v[1], m[1]*v[0] + m[3]*v[1]}
}

// Linear returns m with its translation removed.
func (m Matrix2D) Linear() Matrix2D {
	return Matrix2D{m[0], m[1], m[2], m[3], 0, 0}
}

// Translation returns the translation column.
func (m Matrix2D) Translation() mgl64.Vec2 {
	return mgl64.Vec2{m[4], m[5]}
}

// Determinant returns the determinant of the linear part.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// TryInvert returns the inverse of m. ok is false when m is singular
// or contains non-finite values.
func (m Matrix2D) TryInvert() (Matrix2D, bool) {
	if !m.IsFinite() {
		return Identity(), false
	}
	det := m.Determinant()
	if math.Abs(det) < Epsilon {
		return Identity(), false
	}

	inv := 1.0 / det
	return Matrix2D{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}, true
}

// IsFinite reports whether no coefficient is NaN or infinite.
func (m Matrix2D) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares coefficients within tol.
func (m Matrix2D) ApproxEqual(other Matrix2D, tol float64) bool {
	for i := range m {
		if math.Abs(m[i]-other[i]) > tol {
			return false
		}
	}
	return true
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}
