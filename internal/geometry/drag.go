package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMinSize is the smallest width or height a scale drag may produce.
const DefaultMinSize = 1.0

// maxSkew keeps skew away from the vertical asymptote of tan.
const maxSkew = math.Pi/2 - 0.01

// Constraints configure how a drag is interpreted.
type Constraints struct {
	// CenteredScaling anchors scale drags at the box center instead of the
	// opposite edge or corner.
	CenteredScaling bool

	// LockAspectRatio keeps width/height constant for corner drags and
	// scales the secondary axis proportionally for edge drags.
	LockAspectRatio bool

	// AllowFlip permits a drag past the anchor to mirror the box. When false
	// the extent is clamped at MinSize on its original side.
	AllowFlip bool

	// MinSize is the smallest absolute width or height. Zero means
	// DefaultMinSize.
	MinSize float64

	RotationSnaps         []float64
	RotationSnapTolerance float64
	SkewSnaps             []float64
	SkewSnapTolerance     float64

	Offsets Offsets
}

func (c Constraints) minHalf() float64 {
	if c.MinSize > 0 {
		return c.MinSize / 2
	}
	return DefaultMinSize / 2
}

// ApplyHandleDrag computes the box that results from dragging h from origin
// to current, starting at box. The accumulated displacement is used rather
// than per-move increments so repeated moves never drift.
func ApplyHandleDrag(h Handle, box OrientedBox, origin, current mgl64.Vec2, c Constraints) (OrientedBox, error) {
	if box.IsEmpty() && h.Kind() != KindRotator {
		return box, ErrDegenerate
	}

	switch h.Kind() {
	case KindCorner, KindEdge:
		return scaleDrag(h, box, current.Sub(origin), c)
	case KindRotator:
		return rotateDrag(box, origin, current, c), nil
	case KindSkew:
		return skewDrag(h, box, current.Sub(origin), c)
	}
	return box, nil
}

// ApplyTranslate moves box by the accumulated pointer displacement.
func ApplyTranslate(box OrientedBox, origin, current mgl64.Vec2) OrientedBox {
	return box.Translate(current.Sub(origin))
}

// DeltaTransform returns the matrix that carries everything attached to from
// onto to. When the extents are unchanged the scale cancels out and the
// unscaled frames are used, so a box with a zero extent can still be moved,
// rotated and skewed.
func DeltaTransform(from, to OrientedBox) (Matrix2D, error) {
	src, dst := from.Matrix(), to.Matrix()
	if sameExtents(from, to) {
		src, dst = from.Frame(), to.Frame()
	}
	inv, ok := src.TryInvert()
	if !ok {
		return Identity(), ErrDegenerate
	}
	d := dst.Multiply(inv)
	if !d.IsFinite() || math.Abs(d.Determinant()) < Epsilon {
		return Identity(), ErrDegenerate
	}
	return d, nil
}

func sameExtents(a, b OrientedBox) bool {
	return math.Abs(a.HalfWidth-b.HalfWidth) < Epsilon && math.Abs(a.HalfHeight-b.HalfHeight) < Epsilon
}

func scaleDrag(h Handle, box OrientedBox, delta mgl64.Vec2, c Constraints) (OrientedBox, error) {
	local, ok := box.VectorToLocal(delta)
	if !ok {
		return box, ErrDegenerate
	}

	dir := h.Direction()
	half := mgl64.Vec2{box.HalfWidth, box.HalfHeight}
	factor := mgl64.Vec2{1, 1}

	for axis := 0; axis < 2; axis++ {
		if dir[axis] == 0 {
			continue
		}
		edge := dir[axis]*half[axis] + local[axis]
		var newHalf float64
		if c.CenteredScaling {
			newHalf = edge * dir[axis]
		} else {
			anchor := -dir[axis] * half[axis]
			newHalf = (edge - anchor) / 2 * dir[axis]
		}
		factor[axis] = newHalf / half[axis]
	}

	if c.LockAspectRatio {
		var f float64
		switch {
		case dir[0] != 0 && dir[1] != 0:
			f = factor[0]
			if math.Abs(factor[1]-1) > math.Abs(factor[0]-1) {
				f = factor[1]
			}
		case dir[0] != 0:
			f = factor[0]
		default:
			f = factor[1]
		}
		f = clampFactor(f, half, c)
		factor = mgl64.Vec2{f, f}
	} else {
		for axis := 0; axis < 2; axis++ {
			factor[axis] = clampFactor(factor[axis], mgl64.Vec2{half[axis], half[axis]}, c)
		}
	}

	newHalf := mgl64.Vec2{half[0] * factor[0], half[1] * factor[1]}

	// The anchor edge stays fixed on each dragged axis; undragged axes scale
	// about the center.
	var center mgl64.Vec2
	for axis := 0; axis < 2; axis++ {
		if dir[axis] == 0 || c.CenteredScaling {
			continue
		}
		anchor := -dir[axis] * half[axis]
		center[axis] = anchor + dir[axis]*newHalf[axis]
	}

	return OrientedBox{
		Center:     box.LocalToWorld(center),
		HalfWidth:  newHalf[0],
		HalfHeight: newHalf[1],
		Rotation:   box.Rotation,
		SkewX:      box.SkewX,
		SkewY:      box.SkewY,
	}, nil
}

// clampFactor keeps every scaled half-extent at or above the minimum size,
// resolving sign changes according to the flip policy.
func clampFactor(f float64, half mgl64.Vec2, c Constraints) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	if f < 0 && !c.AllowFlip {
		f = 0
	}

	minHalf := c.minHalf()
	floor := max(minHalf/math.Abs(half[0]), minHalf/math.Abs(half[1]))
	if math.Abs(f) < floor {
		if f < 0 {
			return -floor
		}
		return floor
	}
	return f
}

func rotateDrag(box OrientedBox, origin, current mgl64.Vec2, c Constraints) OrientedBox {
	v0 := origin.Sub(box.Center)
	v1 := current.Sub(box.Center)
	if v0.Len() < Epsilon || v1.Len() < Epsilon {
		return box
	}

	angle := box.Rotation + math.Atan2(v1[1], v1[0]) - math.Atan2(v0[1], v0[0])
	angle = Snap(NormalizeAngle(angle), c.RotationSnaps, c.RotationSnapTolerance)
	box.Rotation = NormalizeAngle(angle)
	return box
}

func skewDrag(h Handle, box OrientedBox, delta mgl64.Vec2, c Constraints) (OrientedBox, error) {
	local, ok := box.VectorToLocal(delta)
	if !ok {
		return box, ErrDegenerate
	}

	switch h {
	case SkewHorizontal:
		arm := box.HalfHeight + sign(box.HalfHeight)*c.Offsets.Skew
		if math.Abs(arm) < Epsilon {
			return box, ErrDegenerate
		}
		k := math.Atan(math.Tan(box.SkewX) + local[0]/arm)
		k = Snap(k, c.SkewSnaps, c.SkewSnapTolerance)
		box.SkewX = math.Max(-maxSkew, math.Min(maxSkew, k))
	case SkewVertical:
		arm := box.HalfWidth + sign(box.HalfWidth)*c.Offsets.Skew
		if math.Abs(arm) < Epsilon {
			return box, ErrDegenerate
		}
		k := math.Atan(math.Tan(box.SkewY) + local[1]/arm)
		k = Snap(k, c.SkewSnaps, c.SkewSnapTolerance)
		box.SkewY = math.Max(-maxSkew, math.Min(maxSkew, k))
	}
	return box, nil
}
