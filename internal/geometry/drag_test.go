package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() OrientedBox {
	return OrientedBox{Center: mgl64.Vec2{50, 50}, HalfWidth: 50, HalfHeight: 25}
}

func TestCornerDragKeepsOppositeCorner(t *testing.T) {
	box := square()
	origin := HandlePosition(box, BottomRight, Offsets{})

	got, err := ApplyHandleDrag(BottomRight, box, origin, origin.Add(mgl64.Vec2{20, 10}), Constraints{AllowFlip: true})
	require.NoError(t, err)

	assert.InDelta(t, 120, got.Width(), tol)
	assert.InDelta(t, 60, got.Height(), tol)
	assertVec(t, box.Point(0, 0), got.Point(0, 0))
}

func TestEdgeDragChangesOneAxis(t *testing.T) {
	box := square()
	origin := HandlePosition(box, MiddleLeft, Offsets{})

	got, err := ApplyHandleDrag(MiddleLeft, box, origin, origin.Add(mgl64.Vec2{-10, 40}), Constraints{AllowFlip: true})
	require.NoError(t, err)

	assert.InDelta(t, 110, got.Width(), tol)
	assert.InDelta(t, 50, got.Height(), tol)
	assertVec(t, box.Point(1, 0.5), got.Point(1, 0.5))
}

func TestCenteredScaling(t *testing.T) {
	box := square()
	origin := HandlePosition(box, BottomRight, Offsets{})

	got, err := ApplyHandleDrag(BottomRight, box, origin, origin.Add(mgl64.Vec2{10, 5}),
		Constraints{CenteredScaling: true, AllowFlip: true})
	require.NoError(t, err)

	assertVec(t, box.Center, got.Center)
	assert.InDelta(t, 120, got.Width(), tol)
	assert.InDelta(t, 60, got.Height(), tol)
}

func TestScaleDragProjectsIntoRotatedAxes(t *testing.T) {
	box := square()
	box.Rotation = math.Pi / 2
	origin := HandlePosition(box, MiddleRight, Offsets{})

	// the box's local x axis points down after a 90 degree rotation
	got, err := ApplyHandleDrag(MiddleRight, box, origin, origin.Add(mgl64.Vec2{0, 30}), Constraints{AllowFlip: true})
	require.NoError(t, err)
	assert.InDelta(t, 130, got.Width(), 1e-7)
	assert.InDelta(t, 50, got.Height(), 1e-7)
}

func TestAspectLockInvariant(t *testing.T) {
	deltas := []mgl64.Vec2{
		{30, 0}, {0, 30}, {17, -4}, {-60, -20}, {-150, -80}, {200, 3}, {1, 1},
	}
	for _, h := range []Handle{TopLeft, TopRight, BottomLeft, BottomRight} {
		for _, d := range deltas {
			box := square()
			origin := HandlePosition(box, h, Offsets{})
			got, err := ApplyHandleDrag(h, box, origin, origin.Add(d), Constraints{LockAspectRatio: true, AllowFlip: true})
			require.NoError(t, err)
			assert.InDelta(t, box.Width()/box.Height(), got.Width()/got.Height(), 1e-9, "%s %v", h, d)
		}
	}
}

func TestAspectLockEdgeScalesSecondaryAxis(t *testing.T) {
	box := square()
	origin := HandlePosition(box, MiddleRight, Offsets{})

	got, err := ApplyHandleDrag(MiddleRight, box, origin, origin.Add(mgl64.Vec2{100, 0}), Constraints{LockAspectRatio: true, AllowFlip: true})
	require.NoError(t, err)
	assert.InDelta(t, 200, got.Width(), tol)
	assert.InDelta(t, 100, got.Height(), tol)
	// the anchor edge stays put and the secondary axis grows about its middle
	assertVec(t, box.Point(0, 0.5), got.Point(0, 0.5))
}

func TestDegenerateSizeClamp(t *testing.T) {
	tests := []struct {
		name      string
		c         Constraints
		delta     mgl64.Vec2
		wantFlipX bool
	}{
		{"exactly onto opposite corner, flip allowed", Constraints{AllowFlip: true}, mgl64.Vec2{-100, -50}, false},
		{"exactly onto opposite corner, no flip", Constraints{}, mgl64.Vec2{-100, -50}, false},
		{"past opposite corner, flip allowed", Constraints{AllowFlip: true}, mgl64.Vec2{-140, -70}, true},
		{"past opposite corner, no flip", Constraints{}, mgl64.Vec2{-140, -70}, false},
		{"past opposite corner, aspect locked", Constraints{AllowFlip: true, LockAspectRatio: true}, mgl64.Vec2{-140, -70}, true},
		{"custom min size", Constraints{MinSize: 10}, mgl64.Vec2{-99, -49}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := square()
			origin := HandlePosition(box, BottomRight, Offsets{})
			got, err := ApplyHandleDrag(BottomRight, box, origin, origin.Add(tt.delta), tt.c)
			require.NoError(t, err)

			minSize := tt.c.MinSize
			if minSize == 0 {
				minSize = DefaultMinSize
			}
			for _, v := range []float64{got.Width(), got.Height()} {
				assert.False(t, math.IsNaN(v))
				assert.GreaterOrEqual(t, math.Abs(v), minSize-1e-9)
			}
			assert.Equal(t, tt.wantFlipX, got.Width() < 0)
			assert.Equal(t, got.Width() < 0, got.Height() < 0, "both axes flip together for a diagonal drag")
		})
	}
}

func TestRotatorDrag(t *testing.T) {
	box := square()
	origin := HandlePosition(box, Rotator, Offsets{Rotator: 20})

	// move the rotator to the right of the center: a quarter turn clockwise
	got, err := ApplyHandleDrag(Rotator, box, origin, box.Center.Add(mgl64.Vec2{80, 0}), Constraints{})
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, got.Rotation, 1e-9)
	assert.InDelta(t, box.HalfWidth, got.HalfWidth, tol)
	assertVec(t, box.Center, got.Center)
}

func TestRotatorSnapping(t *testing.T) {
	box := square()
	c := Constraints{RotationSnaps: []float64{0, Radians(90)}, RotationSnapTolerance: Radians(5)}
	origin := box.Center.Add(mgl64.Vec2{0, -100})

	at := func(deg float64) mgl64.Vec2 {
		// pointer direction for a box rotation of deg degrees
		a := Radians(deg) - math.Pi/2
		return box.Center.Add(mgl64.Vec2{math.Cos(a) * 100, math.Sin(a) * 100})
	}

	got, err := ApplyHandleDrag(Rotator, box, origin, at(92), c)
	require.NoError(t, err)
	assert.InDelta(t, Radians(90), got.Rotation, 1e-9)

	got, err = ApplyHandleDrag(Rotator, box, origin, at(80), c)
	require.NoError(t, err)
	assert.InDelta(t, Radians(80), got.Rotation, 1e-9)
}

func TestSkewDrag(t *testing.T) {
	box := square()
	off := Offsets{Skew: 10}
	origin := HandlePosition(box, SkewHorizontal, off)

	got, err := ApplyHandleDrag(SkewHorizontal, box, origin, origin.Add(mgl64.Vec2{35, 0}), Constraints{Offsets: off})
	require.NoError(t, err)
	assert.InDelta(t, math.Atan(35.0/35.0), got.SkewX, 1e-9)
	assert.InDelta(t, 0, got.SkewY, tol)

	snapped, err := ApplyHandleDrag(SkewHorizontal, box, origin, origin.Add(mgl64.Vec2{34, 0}),
		Constraints{Offsets: off, SkewSnaps: []float64{math.Pi / 4}, SkewSnapTolerance: Radians(3)})
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/4, snapped.SkewX, 1e-9)
}

func TestDragOnEmptyBoxIsDegenerate(t *testing.T) {
	box := OrientedBox{Center: mgl64.Vec2{1, 1}}
	got, err := ApplyHandleDrag(BottomRight, box, mgl64.Vec2{1, 1}, mgl64.Vec2{5, 5}, Constraints{})
	assert.ErrorIs(t, err, ErrDegenerate)
	assert.Equal(t, box, got)
}

func TestDeltaTransform(t *testing.T) {
	from := square()
	to := from
	to.HalfWidth *= 2
	to.Rotation = 0.3
	to.Center = to.Center.Add(mgl64.Vec2{5, 5})

	d, err := DeltaTransform(from, to)
	require.NoError(t, err)
	for i, c := range from.Corners() {
		assertVec(t, to.Corners()[i], d.Apply(c))
	}

	_, err = DeltaTransform(OrientedBox{}, to)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestDeltaTransformFlatBox(t *testing.T) {
	from := OrientedBox{Center: mgl64.Vec2{50, 0}, HalfWidth: 50}
	to := from
	to.Rotation = math.Pi / 2

	d, err := DeltaTransform(from, to)
	require.NoError(t, err)
	assertVec(t, mgl64.Vec2{50, -50}, d.Apply(mgl64.Vec2{0, 0}))
	assertVec(t, mgl64.Vec2{50, 50}, d.Apply(mgl64.Vec2{100, 0}))

	moved := from.Translate(mgl64.Vec2{10, 5})
	d, err = DeltaTransform(from, moved)
	require.NoError(t, err)
	assertVec(t, mgl64.Vec2{10, 5}, d.Apply(mgl64.Vec2{0, 0}))

	grown := from
	grown.HalfHeight = 10
	_, err = DeltaTransform(from, grown)
	assert.ErrorIs(t, err, ErrDegenerate, "a zero extent cannot be scaled")
}
