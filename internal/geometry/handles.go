package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle identifies one draggable control of the transformer.
type Handle int

const (
	TopLeft Handle = iota
	TopCenter
	TopRight
	MiddleLeft
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
	Rotator
	SkewHorizontal
	SkewVertical
)

// AllHandles lists every handle in drawing order.
var AllHandles = []Handle{
	TopLeft, TopCenter, TopRight,
	MiddleLeft, MiddleRight,
	BottomLeft, BottomCenter, BottomRight,
	Rotator, SkewHorizontal, SkewVertical,
}

var handleNames = map[Handle]string{
	TopLeft:        "topLeft",
	TopCenter:      "topCenter",
	TopRight:       "topRight",
	MiddleLeft:     "middleLeft",
	MiddleRight:    "middleRight",
	BottomLeft:     "bottomLeft",
	BottomCenter:   "bottomCenter",
	BottomRight:    "bottomRight",
	Rotator:        "rotator",
	SkewHorizontal: "skewHorizontal",
	SkewVertical:   "skewVertical",
}

func (h Handle) String() string {
	if name, ok := handleNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Handle(%d)", int(h))
}

// ParseHandle converts a handle name such as "bottomRight" to a Handle.
func ParseHandle(name string) (Handle, error) {
	for h, n := range handleNames {
		if n == name {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown handle %q", name)
}

// Kind is the closed set of handle shapes.
type Kind int

const (
	KindCorner Kind = iota
	KindEdge
	KindRotator
	KindSkew
)

func (k Kind) String() string {
	switch k {
	case KindCorner:
		return "corner"
	case KindEdge:
		return "edge"
	case KindRotator:
		return "rotator"
	case KindSkew:
		return "skew"
	}
	return "unknown"
}

// Kind returns the handle's shape category.
func (h Handle) Kind() Kind {
	switch h {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return KindCorner
	case TopCenter, MiddleLeft, MiddleRight, BottomCenter:
		return KindEdge
	case Rotator:
		return KindRotator
	default:
		return KindSkew
	}
}

// Caps is a set of degrees of freedom a handle controls.
type Caps uint8

const (
	CapScaleX Caps = 1 << iota
	CapScaleY
	CapRotate
	CapSkewX
	CapSkewY
)

// Has reports whether all bits of c2 are set.
func (c Caps) Has(c2 Caps) bool { return c&c2 == c2 }

// Caps returns what the handle can change.
func (h Handle) Caps() Caps {
	switch h {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		return CapScaleX | CapScaleY
	case MiddleLeft, MiddleRight:
		return CapScaleX
	case TopCenter, BottomCenter:
		return CapScaleY
	case Rotator:
		return CapRotate
	case SkewHorizontal:
		return CapSkewX
	case SkewVertical:
		return CapSkewY
	}
	return 0
}

// Anchor returns the handle's position in normalized box space, where
// (0, 0) is the top-left and (1, 1) the bottom-right corner.
func (h Handle) Anchor() mgl64.Vec2 {
	switch h {
	case TopLeft:
		return mgl64.Vec2{0, 0}
	case TopCenter, Rotator:
		return mgl64.Vec2{0.5, 0}
	case TopRight:
		return mgl64.Vec2{1, 0}
	case MiddleLeft:
		return mgl64.Vec2{0, 0.5}
	case MiddleRight, SkewVertical:
		return mgl64.Vec2{1, 0.5}
	case BottomLeft:
		return mgl64.Vec2{0, 1}
	case BottomCenter, SkewHorizontal:
		return mgl64.Vec2{0.5, 1}
	case BottomRight:
		return mgl64.Vec2{1, 1}
	}
	return mgl64.Vec2{0.5, 0.5}
}

// Direction returns -1, 0 or 1 per axis: the side of the box the handle
// sits on.
func (h Handle) Direction() mgl64.Vec2 {
	a := h.Anchor()
	return mgl64.Vec2{(a[0] - 0.5) * 2, (a[1] - 0.5) * 2}
}

// Offsets are the pixel distances of the handles that sit outside the box.
type Offsets struct {
	Rotator float64
	Skew    float64
}

// HandlePosition returns the world position of h on box.
func HandlePosition(box OrientedBox, h Handle, off Offsets) mgl64.Vec2 {
	a := h.Anchor()
	p := box.Point(a[0], a[1])
	xAxis, yAxis := box.Axes()

	switch h {
	case Rotator:
		return p.Sub(yAxis.Mul(off.Rotator))
	case SkewHorizontal:
		return p.Add(yAxis.Mul(off.Skew))
	case SkewVertical:
		return p.Add(xAxis.Mul(off.Skew))
	}
	return p
}
