// Package wireframe draws the outline of the selected group and the
// connector to the rotator handle. The outline doubles as a drag target for
// scaling near its edges, rotating outside its corners and translating
// from inside.
package wireframe

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/handle"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/surface"
)

const (
	DefaultEdgeTolerance     = 6.0
	DefaultRotationTolerance = 24.0
)

// TargetKind tells what a drag on the wireframe manipulates.
type TargetKind int

const (
	TargetNone TargetKind = iota
	// TargetHandle behaves like a drag on Target.Handle.
	TargetHandle
	TargetTranslate
)

// Target is the result of a wireframe hit test.
type Target struct {
	Kind   TargetKind
	Handle geometry.Handle
}

// Routing enables the wireframe's drag behaviors.
type Routing struct {
	BoxScaling  bool
	BoxRotation bool
	Translate   bool

	EdgeTolerance     float64
	RotationTolerance float64
}

func (r Routing) edgeTol() float64 {
	if r.EdgeTolerance > 0 {
		return r.EdgeTolerance
	}
	return DefaultEdgeTolerance
}

func (r Routing) rotationTol() float64 {
	if r.RotationTolerance > 0 {
		return r.RotationTolerance
	}
	return DefaultRotationTolerance
}

// Callbacks receive wireframe drags.
type Callbacks struct {
	OnStart  func(t Target, origin mgl64.Vec2) bool
	OnDelta  func(t Target, p mgl64.Vec2)
	OnCommit func(t Target)
	// OnClick receives a press and release without movement.
	OnClick func(t Target, p mgl64.Vec2)
}

// Wireframe is the group outline.
type Wireframe struct {
	style   style.WireframeStyle
	routing Routing

	surface surface.Surface
	parent  surface.Surface
	node    *pointer.Node
	tracker *pointer.DragTracker

	box     geometry.OrientedBox
	visible bool
	dirty   bool
	pressed Target
}

// New creates a wireframe drawing into a child of parent. Its pointer node
// is placed beneath every node already on the stage.
func New(parent surface.Surface, stage *pointer.Stage, st style.WireframeStyle, routing Routing, cb Callbacks) *Wireframe {
	w := &Wireframe{
		style:   st,
		routing: routing,
		parent:  parent,
		surface: parent.AddChild("wireframe"),
		dirty:   true,
	}

	w.node = pointer.NewNode("wireframe", func(p mgl64.Vec2) bool {
		_, ok := w.HitTest(p)
		return ok
	})
	w.node.CursorAt = w.cursorAt
	w.node.Disabled = true
	stage.AddBelow(w.node)

	w.tracker = &pointer.DragTracker{
		OnPress: func(p mgl64.Vec2) {
			w.pressed, _ = w.HitTest(p)
		},
		OnStart: func(origin mgl64.Vec2) bool {
			if w.pressed.Kind == TargetNone || cb.OnStart == nil {
				return false
			}
			return cb.OnStart(w.pressed, origin)
		},
		OnDelta: func(p mgl64.Vec2) {
			if cb.OnDelta != nil {
				cb.OnDelta(w.pressed, p)
			}
		},
		OnCommit: func() {
			if cb.OnCommit != nil {
				cb.OnCommit(w.pressed)
			}
		},
		OnClick: func(p mgl64.Vec2) {
			if cb.OnClick != nil {
				cb.OnClick(w.pressed, p)
			}
		},
	}
	w.tracker.Attach(w.node, stage)
	return w
}

// Node returns the pointer node.
func (w *Wireframe) Node() *pointer.Node { return w.node }

// Tracker exposes the drag state.
func (w *Wireframe) Tracker() *pointer.DragTracker { return w.tracker }

// Box returns the outlined box.
func (w *Wireframe) Box() geometry.OrientedBox { return w.box }

// SetBox moves the outline.
func (w *Wireframe) SetBox(b geometry.OrientedBox) {
	if b == w.box {
		return
	}
	w.box = b
	w.dirty = true
}

// Style returns the current style.
func (w *Wireframe) Style() style.WireframeStyle { return w.style }

// SetStyle replaces the style.
func (w *Wireframe) SetStyle(s style.WireframeStyle) {
	if s == w.style {
		return
	}
	w.style = s
	w.dirty = true
}

// Routing returns the drag routing.
func (w *Wireframe) Routing() Routing { return w.routing }

// SetRouting replaces the drag routing.
func (w *Wireframe) SetRouting(r Routing) { w.routing = r }

// SetVisible shows or hides the outline. A hidden wireframe is inert.
func (w *Wireframe) SetVisible(v bool) {
	if v == w.visible {
		return
	}
	w.visible = v
	w.node.Disabled = !v
	w.dirty = true
}

// Visible reports whether the outline is shown.
func (w *Wireframe) Visible() bool { return w.visible }

// HitTest routes p to a drag target. Edges win over corner rotation, which
// wins over the interior.
func (w *Wireframe) HitTest(p mgl64.Vec2) (Target, bool) {
	if !w.visible || w.box.IsEmpty() {
		return Target{}, false
	}
	local, ok := w.box.WorldToLocal(p)
	if !ok {
		return Target{}, false
	}

	hw, hh := math.Abs(w.box.HalfWidth), math.Abs(w.box.HalfHeight)
	ex := math.Abs(local[0]) - hw // distance outside each edge pair
	ey := math.Abs(local[1]) - hh
	tol := w.routing.edgeTol()

	if w.routing.BoxScaling && ex <= tol && ey <= tol {
		nearX, nearY := math.Abs(ex) <= tol, math.Abs(ey) <= tol
		if nearX || nearY {
			var dx, dy float64
			if nearX {
				dx = math.Copysign(1, local[0]*w.box.HalfWidth)
			}
			if nearY {
				dy = math.Copysign(1, local[1]*w.box.HalfHeight)
			}
			if h, ok := handleFor(dx, dy); ok {
				return Target{Kind: TargetHandle, Handle: h}, true
			}
		}
	}

	if w.routing.BoxRotation && ex > 0 && ey > 0 && math.Hypot(ex, ey) <= w.routing.rotationTol() {
		return Target{Kind: TargetHandle, Handle: geometry.Rotator}, true
	}

	if ex <= 0 && ey <= 0 {
		if w.routing.Translate {
			return Target{Kind: TargetTranslate}, true
		}
		// still claim the press so clicks on the group are reported
		return Target{}, true
	}
	return Target{}, false
}

func (w *Wireframe) cursorAt(p mgl64.Vec2) string {
	t, _ := w.HitTest(p)
	switch t.Kind {
	case TargetHandle:
		return handle.CursorFor(t.Handle, w.box.Rotation)
	case TargetTranslate:
		return "move"
	}
	return ""
}

func handleFor(dx, dy float64) (geometry.Handle, bool) {
	for _, h := range geometry.AllHandles {
		if k := h.Kind(); k != geometry.KindCorner && k != geometry.KindEdge {
			continue
		}
		if h.Direction() == (mgl64.Vec2{dx, dy}) {
			return h, true
		}
	}
	return 0, false
}

// Render redraws the outline when it changed and reports whether it did.
func (w *Wireframe) Render() bool {
	if !w.dirty {
		return false
	}
	w.dirty = false
	s := w.surface
	s.Clear()
	if !w.visible || w.box.IsEmpty() {
		return true
	}
	c := w.box.Corners()
	s.LineStyle(w.style.Thickness, w.style.Color, w.style.Alpha)
	s.DrawPolygon(c[:])
	return true
}

// Destroy detaches the wireframe.
func (w *Wireframe) Destroy(stage *pointer.Stage) {
	w.tracker.Detach()
	stage.Remove(w.node)
	w.parent.RemoveChild(w.surface)
}
