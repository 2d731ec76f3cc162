package pointer

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// HitTest reports whether a global point lies on a node.
type HitTest func(p mgl64.Vec2) bool

// Node is an interactive area on the stage.
type Node struct {
	Name    string
	HitTest HitTest

	// Cursor is a CSS-style cursor hint shown while hovering the node.
	// CursorAt, when set, takes precedence and may vary with position.
	Cursor   string
	CursorAt func(p mgl64.Vec2) string

	// Disabled nodes are skipped by hit testing.
	Disabled bool

	reg registry
}

// NewNode creates a node with the given hit test.
func NewNode(name string, hit HitTest) *Node {
	return &Node{Name: name, HitTest: hit}
}

// On subscribes to events delivered to this node.
func (n *Node) On(t Type, fn Listener) Subscription {
	return n.reg.add(t, fn)
}

// Listeners returns the number of listeners registered for t.
func (n *Node) Listeners(t Type) int {
	return n.reg.count(t)
}

func (n *Node) hit(p mgl64.Vec2) bool {
	return !n.Disabled && n.HitTest != nil && n.HitTest(p)
}

// Stage is the root of pointer dispatch. Nodes are hit-tested top-most
// first; the pressed node receives the matching up or up-outside event and
// stage listeners receive every event that was not stopped.
type Stage struct {
	reg     registry
	nodes   []*Node // bottom to top
	pressed *Node
	held    bool
	last    mgl64.Vec2
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{}
}

// On subscribes to stage-level events. Move listeners on the stage receive
// every move regardless of hit area.
func (s *Stage) On(t Type, fn Listener) Subscription {
	return s.reg.add(t, fn)
}

// Listeners returns the number of stage listeners registered for t.
func (s *Stage) Listeners(t Type) int {
	return s.reg.count(t)
}

// Add places n above all existing nodes.
func (s *Stage) Add(n *Node) {
	s.nodes = append(s.nodes, n)
}

// AddBelow places n underneath all existing nodes.
func (s *Stage) AddBelow(n *Node) {
	s.nodes = append([]*Node{n}, s.nodes...)
}

// Remove detaches n from the stage.
func (s *Stage) Remove(n *Node) {
	if i := slices.Index(s.nodes, n); i >= 0 {
		s.nodes = slices.Delete(s.nodes, i, i+1)
	}
	if s.pressed == n {
		s.pressed = nil
	}
}

// Nodes returns the nodes bottom to top.
func (s *Stage) Nodes() []*Node {
	return s.nodes
}

// HitTest returns the top-most node under p, or nil.
func (s *Stage) HitTest(p mgl64.Vec2) *Node {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].hit(p) {
			return s.nodes[i]
		}
	}
	return nil
}

// Cursor returns the cursor hint for the node under p.
func (s *Stage) Cursor(p mgl64.Vec2) string {
	n := s.HitTest(p)
	if n == nil {
		return ""
	}
	if n.CursorAt != nil {
		if c := n.CursorAt(p); c != "" {
			return c
		}
	}
	return n.Cursor
}

// Position returns the last dispatched pointer position.
func (s *Stage) Position() mgl64.Vec2 {
	return s.last
}

// Dispatch routes one pointer event and reports whether any listener
// stopped its propagation.
func (s *Stage) Dispatch(t Type, p mgl64.Vec2) bool {
	switch t {
	case Down:
		return s.PointerDown(p)
	case Move:
		return s.PointerMove(p)
	default:
		return s.PointerUp(p)
	}
}

// Held reports whether the pointer is pressed.
func (s *Stage) Held() bool {
	return s.held
}

// PointerDown presses the top-most node under p. A press while the pointer
// is already held is ignored; the first press keeps the pointer until up.
func (s *Stage) PointerDown(p mgl64.Vec2) bool {
	if s.held {
		return false
	}
	s.held = true
	s.last = p
	n := s.HitTest(p)
	s.pressed = n

	ev := &Event{Type: Down, Global: p, Target: n}
	if n != nil {
		n.reg.call(ev)
	}
	if !ev.stopped {
		s.reg.call(ev)
	}
	return ev.stopped
}

// PointerMove delivers a global move to stage listeners.
func (s *Stage) PointerMove(p mgl64.Vec2) bool {
	s.last = p
	ev := &Event{Type: Move, Global: p, Target: s.pressed}
	s.reg.call(ev)
	return ev.stopped
}

// PointerUp releases the pressed node. It receives Up when p is still over
// it and UpOutside otherwise.
func (s *Stage) PointerUp(p mgl64.Vec2) bool {
	s.last = p
	n := s.pressed
	s.pressed = nil
	s.held = false

	ev := &Event{Type: Up, Global: p, Target: n}
	if n != nil {
		if !n.hit(p) {
			ev.Type = UpOutside
		}
		n.reg.call(ev)
	}
	if !ev.stopped {
		ev.Type = Up
		s.reg.call(ev)
	}
	return ev.stopped
}
