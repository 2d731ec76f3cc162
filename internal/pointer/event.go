// Package pointer provides the pointer-event capability the transformer
// consumes and a small in-process stage that dispatches down, move, up and
// up-outside events to hit-tested nodes.
package pointer

import "github.com/go-gl/mathgl/mgl64"

// Type is the kind of pointer event.
type Type int

const (
	Down Type = iota
	Move
	Up
	UpOutside
)

func (t Type) String() string {
	switch t {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case UpOutside:
		return "upoutside"
	}
	return "unknown"
}

// ParseType converts an event name to a Type.
func ParseType(s string) (Type, bool) {
	switch s {
	case "down", "pointerdown":
		return Down, true
	case "move", "pointermove":
		return Move, true
	case "up", "pointerup":
		return Up, true
	case "upoutside", "pointerupoutside":
		return UpOutside, true
	}
	return 0, false
}

// Event is a pointer event in global (stage) coordinates.
type Event struct {
	Type   Type
	Global mgl64.Vec2
	Target *Node

	stopped bool
}

// StopPropagation prevents listeners after the current one from seeing the
// event.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool { return e.stopped }

// Listener receives pointer events.
type Listener func(*Event)

// Target is anything pointer listeners can subscribe to: a node or the
// stage root.
type Target interface {
	On(t Type, fn Listener) Subscription
}

// Subscription removes a registered listener.
type Subscription struct {
	id  uint32
	reg *registry
	typ Type
}

// Remove unregisters the listener. Removing twice is a no-op.
func (s Subscription) Remove() {
	if s.reg == nil {
		return
	}
	s.reg.remove(s.typ, s.id)
}

type handler struct {
	id uint32
	fn Listener
}

type registry struct {
	handlers map[Type][]handler
	nextID   uint32
}

func (r *registry) add(t Type, fn Listener) Subscription {
	if r.handlers == nil {
		r.handlers = make(map[Type][]handler)
	}
	r.nextID++
	r.handlers[t] = append(r.handlers[t], handler{id: r.nextID, fn: fn})
	return Subscription{id: r.nextID, reg: r, typ: t}
}

func (r *registry) remove(t Type, id uint32) {
	hs := r.handlers[t]
	for i := range hs {
		if hs[i].id == id {
			r.handlers[t] = append(hs[:i:i], hs[i+1:]...)
			return
		}
	}
}

func (r *registry) has(t Type, id uint32) bool {
	for _, h := range r.handlers[t] {
		if h.id == id {
			return true
		}
	}
	return false
}

// call invokes listeners in registration order until one stops propagation.
// Listeners may subscribe or unsubscribe while the event is being
// delivered; ones removed mid-delivery are skipped.
func (r *registry) call(ev *Event) {
	hs := r.handlers[ev.Type]
	if len(hs) == 0 {
		return
	}
	snapshot := make([]handler, len(hs))
	copy(snapshot, hs)

	for _, h := range snapshot {
		if ev.stopped {
			return
		}
		if !r.has(ev.Type, h.id) {
			continue
		}
		h.fn(ev)
	}
}

func (r *registry) count(t Type) int {
	return len(r.handlers[t])
}
