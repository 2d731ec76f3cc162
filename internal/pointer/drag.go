package pointer

import "github.com/go-gl/mathgl/mgl64"

// DragState is the state of a DragTracker.
type DragState int

const (
	// StateUp: no pointer is pressed on the node.
	StateUp DragState = iota
	// StateDown: pressed, but the pointer has not moved yet.
	StateDown
	// StateDragging: the first move captured the origin.
	StateDragging
	// StateRefused: OnStart declined the drag; moves are ignored until up.
	StateRefused
)

func (s DragState) String() string {
	switch s {
	case StateUp:
		return "up"
	case StateDown:
		return "down"
	case StateDragging:
		return "dragging"
	case StateRefused:
		return "refused"
	}
	return "unknown"
}

// DragTracker turns the raw events of one node into drag callbacks.
//
// A press subscribes to global moves on the stage so the drag keeps being
// tracked after the pointer leaves the node. The first move only records
// the origin; every later move reports the current position through
// OnDelta. Releasing after a drag calls OnCommit exactly once; releasing
// without a move is a click.
type DragTracker struct {
	// OnStart is called with the origin on the first move. Returning false
	// refuses the drag.
	OnStart func(origin mgl64.Vec2) bool
	// OnDelta receives the current global pointer position.
	OnDelta func(p mgl64.Vec2)
	// OnCommit is called once when a drag ends.
	OnCommit func()
	// OnClick is called for a press and release without movement.
	OnClick func(p mgl64.Vec2)
	// OnPress is called when the node is pressed, before any move.
	OnPress func(p mgl64.Vec2)

	state  DragState
	origin mgl64.Vec2

	stage   Target
	nodeSub []Subscription
	moveSub *Subscription
}

// Attach subscribes the tracker to node events and uses stage for global
// moves.
func (d *DragTracker) Attach(node, stage Target) {
	d.Detach()
	d.stage = stage
	d.nodeSub = []Subscription{
		node.On(Down, d.onDown),
		node.On(Up, d.onUp),
		node.On(UpOutside, d.onUp),
	}
}

// Detach removes every subscription without committing.
func (d *DragTracker) Detach() {
	for _, s := range d.nodeSub {
		s.Remove()
	}
	d.nodeSub = nil
	d.releaseMove()
	d.state = StateUp
}

// State returns the current state.
func (d *DragTracker) State() DragState { return d.state }

// Origin returns the position captured by the first move.
func (d *DragTracker) Origin() mgl64.Vec2 { return d.origin }

func (d *DragTracker) onDown(ev *Event) {
	if d.state != StateUp || d.stage == nil {
		return
	}
	d.state = StateDown
	sub := d.stage.On(Move, d.onMove)
	d.moveSub = &sub
	ev.StopPropagation()

	if d.OnPress != nil {
		d.OnPress(ev.Global)
	}
}

func (d *DragTracker) onMove(ev *Event) {
	switch d.state {
	case StateDown:
		d.origin = ev.Global
		d.state = StateDragging
		if d.OnStart != nil && !d.OnStart(ev.Global) {
			d.state = StateRefused
			return
		}
		ev.StopPropagation()
	case StateDragging:
		if d.OnDelta != nil {
			d.OnDelta(ev.Global)
		}
		ev.StopPropagation()
	}
}

func (d *DragTracker) onUp(ev *Event) {
	prev := d.state
	if prev == StateUp {
		return
	}
	d.releaseMove()
	d.state = StateUp

	switch prev {
	case StateDragging:
		if d.OnCommit != nil {
			d.OnCommit()
		}
		ev.StopPropagation()
	case StateDown:
		if ev.Type == Up && d.OnClick != nil {
			d.OnClick(ev.Global)
		}
	}
}

func (d *DragTracker) releaseMove() {
	if d.moveSub != nil {
		d.moveSub.Remove()
		d.moveSub = nil
	}
}
