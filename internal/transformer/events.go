package transformer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
)

// EventType names a transformer notification.
type EventType string

const (
	// EventInteractionStart fires when a drag takes hold of the group.
	EventInteractionStart EventType = "interactionstart"
	// EventTransformChange fires for every applied delta while dragging.
	EventTransformChange EventType = "transformchange"
	// EventTransformCommit fires once when the drag ends.
	EventTransformCommit EventType = "transformcommit"
	// EventGroupChange fires when the group membership is replaced.
	EventGroupChange EventType = "groupchange"
)

// Event is delivered to listeners.
type Event struct {
	Type EventType
	// Handle is the dragged handle; unset for translation and group
	// changes.
	Handle    geometry.Handle
	Translate bool
	Box       geometry.OrientedBox
	// Delta maps the box at interaction start onto Box.
	Delta   geometry.Matrix2D
	Members []Member
}

type listener struct {
	id uint64
	fn func(Event)
}

type listeners struct {
	byType map[EventType][]listener
	nextID uint64
}

func (l *listeners) add(t EventType, fn func(Event)) func() {
	if l.byType == nil {
		l.byType = make(map[EventType][]listener)
	}
	l.nextID++
	id := l.nextID
	l.byType[t] = append(l.byType[t], listener{id: id, fn: fn})
	return func() {
		ls := l.byType[t]
		for i := range ls {
			if ls[i].id == id {
				l.byType[t] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// emit calls listeners in registration order. Cancelling during delivery
// takes effect from the next event.
func (l *listeners) emit(e Event) {
	for _, li := range l.byType[e.Type] {
		li.fn(e)
	}
}

// ClickFunc receives a click on the group. Returning true consumes it.
type ClickFunc func(p mgl64.Vec2) bool

type clickInterceptor struct {
	id uint64
	fn ClickFunc
}
