// Package document holds the scene a transformer edits: a flat list of
// shape objects, each of which is a transformer member.
package document

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/transformer"
)

// ErrUnknownObject is returned when a selection names an object that is
// not in the scene.
var ErrUnknownObject = errors.New("unknown object")

type Scene struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Background string    `json:"background"`
	Objects    []*Object `json:"objects"`
}

type ObjectType string

const (
	ObjectTypeShapeRect    ObjectType = "ShapeRect"
	ObjectTypeShapeEllipse ObjectType = "ShapeEllipse"
	ObjectTypeVectorPath   ObjectType = "VectorPath"
)

type Style struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// Object is one shape of the scene. Rects span (0, 0) to (Width, Height)
// in local space, ellipses are centered on the local origin.
type Object struct {
	ID        string             `json:"id"`
	Name      string             `json:"name,omitempty"`
	Type      ObjectType         `json:"type"`
	Transform geometry.Transform `json:"transform"`
	Style     Style              `json:"style"`
	Visible   bool               `json:"visible"`
	Locked    bool               `json:"locked"`

	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	RX     float64 `json:"rx,omitempty"`
	RY     float64 `json:"ry,omitempty"`

	Commands []surface.PathCommand `json:"commands,omitempty"`
}

func (o *Object) LocalTransform() geometry.Transform     { return o.Transform }
func (o *Object) SetLocalTransform(tr geometry.Transform) { o.Transform = tr }

// LocalBounds returns the object's bounds in its own coordinates.
func (o *Object) LocalBounds() geometry.Rect {
	return computePathBounds(o.Path())
}

// Path returns the object's outline in local coordinates.
func (o *Object) Path() []surface.PathCommand {
	switch o.Type {
	case ObjectTypeShapeRect:
		return rectPath(o.Width, o.Height)
	case ObjectTypeShapeEllipse:
		return ellipsePath(o.RX, o.RY)
	case ObjectTypeVectorPath:
		return o.Commands
	}
	return nil
}

// Contains reports whether the world point p lies inside the object's
// transformed bounds.
func (o *Object) Contains(p mgl64.Vec2) bool {
	return geometry.Shape{Transform: o.Transform, Bounds: o.LocalBounds()}.Contains(p)
}

// Object returns the object with the given id.
func (s *Scene) Object(id string) (*Object, bool) {
	for _, o := range s.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return nil, false
}

// ObjectAt returns the top-most visible, unlocked object under p.
func (s *Scene) ObjectAt(p mgl64.Vec2) (*Object, bool) {
	for _, o := range slices.Backward(s.Objects) {
		if o.Visible && !o.Locked && o.Contains(p) {
			return o, true
		}
	}
	return nil, false
}

// Members resolves ids into transformer members, keeping their order.
func (s *Scene) Members(ids ...string) ([]transformer.Member, error) {
	members := make([]transformer.Member, 0, len(ids))
	for _, id := range ids {
		o, ok := s.Object(id)
		if !ok {
			return nil, fmt.Errorf("select %s: %w", id, ErrUnknownObject)
		}
		members = append(members, o)
	}
	return members, nil
}

// Clone returns a deep copy.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Objects = make([]*Object, len(s.Objects))
	for i, o := range s.Objects {
		oc := *o
		oc.Commands = make([]surface.PathCommand, len(o.Commands))
		for j, cmd := range o.Commands {
			oc.Commands[j] = slices.Clone(cmd)
		}
		c.Objects[i] = &oc
	}
	return &c
}

// Validate checks object ids and shape parameters.
func (s *Scene) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.Objects))
	for i, o := range s.Objects {
		if o.ID == "" {
			errs = append(errs, fmt.Errorf("object %d: missing id", i))
		} else if seen[o.ID] {
			errs = append(errs, fmt.Errorf("object %s: duplicate id", o.ID))
		}
		seen[o.ID] = true

		switch o.Type {
		case ObjectTypeShapeRect:
			if o.Width <= 0 || o.Height <= 0 {
				errs = append(errs, fmt.Errorf("object %s: rect needs a positive width and height", o.ID))
			}
		case ObjectTypeShapeEllipse:
			if o.RX <= 0 || o.RY <= 0 {
				errs = append(errs, fmt.Errorf("object %s: ellipse needs positive radii", o.ID))
			}
		case ObjectTypeVectorPath:
			if len(o.Commands) == 0 {
				errs = append(errs, fmt.Errorf("object %s: empty path", o.ID))
			}
		default:
			errs = append(errs, fmt.Errorf("object %s: unknown type %q", o.ID, o.Type))
		}
	}
	return errors.Join(errs...)
}
