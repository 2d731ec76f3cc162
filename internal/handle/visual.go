// Package handle renders one interactive transformer handle and turns its
// pointer events into drag callbacks.
package handle

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
)

// hitPadding enlarges the pointer target beyond the drawn shape.
const hitPadding = 3

// glowLayers is the number of concentric halo shapes.
const glowLayers = 3

// Callbacks receive the drag of one handle.
type Callbacks struct {
	// OnStart is called with the drag origin. Returning false refuses the
	// drag.
	OnStart  func(h geometry.Handle, origin mgl64.Vec2) bool
	OnDelta  func(h geometry.Handle, p mgl64.Vec2)
	OnCommit func(h geometry.Handle)
}

// Config constructs a Visual.
type Config struct {
	Handle   geometry.Handle
	Defaults style.HandleStyle
	Override style.HandleOverride
	Cursor   string
	Textures *texture.Cache
	Logger   *slog.Logger
	Callbacks
}

// Visual is one handle: a retained child surface plus a pointer node.
type Visual struct {
	handle   geometry.Handle
	shape    shape
	defaults style.HandleStyle
	override style.HandleOverride
	style    style.HandleStyle
	textures *texture.Cache
	logger   *slog.Logger

	surface surface.Surface
	parent  surface.Surface
	node    *pointer.Node
	tracker *pointer.DragTracker

	position mgl64.Vec2
	angle    float64
	visible  bool
	dirty    bool
	renders  int
}

// New creates the visual for cfg.Handle, drawing into a child of parent
// and listening for pointer events on stage.
func New(parent surface.Surface, stage *pointer.Stage, cfg Config) *Visual {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	textures := cfg.Textures
	if textures == nil {
		textures = texture.Default()
	}

	v := &Visual{
		handle:   cfg.Handle,
		shape:    shapeFor(cfg.Handle.Kind()),
		defaults: cfg.Defaults,
		override: cfg.Override,
		style:    style.MergeHandle(cfg.Defaults, cfg.Override),
		textures: textures,
		logger:   logger,
		parent:   parent,
		surface:  parent.AddChild("handle:" + cfg.Handle.String()),
		visible:  true,
		dirty:    true,
	}

	v.node = pointer.NewNode("handle:"+cfg.Handle.String(), v.hit)
	v.node.Cursor = cfg.Cursor
	stage.Add(v.node)

	h := cfg.Handle
	v.tracker = &pointer.DragTracker{
		OnStart: func(origin mgl64.Vec2) bool {
			if cfg.OnStart == nil {
				return true
			}
			return cfg.OnStart(h, origin)
		},
		OnDelta: func(p mgl64.Vec2) {
			if cfg.OnDelta != nil {
				cfg.OnDelta(h, p)
			}
		},
		OnCommit: func() {
			if cfg.OnCommit != nil {
				cfg.OnCommit(h)
			}
		},
	}
	v.tracker.Attach(v.node, stage)
	return v
}

// Handle returns the handle identity.
func (v *Visual) Handle() geometry.Handle { return v.handle }

// Node returns the pointer node.
func (v *Visual) Node() *pointer.Node { return v.node }

// Tracker exposes the drag state.
func (v *Visual) Tracker() *pointer.DragTracker { return v.tracker }

// Style returns the effective style.
func (v *Visual) Style() style.HandleStyle { return v.style }

// SetStyle replaces the override and marks the visual dirty when the
// effective style changed.
func (v *Visual) SetStyle(o style.HandleOverride) {
	v.override = o
	v.restyle()
}

// SetDefaults replaces the style the override is merged onto.
func (v *Visual) SetDefaults(d style.HandleStyle) {
	v.defaults = d
	v.restyle()
}

func (v *Visual) restyle() {
	next := style.MergeHandle(v.defaults, v.override)
	if next != v.style {
		v.style = next
		v.dirty = true
	}
}

// SetCursor sets the hover cursor hint.
func (v *Visual) SetCursor(c string) { v.node.Cursor = c }

// Position returns the handle center in stage coordinates.
func (v *Visual) Position() mgl64.Vec2 { return v.position }

// Place moves the handle. angle is the direction of the box edge the handle
// sits on and orients pills and the rotator icon.
func (v *Visual) Place(p mgl64.Vec2, angle float64) {
	if p.ApproxEqualThreshold(v.position, 1e-9) && math.Abs(angle-v.angle) < 1e-9 {
		return
	}
	v.position, v.angle = p, angle
	v.dirty = true
}

// Visible reports whether the handle is shown and interactive.
func (v *Visual) Visible() bool { return v.visible }

// SetVisible shows or hides the handle. Hidden handles do not receive
// pointer events.
func (v *Visual) SetVisible(visible bool) {
	if v.visible == visible {
		return
	}
	v.visible = visible
	v.node.Disabled = !visible
	v.dirty = true
}

// Dirty reports whether the next Render redraws.
func (v *Visual) Dirty() bool { return v.dirty }

// Renders returns how many times the surface was redrawn.
func (v *Visual) Renders() int { return v.renders }

// Render redraws the handle if anything changed since the last call and
// reports whether it did.
func (v *Visual) Render() bool {
	if !v.dirty {
		return false
	}
	v.dirty = false
	v.renders++

	s := v.surface
	s.Clear()
	if !v.visible {
		return true
	}
	if v.style.GlowIntensity > 0 && v.handle.Kind() != geometry.KindRotator {
		v.shape.glow(s, v)
	}
	if err := v.shape.draw(s, v); err != nil {
		v.logger.Debug("handle render failed", "handle", v.handle, "err", err)
	}
	return true
}

// Destroy detaches the handle from the stage and its parent surface.
func (v *Visual) Destroy(stage *pointer.Stage) {
	v.tracker.Detach()
	stage.Remove(v.node)
	v.parent.RemoveChild(v.surface)
}

// Size returns the extent of the drawn shape along and across its edge.
func (v *Visual) Size() (along, across float64) {
	return v.shape.size(v.style)
}

func (v *Visual) hit(p mgl64.Vec2) bool {
	if !v.visible {
		return false
	}
	along, across := v.shape.size(v.style)
	local := geometry.Rotate(-v.angle).ApplyVector(p.Sub(v.position))
	return math.Abs(local[0]) <= along/2+hitPadding && math.Abs(local[1]) <= across/2+hitPadding
}
