// Package transformer implements the on-canvas transformer: handles and a
// wireframe around a group of members, and the interaction state machine
// that turns handle drags into one rigid affine delta applied to every
// member.
package transformer

import (
	"errors"
	"log/slog"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/handle"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
	"github.com/inamate/transformer/internal/typeid"
	"github.com/inamate/transformer/internal/wireframe"
)

// ErrConfigLocked is returned when construction-time configuration is
// changed after the transformer was built.
var ErrConfigLocked = errors.New("transformer configuration is locked after construction")

// Member is an external visual object. The transformer reads and writes
// its local transform but never owns it.
type Member interface {
	LocalTransform() geometry.Transform
	SetLocalTransform(geometry.Transform)
	// LocalBounds is the content rectangle in the member's own coordinates.
	LocalBounds() geometry.Rect
}

// HandleFactory builds the visual for one handle.
type HandleFactory func(parent surface.Surface, stage *pointer.Stage, cfg handle.Config) *handle.Visual

// Config constructs a Transformer.
type Config struct {
	Surface  surface.Surface
	Stage    *pointer.Stage
	Options  Options
	Textures *texture.Cache
	Logger   *slog.Logger
	// HandleFactory defaults to handle.New.
	HandleFactory HandleFactory
}

// State is the interaction state.
type State int

const (
	StateIdle State = iota
	StateInteracting
)

func (s State) String() string {
	if s == StateInteracting {
		return "interacting"
	}
	return "idle"
}

type interaction struct {
	handle    geometry.Handle
	translate bool
	fromFrame bool // started on the wireframe rather than a handle

	origin     mgl64.Vec2
	originBox  geometry.OrientedBox
	transforms []geometry.Transform
	changed    bool
}

// Transformer owns the handles, the wireframe and the interaction state of
// one group. All methods must be called from the goroutine dispatching
// pointer events.
type Transformer struct {
	id     string
	opts   Options
	logger *slog.Logger

	stage    *pointer.Stage
	parent   surface.Surface
	root     surface.Surface
	textures *texture.Cache

	handles   []*handle.Visual // in geometry.AllHandles order
	wireframe *wireframe.Wireframe
	anchor    *wireframe.RotatorAnchor

	group         []Member
	box           geometry.OrientedBox
	hasBox        bool
	groupRotation float64

	active *interaction

	listeners listeners
	clicks    []clickInterceptor
	destroyed bool
}

// New builds a transformer with an empty group.
func New(cfg Config) *Transformer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	textures := cfg.Textures
	if textures == nil {
		textures = texture.Default()
	}
	factory := cfg.HandleFactory
	if factory == nil {
		factory = handle.New
	}

	t := &Transformer{
		id:       typeid.NewTransformerID(),
		opts:     cfg.Options.Clone(),
		stage:    cfg.Stage,
		parent:   cfg.Surface,
		textures: textures,
	}
	t.logger = logger.With("transformer", t.id)
	t.root = cfg.Surface.AddChild("transformer:" + t.id)

	theme := t.opts.Theme()
	t.wireframe = wireframe.New(t.root, t.stage,
		style.MergeWireframe(style.DefaultWireframeStyle(theme), t.opts.WireframeStyle),
		t.opts.Routing(),
		wireframe.Callbacks{
			OnStart:  t.frameStart,
			OnDelta:  t.frameDelta,
			OnCommit: func(wireframe.Target) { t.commit() },
			OnClick:  func(_ wireframe.Target, p mgl64.Vec2) { t.click(p) },
		})
	t.anchor = wireframe.NewRotatorAnchor(t.root,
		style.MergeRotatorAnchor(style.DefaultRotatorAnchor(theme), t.opts.RotatorAnchor))

	handleDefaults := style.DefaultHandleStyle(theme)
	for _, h := range geometry.AllHandles {
		v := factory(t.root, t.stage, handle.Config{
			Handle:   h,
			Defaults: handleDefaults,
			Override: t.opts.HandleStyle,
			Cursor:   handle.CursorFor(h, 0),
			Textures: textures,
			Logger:   t.logger,
			Callbacks: handle.Callbacks{
				OnStart:  t.handleStart,
				OnDelta:  t.handleDelta,
				OnCommit: func(geometry.Handle) { t.commit() },
			},
		})
		t.handles = append(t.handles, v)
	}

	t.layout()
	return t
}

// ID returns the transformer id.
func (t *Transformer) ID() string { return t.id }

// Surface returns the transformer's own child surface.
func (t *Transformer) Surface() surface.Surface { return t.root }

// SetHandleFactory always fails: handles are built once at construction.
func (t *Transformer) SetHandleFactory(HandleFactory) error {
	return ErrConfigLocked
}

// Options returns a copy of the current options.
func (t *Transformer) Options() Options { return t.opts.Clone() }

// SetOptions replaces the options wholesale. Styles are re-merged over the
// defaults and the layout is refreshed.
func (t *Transformer) SetOptions(o Options) {
	if t.destroyed {
		return
	}
	t.opts = o.Clone()
	theme := t.opts.Theme()

	handleDefaults := style.DefaultHandleStyle(theme)
	for _, v := range t.handles {
		v.SetDefaults(handleDefaults)
		v.SetStyle(t.opts.HandleStyle)
	}
	t.wireframe.SetStyle(style.MergeWireframe(style.DefaultWireframeStyle(theme), t.opts.WireframeStyle))
	t.wireframe.SetRouting(t.opts.Routing())
	t.anchor.SetConfig(style.MergeRotatorAnchor(style.DefaultRotatorAnchor(theme), t.opts.RotatorAnchor))

	if t.active == nil {
		t.recompute()
	}
	t.layout()
}

// Update applies fn to a copy of the options and installs the result.
func (t *Transformer) Update(fn func(*Options)) {
	o := t.Options()
	fn(&o)
	t.SetOptions(o)
}

// Group returns the current members.
func (t *Transformer) Group() []Member { return slices.Clone(t.group) }

// SetGroup replaces the group. An interaction in progress is committed
// first.
func (t *Transformer) SetGroup(members []Member) {
	if t.destroyed {
		return
	}
	if t.active != nil {
		t.commit()
	}
	t.group = slices.Clone(members)
	t.groupRotation = 0
	t.recompute()
	t.layout()
	t.listeners.emit(Event{Type: EventGroupChange, Box: t.box, Members: t.Group()})
}

// Refresh recomputes the bounds after members were edited externally.
// It is ignored while interacting.
func (t *Transformer) Refresh() {
	if t.destroyed || t.active != nil {
		return
	}
	t.recompute()
	t.layout()
}

// Box returns the current oriented bounding box and whether the group has
// one.
func (t *Transformer) Box() (geometry.OrientedBox, bool) { return t.box, t.hasBox }

// GroupRotation returns the orientation used for the next bounds
// computation of a multi-member group.
func (t *Transformer) GroupRotation() float64 { return t.groupRotation }

// State returns the interaction state.
func (t *Transformer) State() State {
	if t.active != nil {
		return StateInteracting
	}
	return StateIdle
}

// Interacting reports whether a drag is in progress.
func (t *Transformer) Interacting() bool { return t.active != nil }

// Handle returns the visual of h.
func (t *Transformer) Handle(h geometry.Handle) *handle.Visual {
	for _, v := range t.handles {
		if v.Handle() == h {
			return v
		}
	}
	return nil
}

// Wireframe returns the outline.
func (t *Transformer) Wireframe() *wireframe.Wireframe { return t.wireframe }

// RotatorAnchor returns the rotator connector.
func (t *Transformer) RotatorAnchor() *wireframe.RotatorAnchor { return t.anchor }

// On registers fn for notifications of type et. The returned function
// unregisters it.
func (t *Transformer) On(et EventType, fn func(Event)) func() {
	return t.listeners.add(et, fn)
}

// OnClick registers a click interceptor. Interceptors are consulted newest
// first; the first to return true consumes the click.
func (t *Transformer) OnClick(fn ClickFunc) func() {
	t.listeners.nextID++
	id := t.listeners.nextID
	t.clicks = append(t.clicks, clickInterceptor{id: id, fn: fn})
	return func() {
		t.clicks = slices.DeleteFunc(t.clicks, func(c clickInterceptor) bool { return c.id == id })
	}
}

// Cursor returns the cursor hint for p.
func (t *Transformer) Cursor(p mgl64.Vec2) string {
	if t.active != nil {
		switch {
		case t.active.translate:
			return "move"
		case t.active.handle == geometry.Rotator:
			return "grabbing"
		}
		return handle.CursorFor(t.active.handle, t.box.Rotation)
	}
	return t.stage.Cursor(p)
}

// Render redraws every dirty visual and reports whether anything was
// drawn.
func (t *Transformer) Render() bool {
	if t.destroyed {
		return false
	}
	drawn := t.wireframe.Render()
	drawn = t.anchor.Render() || drawn
	for _, v := range t.handles {
		drawn = v.Render() || drawn
	}
	return drawn
}

// Destroy detaches every visual and listener. The transformer is inert
// afterwards.
func (t *Transformer) Destroy() {
	if t.destroyed {
		return
	}
	for _, v := range t.handles {
		v.Destroy(t.stage)
	}
	t.wireframe.Destroy(t.stage)
	t.anchor.Destroy()
	t.parent.RemoveChild(t.root)

	t.handles = nil
	t.group = nil
	t.active = nil
	t.hasBox = false
	t.listeners = listeners{}
	t.clicks = nil
	t.destroyed = true
}

func (t *Transformer) shapes() []geometry.Shape {
	shapes := make([]geometry.Shape, len(t.group))
	for i, m := range t.group {
		shapes[i] = geometry.Shape{Transform: m.LocalTransform(), Bounds: m.LocalBounds()}
	}
	return shapes
}

func (t *Transformer) recompute() {
	t.box, t.hasBox = geometry.ComputeGroupBounds(t.shapes(), geometry.BoundsOptions{
		Rotation:              t.groupRotation,
		InheritSingleRotation: t.opts.TransientGroupTilt,
	})
}

// layout moves handles, wireframe and anchor to the current box.
func (t *Transformer) layout() {
	if t.destroyed {
		return
	}
	visible := t.hasBox && len(t.group) > 0
	box := t.box
	off := t.opts.Offsets()
	xAxis, yAxis := box.Axes()
	xAngle := math.Atan2(xAxis[1], xAxis[0])
	yAngle := math.Atan2(yAxis[1], yAxis[0])

	t.wireframe.SetBox(box)
	t.wireframe.SetVisible(visible)

	for _, v := range t.handles {
		h := v.Handle()
		angle := box.Rotation
		switch h {
		case geometry.TopCenter, geometry.BottomCenter, geometry.SkewHorizontal:
			angle = xAngle
		case geometry.MiddleLeft, geometry.MiddleRight, geometry.SkewVertical:
			angle = yAngle
		}
		if visible {
			v.Place(geometry.HandlePosition(box, h, off), angle)
		}
		v.SetCursor(handle.CursorFor(h, box.Rotation))
		v.SetVisible(visible && t.opts.HandleEnabled(h) && (!box.IsEmpty() || h == geometry.Rotator))
	}

	rot := t.Handle(geometry.Rotator)
	t.anchor.Update(box, rot.Position(), rot.Visible())
}

func (t *Transformer) handleStart(h geometry.Handle, origin mgl64.Vec2) bool {
	if !t.opts.HandleEnabled(h) {
		return false
	}
	return t.begin(&interaction{handle: h, origin: origin})
}

func (t *Transformer) frameStart(target wireframe.Target, origin mgl64.Vec2) bool {
	it := &interaction{origin: origin, fromFrame: true}
	switch target.Kind {
	case wireframe.TargetTranslate:
		if !t.opts.TranslateEnabled {
			return false
		}
		it.translate = true
	case wireframe.TargetHandle:
		if !t.opts.HandleEnabled(target.Handle) {
			return false
		}
		it.handle = target.Handle
	default:
		return false
	}
	return t.begin(it)
}

// begin moves from Idle to Interacting, snapshotting the box and every
// member's local transform.
func (t *Transformer) begin(it *interaction) bool {
	if t.destroyed || t.active != nil || len(t.group) == 0 || !t.hasBox {
		return false
	}
	it.originBox = t.box
	it.transforms = make([]geometry.Transform, len(t.group))
	for i, m := range t.group {
		it.transforms[i] = m.LocalTransform()
	}
	t.active = it

	t.logger.Debug("interaction started", "handle", it.handle, "translate", it.translate, "members", len(t.group))
	t.listeners.emit(Event{
		Type:      EventInteractionStart,
		Handle:    it.handle,
		Translate: it.translate,
		Box:       t.box,
		Delta:     geometry.Identity(),
		Members:   t.Group(),
	})
	return true
}

func (t *Transformer) handleDelta(h geometry.Handle, p mgl64.Vec2) {
	if t.active == nil || t.active.fromFrame || t.active.handle != h {
		return
	}
	t.drag(p)
}

func (t *Transformer) frameDelta(_ wireframe.Target, p mgl64.Vec2) {
	if t.active == nil || !t.active.fromFrame {
		return
	}
	t.drag(p)
}

// drag computes the new box from the accumulated pointer displacement and
// applies the resulting delta to every member's snapshot. A degenerate
// frame is discarded and the previous state kept.
func (t *Transformer) drag(p mgl64.Vec2) {
	it := t.active

	var next geometry.OrientedBox
	if it.translate {
		next = geometry.ApplyTranslate(it.originBox, it.origin, p)
	} else {
		var err error
		next, err = geometry.ApplyHandleDrag(it.handle, it.originBox, it.origin, p, t.opts.Constraints())
		if err != nil {
			t.logger.Debug("drag frame discarded", "handle", it.handle, "err", err)
			return
		}
	}

	delta, err := geometry.DeltaTransform(it.originBox, next)
	if err != nil {
		t.logger.Debug("drag frame discarded", "handle", it.handle, "err", err)
		return
	}

	updated := make([]geometry.Transform, len(t.group))
	for i, orig := range it.transforms {
		tr, err := geometry.DecomposeWithPivot(delta.Multiply(orig.Matrix()), orig.Pivot())
		if err != nil {
			t.logger.Debug("drag frame discarded", "handle", it.handle, "member", i, "err", err)
			return
		}
		updated[i] = tr
	}
	for i, m := range t.group {
		m.SetLocalTransform(updated[i])
	}

	it.changed = true
	t.box = next
	t.layout()
	t.listeners.emit(Event{
		Type:      EventTransformChange,
		Handle:    it.handle,
		Translate: it.translate,
		Box:       next,
		Delta:     delta,
		Members:   t.Group(),
	})
}

// commit returns to Idle. Releasing always keeps the applied transform.
func (t *Transformer) commit() {
	it := t.active
	if it == nil {
		return
	}
	t.active = nil

	if it.handle == geometry.Rotator && !it.translate {
		if t.opts.TransientGroupTilt {
			t.groupRotation = 0
		} else {
			t.groupRotation = t.box.Rotation
		}
	}

	final := t.box
	delta, err := geometry.DeltaTransform(it.originBox, final)
	if err != nil {
		delta = geometry.Identity()
	}
	t.recompute()
	t.layout()

	t.logger.Debug("interaction committed", "handle", it.handle, "translate", it.translate, "changed", it.changed)
	t.listeners.emit(Event{
		Type:      EventTransformCommit,
		Handle:    it.handle,
		Translate: it.translate,
		Box:       final,
		Delta:     delta,
		Members:   t.Group(),
	})
}

func (t *Transformer) click(p mgl64.Vec2) {
	if t.active != nil || len(t.group) == 0 {
		return
	}
	for i := len(t.clicks) - 1; i >= 0; i-- {
		if t.clicks[i].fn(p) {
			return
		}
	}
}
