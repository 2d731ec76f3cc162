// Package engine owns one editable canvas: a scene, the pointer stage it is
// driven through, the transformer attached to the selection and the
// declarative property adapter that configures it. Session rooms, the wasm
// bridge and the command line tool all drive an Engine.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/config"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/nested"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/props"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
	"github.com/inamate/transformer/internal/transformer"
)

// Config constructs an Engine.
type Config struct {
	// Scene defaults to the sample scene.
	Scene    *document.Scene
	Options  config.Options
	Textures *texture.Cache
	Logger   *slog.Logger
	// Callbacks observe the nested selection controller while enabled.
	Callbacks nested.Callbacks
}

// Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	logger *slog.Logger

	scene      *document.Scene
	stage      *pointer.Stage
	root       *surface.Recorder
	sceneLayer surface.Surface
	tf         *transformer.Transformer
	props      *props.Adapter

	// Scene needs a redraw
	dirty bool
}

// New creates an engine with nothing selected.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scene := cfg.Scene
	if scene == nil {
		scene = document.NewSampleScene()
	}

	e := &Engine{
		logger: logger,
		scene:  scene,
		stage:  pointer.NewStage(),
		root:   surface.NewRecorder("root"),
		dirty:  true,
	}
	// The scene layer is added first so the transformer draws on top.
	e.sceneLayer = e.root.AddChild("scene")
	e.tf = transformer.New(transformer.Config{
		Surface:  e.root,
		Stage:    e.stage,
		Options:  cfg.Options.Transformer,
		Textures: cfg.Textures,
		Logger:   logger,
	})
	e.tf.On(transformer.EventTransformChange, e.markDirty)
	e.tf.On(transformer.EventTransformCommit, e.markDirty)
	e.tf.On(transformer.EventGroupChange, e.markDirty)
	// Registered before any nested controller, so focus clicks win.
	e.tf.OnClick(e.selectAt)

	e.props = props.New(props.Config{
		Transformer: e.tf,
		Nested:      cfg.Options.Nested.Options,
		Callbacks:   cfg.Callbacks,
		Logger:      logger,
	})
	if cfg.Options.Nested.Enabled {
		if err := e.props.Apply(map[string]any{props.NestedSelectionEnabled: true}); err != nil {
			logger.Warn("enable nested selection", "error", err)
		}
	}
	return e
}

func (e *Engine) markDirty(transformer.Event) { e.dirty = true }

// Scene returns the live scene. Members of the selection are mutated in
// place while dragging.
func (e *Engine) Scene() *document.Scene { return e.scene }

// Transformer returns the transformer attached to the selection.
func (e *Engine) Transformer() *transformer.Transformer { return e.tf }

// Stage returns the pointer stage.
func (e *Engine) Stage() *pointer.Stage { return e.stage }

// Nested returns the nested selection controller, or nil when disabled.
func (e *Engine) Nested() *nested.Controller { return e.props.Nested() }

// LoadScene replaces the scene and clears the selection.
func (e *Engine) LoadScene(s *document.Scene) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	if e.tf.Interacting() {
		e.stage.PointerUp(e.stage.Position())
	}
	e.scene = s
	e.tf.SetGroup(nil)
	e.dirty = true
	return nil
}

// MarkSceneDirty schedules a scene redraw after an external edit and
// refreshes the transformer bounds.
func (e *Engine) MarkSceneDirty() {
	e.tf.Refresh()
	e.dirty = true
}

// PointerDown presses the pointer at p. Pressing where no transformer part
// is hit selects the object under the pointer, or clears the selection over
// empty canvas. A press while the pointer is held is ignored.
func (e *Engine) PointerDown(p mgl64.Vec2) bool {
	if e.stage.Held() {
		return false
	}
	if e.stage.HitTest(p) == nil {
		e.selectObjectAt(p)
	}
	return e.stage.PointerDown(p)
}

// PointerMove moves the pointer to p.
func (e *Engine) PointerMove(p mgl64.Vec2) bool { return e.stage.PointerMove(p) }

// PointerUp releases the pointer at p.
func (e *Engine) PointerUp(p mgl64.Vec2) bool { return e.stage.PointerUp(p) }

// Release lets go of a held pointer where it last was.
func (e *Engine) Release() {
	e.stage.PointerUp(e.stage.Position())
}

// Dispatch routes a pointer event of type t.
func (e *Engine) Dispatch(t pointer.Type, p mgl64.Vec2) bool {
	switch t {
	case pointer.Down:
		return e.PointerDown(p)
	case pointer.Move:
		return e.PointerMove(p)
	default:
		return e.PointerUp(p)
	}
}

// Drag replays a full press, move and release from one point to another.
// The first move lands on from, where the drag origin is captured.
func (e *Engine) Drag(from, to mgl64.Vec2) {
	e.PointerDown(from)
	e.PointerMove(from)
	e.PointerMove(to)
	e.PointerUp(to)
}

// Cursor returns the cursor hint for hovering at p.
func (e *Engine) Cursor(p mgl64.Vec2) string { return e.stage.Cursor(p) }

// Select replaces the selection with the objects ids.
func (e *Engine) Select(ids ...string) error {
	members, err := e.scene.Members(ids...)
	if err != nil {
		return err
	}
	e.tf.SetGroup(members)
	return nil
}

// Selection returns the ids of the selected objects.
func (e *Engine) Selection() []string {
	ids := []string{}
	for _, m := range e.tf.Group() {
		if obj, ok := m.(*document.Object); ok {
			ids = append(ids, obj.ID)
		}
	}
	return ids
}

// ApplyProps applies a declarative property bag.
func (e *Engine) ApplyProps(bag map[string]any) error {
	return e.props.Apply(bag)
}

// Options returns the current transformer options.
func (e *Engine) Options() transformer.Options { return e.tf.Options() }

// Render redraws everything that changed and reports whether anything did.
func (e *Engine) Render() bool {
	changed := false
	if e.dirty {
		e.scene.Render(e.sceneLayer)
		e.dirty = false
		changed = true
	}
	if e.tf.Render() {
		changed = true
	}
	if nc := e.props.Nested(); nc != nil && nc.Render() {
		changed = true
	}
	return changed
}

// Commands returns the full draw list in painter's order.
func (e *Engine) Commands() []surface.DrawCommand { return e.root.Compile() }

// Frame renders pending changes and returns the full draw list.
func (e *Engine) Frame() []surface.DrawCommand {
	e.Render()
	return e.Commands()
}

// Destroy detaches the transformer and nested controller.
func (e *Engine) Destroy() {
	if nc := e.props.Nested(); nc != nil {
		nc.Destroy()
	}
	e.tf.Destroy()
}

// selectAt handles a click inside the group that nothing else consumed:
// the object under the pointer becomes the whole selection.
func (e *Engine) selectAt(p mgl64.Vec2) bool {
	obj, ok := e.scene.ObjectAt(p)
	if !ok {
		return false
	}
	if group := e.tf.Group(); len(group) == 1 && group[0] == transformer.Member(obj) {
		return false
	}
	e.tf.SetGroup([]transformer.Member{obj})
	return true
}

func (e *Engine) selectObjectAt(p mgl64.Vec2) {
	var members []transformer.Member
	if obj, ok := e.scene.ObjectAt(p); ok {
		members = []transformer.Member{obj}
	}
	if len(members) == 0 && len(e.tf.Group()) == 0 {
		return
	}
	e.tf.SetGroup(members)
}
