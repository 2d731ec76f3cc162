package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/config"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/props"
	"github.com/inamate/transformer/internal/texture"
	"github.com/inamate/transformer/internal/transformer"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEngine(t *testing.T, opts config.Options) *Engine {
	t.Helper()
	e := New(Config{Options: opts, Textures: texture.NewCache(0), Logger: quiet})
	t.Cleanup(e.Destroy)
	return e
}

func rectID(t *testing.T, e *Engine) string {
	t.Helper()
	obj, ok := e.Scene().ObjectAt(mgl64.Vec2{250, 250})
	require.True(t, ok)
	return obj.ID
}

func TestPressSelectsObjectUnderPointer(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	assert.Empty(t, e.Selection())

	e.PointerDown(mgl64.Vec2{250, 250})
	e.PointerUp(mgl64.Vec2{250, 250})
	assert.Equal(t, []string{rectID(t, e)}, e.Selection())

	e.PointerDown(mgl64.Vec2{5, 5})
	e.PointerUp(mgl64.Vec2{5, 5})
	assert.Empty(t, e.Selection())
}

func TestDragHandleScalesObject(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	id := rectID(t, e)
	require.NoError(t, e.Select(id))

	var commits int
	e.Transformer().On(transformer.EventTransformCommit, func(transformer.Event) { commits++ })

	e.Drag(mgl64.Vec2{400, 350}, mgl64.Vec2{450, 400})

	obj, _ := e.Scene().Object(id)
	assert.InDelta(t, 1.25, obj.Transform.ScaleX, 1e-9)
	assert.InDelta(t, 200.0/150.0, obj.Transform.ScaleY, 1e-9)
	assert.InDelta(t, 200, obj.Transform.X, 1e-9)
	assert.Equal(t, 1, commits)
}

func TestTranslateThroughWireframe(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	id := rectID(t, e)
	require.NoError(t, e.Select(id))

	e.Drag(mgl64.Vec2{300, 275}, mgl64.Vec2{310, 285})

	obj, _ := e.Scene().Object(id)
	assert.InDelta(t, 210, obj.Transform.X, 1e-9)
	assert.InDelta(t, 210, obj.Transform.Y, 1e-9)
}

func TestReleaseCommitsHeldDrag(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	id := rectID(t, e)
	require.NoError(t, e.Select(id))

	e.PointerDown(mgl64.Vec2{300, 275})
	e.PointerMove(mgl64.Vec2{300, 275})
	e.PointerMove(mgl64.Vec2{320, 275})
	require.True(t, e.Transformer().Interacting())

	e.Release()
	assert.False(t, e.Transformer().Interacting())
	obj, _ := e.Scene().Object(id)
	assert.InDelta(t, 220, obj.Transform.X, 1e-9)
}

func TestDispatchRoutesTypes(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	e.Dispatch(pointer.Down, mgl64.Vec2{250, 250})
	e.Dispatch(pointer.Up, mgl64.Vec2{250, 250})
	assert.Len(t, e.Selection(), 1)
}

func TestSelectUnknownObject(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	assert.ErrorIs(t, e.Select("obj_missing"), document.ErrUnknownObject)
}

func TestRenderOnlyWhenDirty(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	assert.True(t, e.Render())
	assert.False(t, e.Render())
	assert.NotEmpty(t, e.Commands())

	require.NoError(t, e.Select(rectID(t, e)))
	assert.True(t, e.Render())
}

func TestLoadScene(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	require.NoError(t, e.Select(rectID(t, e)))

	empty := document.NewEmptyScene("blank", 100, 100)
	require.NoError(t, e.LoadScene(empty))
	assert.Same(t, empty, e.Scene())
	assert.Empty(t, e.Selection())

	bad := document.NewSampleScene()
	bad.Objects[1].ID = bad.Objects[0].ID
	assert.Error(t, e.LoadScene(bad))
	assert.Same(t, empty, e.Scene())
}

func TestApplyProps(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	require.NoError(t, e.ApplyProps(map[string]any{"skewEnabled": true, "rotationSnaps": []any{0.0, geometry.Radians(90)}}))
	assert.True(t, e.Options().SkewEnabled)
	assert.Len(t, e.Options().RotationSnaps, 2)

	assert.Nil(t, e.Nested())
	require.NoError(t, e.ApplyProps(map[string]any{props.NestedSelectionEnabled: true}))
	assert.NotNil(t, e.Nested())
}

func TestNestedEnabledFromOptions(t *testing.T) {
	opts := config.DefaultOptions()
	opts.Nested.Enabled = true
	e := newEngine(t, opts)
	require.NotNil(t, e.Nested())
}

func TestCursor(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	require.NoError(t, e.Select(rectID(t, e)))
	assert.Equal(t, "nwse-resize", e.Cursor(mgl64.Vec2{400, 350}))
	assert.Equal(t, "", e.Cursor(mgl64.Vec2{5, 5}))
}

func TestSecondPressDuringDragIsIgnored(t *testing.T) {
	e := newEngine(t, config.DefaultOptions())
	id := rectID(t, e)
	require.NoError(t, e.Select(id))

	var commits int
	e.Transformer().On(transformer.EventTransformCommit, func(transformer.Event) { commits++ })

	e.PointerDown(mgl64.Vec2{400, 350})
	e.PointerMove(mgl64.Vec2{400, 350})
	e.PointerMove(mgl64.Vec2{450, 400})

	// a press over empty canvas would otherwise clear the selection
	assert.False(t, e.PointerDown(mgl64.Vec2{5, 5}))
	assert.Equal(t, []string{id}, e.Selection())

	e.PointerUp(mgl64.Vec2{5, 5})
	assert.False(t, e.Transformer().Interacting())
	assert.Equal(t, 1, commits)

	obj, _ := e.Scene().Object(id)
	scaled := obj.Transform.ScaleX
	e.PointerMove(mgl64.Vec2{600, 600})
	assert.Equal(t, scaled, obj.Transform.ScaleX, "hover after release does not transform")
}
