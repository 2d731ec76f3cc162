package handle

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
)

type fixture struct {
	root    *surface.Recorder
	stage   *pointer.Stage
	cache   *texture.Cache
	deltas  []mgl64.Vec2
	commits int
}

func newFixture() *fixture {
	return &fixture{
		root:  surface.NewRecorder("root"),
		stage: pointer.NewStage(),
		cache: texture.NewCache(0),
	}
}

func (f *fixture) visual(h geometry.Handle, o style.HandleOverride) *Visual {
	v := New(f.root, f.stage, Config{
		Handle:   h,
		Defaults: style.DefaultHandleStyle(style.DefaultTheme()),
		Override: o,
		Textures: f.cache,
		Callbacks: Callbacks{
			OnDelta:  func(_ geometry.Handle, p mgl64.Vec2) { f.deltas = append(f.deltas, p) },
			OnCommit: func(geometry.Handle) { f.commits++ },
		},
	})
	v.Place(mgl64.Vec2{50, 50}, 0)
	return v
}

func (f *fixture) layer(v *Visual) *surface.Recorder {
	return f.root.Child("handle:" + v.Handle().String())
}

func TestRenderIsIdempotent(t *testing.T) {
	for _, h := range []geometry.Handle{geometry.TopLeft, geometry.MiddleRight, geometry.Rotator, geometry.SkewVertical} {
		t.Run(h.String(), func(t *testing.T) {
			f := newFixture()
			v := f.visual(h, style.HandleOverride{GlowIntensity: style.Ptr(0.5)})

			require.True(t, v.Render())
			first := f.layer(v).Commands()
			writes := f.layer(v).Writes()
			stats := f.cache.Stats()

			assert.False(t, v.Render())
			assert.Equal(t, first, f.layer(v).Commands())
			assert.Equal(t, writes, f.layer(v).Writes())
			assert.Equal(t, stats, f.cache.Stats())
			assert.Equal(t, 1, v.Renders())
		})
	}
}

func TestPlaceAndStyleMarkDirty(t *testing.T) {
	f := newFixture()
	v := f.visual(geometry.TopLeft, style.HandleOverride{})
	v.Render()

	v.Place(mgl64.Vec2{50, 50}, 0)
	assert.False(t, v.Dirty(), "same position")
	v.Place(mgl64.Vec2{60, 50}, 0)
	assert.True(t, v.Dirty())
	v.Render()

	v.SetStyle(style.HandleOverride{})
	assert.False(t, v.Dirty(), "same effective style")
	v.SetStyle(style.HandleOverride{Radius: style.Ptr(12.0)})
	assert.True(t, v.Dirty())
	assert.Equal(t, 12.0, v.Style().Radius)
	assert.Equal(t, style.DefaultTheme().Primary, v.Style().Stroke)
}

func TestShapesPerKind(t *testing.T) {
	f := newFixture()
	corner := f.visual(geometry.BottomRight, style.HandleOverride{})
	edge := f.visual(geometry.TopCenter, style.HandleOverride{})
	rot := f.visual(geometry.Rotator, style.HandleOverride{})
	skew := f.visual(geometry.SkewHorizontal, style.HandleOverride{})
	for _, v := range []*Visual{corner, edge, rot, skew} {
		v.Render()
	}

	assert.Equal(t, "circle", f.layer(corner).Commands()[0].Op)
	assert.Equal(t, "roundedRect", f.layer(edge).Commands()[0].Op)
	assert.Equal(t, "path", f.layer(skew).Commands()[0].Op)

	sprite := f.layer(rot).Commands()
	require.Len(t, sprite, 1)
	assert.Equal(t, "sprite", sprite[0].Op)
	_, ok := f.cache.ByID(sprite[0].TextureID)
	assert.True(t, ok)
}

func TestPillFollowsEdgeAngle(t *testing.T) {
	f := newFixture()
	edge := f.visual(geometry.MiddleLeft, style.HandleOverride{})

	edge.Place(mgl64.Vec2{50, 50}, math.Pi/2)
	edge.Render()
	rr := f.layer(edge).Commands()[0]
	require.Equal(t, "roundedRect", rr.Op)
	assert.Greater(t, rr.Height, rr.Width, "vertical edge gets a vertical pill")

	edge.Place(mgl64.Vec2{50, 50}, 0.3)
	edge.Render()
	assert.Equal(t, "path", f.layer(edge).Commands()[0].Op)
}

func TestGlowScalesWithRadius(t *testing.T) {
	f := newFixture()
	v := f.visual(geometry.TopLeft, style.HandleOverride{GlowIntensity: style.Ptr(1.0)})
	v.Render()
	small := f.layer(v).Commands()
	require.Len(t, small, glowLayers+1)
	assert.Greater(t, small[0].Radius, small[len(small)-1].Radius)

	v.SetStyle(style.HandleOverride{GlowIntensity: style.Ptr(1.0), Radius: style.Ptr(12.0)})
	v.Render()
	big := f.layer(v).Commands()
	assert.InDelta(t, 2*small[0].Radius, big[0].Radius, 1e-9)
}

func TestRotatorNeverGlows(t *testing.T) {
	f := newFixture()
	v := f.visual(geometry.Rotator, style.HandleOverride{GlowIntensity: style.Ptr(1.0)})
	v.Render()
	assert.Len(t, f.layer(v).Commands(), 1)
}

func TestHiddenHandleDrawsNothingAndIgnoresPointer(t *testing.T) {
	f := newFixture()
	v := f.visual(geometry.TopLeft, style.HandleOverride{})
	v.SetVisible(false)
	v.Render()
	assert.Empty(t, f.layer(v).Commands())
	assert.Nil(t, f.stage.HitTest(mgl64.Vec2{50, 50}))
}

func TestPointerContract(t *testing.T) {
	f := newFixture()
	f.visual(geometry.BottomRight, style.HandleOverride{})

	f.stage.PointerDown(mgl64.Vec2{51, 51})
	f.stage.PointerMove(mgl64.Vec2{52, 52})
	assert.Empty(t, f.deltas, "first move only establishes the origin")

	// the pointer has left the small hit area but the drag keeps going
	f.stage.PointerMove(mgl64.Vec2{90, 90})
	f.stage.PointerMove(mgl64.Vec2{95, 95})
	assert.Equal(t, []mgl64.Vec2{{90, 90}, {95, 95}}, f.deltas)
	assert.Zero(t, f.commits)

	f.stage.PointerUp(mgl64.Vec2{95, 95})
	assert.Equal(t, 1, f.commits)

	// a click does not commit
	f.stage.PointerDown(mgl64.Vec2{51, 51})
	f.stage.PointerUp(mgl64.Vec2{51, 51})
	assert.Equal(t, 1, f.commits)
}

func TestDestroy(t *testing.T) {
	f := newFixture()
	v := f.visual(geometry.TopLeft, style.HandleOverride{})
	v.Destroy(f.stage)
	assert.Empty(t, f.stage.Nodes())
	assert.Empty(t, f.root.Children())
}

func TestCursorFor(t *testing.T) {
	assert.Equal(t, "nwse-resize", CursorFor(geometry.BottomRight, 0))
	assert.Equal(t, "nwse-resize", CursorFor(geometry.TopLeft, 0))
	assert.Equal(t, "nesw-resize", CursorFor(geometry.TopRight, 0))
	assert.Equal(t, "ew-resize", CursorFor(geometry.MiddleLeft, 0))
	assert.Equal(t, "ns-resize", CursorFor(geometry.MiddleLeft, math.Pi/2))
	assert.Equal(t, "grab", CursorFor(geometry.Rotator, 1))
	assert.Equal(t, "ns-resize", CursorFor(geometry.SkewVertical, 0))
}
