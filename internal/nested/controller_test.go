package nested

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
	"github.com/inamate/transformer/internal/transformer"
)

type object struct {
	tr geometry.Transform
}

func (o *object) LocalTransform() geometry.Transform     { return o.tr }
func (o *object) SetLocalTransform(tr geometry.Transform) { o.tr = tr }
func (o *object) LocalBounds() geometry.Rect              { return geometry.Rect{Width: 100, Height: 50} }

func at(x, y float64) *object {
	return &object{tr: geometry.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}}
}

type recorded struct {
	focused []int
	cleared int
	changes []int
}

type fixture struct {
	tf    *transformer.Transformer
	stage *pointer.Stage
	root  *surface.Recorder
	nc    *Controller
	rec   *recorded
}

func newFixture(t *testing.T, opts Options, members ...transformer.Member) *fixture {
	t.Helper()
	f := &fixture{
		stage: pointer.NewStage(),
		root:  surface.NewRecorder("root"),
		rec:   &recorded{},
	}
	f.tf = transformer.New(transformer.Config{
		Surface:  f.root,
		Stage:    f.stage,
		Options:  transformer.DefaultOptions(),
		Textures: texture.NewCache(0),
	})
	f.tf.SetGroup(members)
	f.nc = New(Config{
		Transformer: f.tf,
		Options:     opts,
		Callbacks: Callbacks{
			OnElementFocused:      func(i int, _ transformer.Member) { f.rec.focused = append(f.rec.focused, i) },
			OnElementFocusCleared: func() { f.rec.cleared++ },
			OnFocusChange:         func(i int, _ transformer.Member) { f.rec.changes = append(f.rec.changes, i) },
		},
	})
	return f
}

func (f *fixture) click(p mgl64.Vec2) {
	f.stage.PointerDown(p)
	f.stage.PointerUp(p)
}

func TestInitialFocus(t *testing.T) {
	a, b := at(0, 0), at(200, 0)
	f := newFixture(t, DefaultOptions(), a, b)

	assert.Equal(t, 0, f.nc.FocusedIndex())
	assert.Same(t, a, f.nc.FocusedMember())
	assert.Equal(t, []int{0}, f.rec.focused, "focused notification fires once")

	empty := newFixture(t, DefaultOptions())
	assert.Equal(t, NoFocus, empty.nc.FocusedIndex())
	assert.Nil(t, empty.nc.FocusedMember())
	assert.Empty(t, empty.rec.focused)
}

func TestInitialFocusedIndexOption(t *testing.T) {
	opts := DefaultOptions()
	opts.FocusedIndex = 1
	f := newFixture(t, opts, at(0, 0), at(200, 0))
	assert.Equal(t, 1, f.nc.FocusedIndex())

	opts.FocusedIndex = 7
	f = newFixture(t, opts, at(0, 0), at(200, 0))
	assert.Equal(t, 0, f.nc.FocusedIndex())
}

func TestClickToFocus(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0))

	f.click(mgl64.Vec2{250, 25})
	assert.Equal(t, 1, f.nc.FocusedIndex())

	// clicking the focused member keeps it focused
	f.click(mgl64.Vec2{250, 25})
	assert.Equal(t, 1, f.nc.FocusedIndex())
	assert.Equal(t, []int{0, 1}, f.rec.focused)

	// a gap inside the group box is not a member
	f.click(mgl64.Vec2{150, 25})
	assert.Equal(t, 1, f.nc.FocusedIndex())
}

func TestDragDoesNotChangeFocus(t *testing.T) {
	b := at(200, 0)
	f := newFixture(t, DefaultOptions(), at(0, 0), b)

	f.stage.PointerDown(mgl64.Vec2{250, 25})
	f.stage.PointerMove(mgl64.Vec2{250, 25})
	f.stage.PointerMove(mgl64.Vec2{260, 35})
	f.stage.PointerUp(mgl64.Vec2{260, 35})

	assert.Equal(t, 0, f.nc.FocusedIndex())
	assert.InDelta(t, 210, b.tr.X, 1e-9, "the group was translated instead")
}

func TestClearIsTransient(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0))
	f.nc.SetFocusedIndex(1)

	f.nc.SetFocusedIndex(NoFocus)
	assert.Equal(t, 0, f.nc.FocusedIndex())
	assert.Equal(t, 1, f.rec.cleared)
	assert.Equal(t, []int{0, 1, NoFocus, 0}, f.rec.changes)
}

func TestInvalidIndexFallsBack(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0))
	f.nc.SetFocusedIndex(1)
	f.nc.SetFocusedIndex(5)
	assert.Equal(t, 0, f.nc.FocusedIndex())
	f.nc.SetFocusedIndex(-3)
	assert.Equal(t, 0, f.nc.FocusedIndex())
}

func TestFocusInvariant(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0), at(400, 0))
	r := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		switch r.IntN(4) {
		case 0:
			f.nc.SetFocusedIndex(r.IntN(10) - 3)
		case 1:
			f.nc.SetFocusedIndex(NoFocus)
		case 2:
			f.nc.FocusNext()
		case 3:
			f.click(mgl64.Vec2{r.Float64() * 500, r.Float64() * 60})
		}
		require.GreaterOrEqual(t, f.nc.FocusedIndex(), 0)
		require.Less(t, f.nc.FocusedIndex(), 3)
	}
}

func TestGroupChangeResetsFocus(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0))
	f.nc.SetFocusedIndex(1)

	c := at(0, 300)
	f.tf.SetGroup([]transformer.Member{c, at(0, 0)})
	assert.Equal(t, 0, f.nc.FocusedIndex())
	assert.Same(t, c, f.nc.FocusedMember())

	f.tf.SetGroup(nil)
	assert.Equal(t, NoFocus, f.nc.FocusedIndex())
	assert.Equal(t, 1, f.rec.cleared)
}

func TestSameMembersKeepFocus(t *testing.T) {
	a, b := at(0, 0), at(200, 0)
	f := newFixture(t, DefaultOptions(), a, b)
	f.nc.SetFocusedIndex(1)
	require.Equal(t, []int{0, 1}, f.rec.focused)

	f.tf.SetGroup([]transformer.Member{a, b})
	assert.Equal(t, 1, f.nc.FocusedIndex())
	assert.Equal(t, []int{0, 1}, f.rec.focused, "no new focus notification")

	f.tf.SetGroup([]transformer.Member{b, a})
	assert.Equal(t, 0, f.nc.FocusedIndex())
	assert.Same(t, b, f.nc.FocusedMember())
	assert.Equal(t, []int{0, 1, 0}, f.rec.focused)
}

func TestFocusNextWraps(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0))
	f.nc.FocusNext()
	assert.Equal(t, 1, f.nc.FocusedIndex())
	f.nc.FocusNext()
	assert.Equal(t, 0, f.nc.FocusedIndex())
}

func TestBorders(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0), at(400, 0))
	layer := func() []surface.DrawCommand {
		return f.root.Child("transformer:" + f.tf.ID()).Child("nested-borders").Commands()
	}

	require.True(t, f.nc.Render())
	cmds := layer()
	require.Len(t, cmds, 1, "only the focused member has a border")
	assert.Equal(t, "#ff9800", cmds[0].Stroke)
	assert.False(t, f.nc.Render())

	opts := f.nc.Options()
	opts.ShowAllBorders = true
	f.nc.SetOptions(opts)
	require.True(t, f.nc.Render())
	cmds = layer()
	require.Len(t, cmds, 3)
	assert.Equal(t, "#ff9800", cmds[0].Stroke)
	assert.Equal(t, "#9e9e9e", cmds[1].Stroke)
}

func TestBordersFollowTransform(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0))
	f.nc.Render()

	f.stage.PointerDown(mgl64.Vec2{50, 25})
	f.stage.PointerMove(mgl64.Vec2{50, 25})
	f.stage.PointerMove(mgl64.Vec2{60, 25})
	assert.True(t, f.nc.Render())
	f.stage.PointerUp(mgl64.Vec2{60, 25})
}

func TestDestroy(t *testing.T) {
	f := newFixture(t, DefaultOptions(), at(0, 0), at(200, 0))
	f.nc.Destroy()
	f.click(mgl64.Vec2{250, 25})
	assert.Equal(t, NoFocus, f.nc.FocusedIndex())
	assert.Equal(t, []int{0}, f.rec.focused)
}
