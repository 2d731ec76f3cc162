package document

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
)

func TestSampleSceneIsValid(t *testing.T) {
	s := NewSampleScene()
	require.NoError(t, s.Validate())
	assert.Len(t, s.Objects, 3)
	assert.True(t, strings.HasPrefix(s.ID, "scene_"))
}

func TestLocalBounds(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want geometry.Rect
	}{
		{"rect", Object{Type: ObjectTypeShapeRect, Width: 20, Height: 10}, geometry.Rect{Width: 20, Height: 10}},
		{"ellipse", Object{Type: ObjectTypeShapeEllipse, RX: 5, RY: 3}, geometry.Rect{X: -5, Y: -3, Width: 10, Height: 6}},
		{"path", Object{Type: ObjectTypeVectorPath, Commands: []surface.PathCommand{
			{"M", 0.0, 150.0}, {"L", 100.0, 0.0}, {"L", 200.0, 150.0}, {"Z"},
		}}, geometry.Rect{Width: 200, Height: 150}},
		{"empty", Object{Type: ObjectTypeVectorPath}, geometry.Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.obj.LocalBounds()
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)
		})
	}
}

func TestObjectAtPrefersTopMost(t *testing.T) {
	s := NewEmptyScene("test", 100, 100)
	below := &Object{ID: "a", Type: ObjectTypeShapeRect, Width: 50, Height: 50, Visible: true, Transform: geometry.IdentityTransform()}
	above := &Object{ID: "b", Type: ObjectTypeShapeRect, Width: 50, Height: 50, Visible: true,
		Transform: geometry.Transform{X: 25, Y: 25, ScaleX: 1, ScaleY: 1}}
	s.Objects = []*Object{below, above}

	got, ok := s.ObjectAt(mgl64.Vec2{30, 30})
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	got, ok = s.ObjectAt(mgl64.Vec2{10, 10})
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	above.Locked = true
	got, ok = s.ObjectAt(mgl64.Vec2{30, 30})
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	_, ok = s.ObjectAt(mgl64.Vec2{90, 90})
	assert.False(t, ok)
}

func TestMembers(t *testing.T) {
	s := NewSampleScene()
	members, err := s.Members(s.Objects[2].ID, s.Objects[0].ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Same(t, s.Objects[2], members[0])

	_, err = s.Members("obj_missing")
	assert.ErrorIs(t, err, ErrUnknownObject)
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSampleScene()
	c := s.Clone()
	c.Objects[0].Transform.X = 999
	c.Objects[2].Commands[0][1] = -1.0

	assert.Equal(t, 200.0, s.Objects[0].Transform.X)
	assert.Equal(t, 0.0, s.Objects[2].Commands[0][1])
}

func TestSceneJSON(t *testing.T) {
	s := NewSampleScene()
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back Scene
	require.NoError(t, json.Unmarshal(data, &back))
	require.NoError(t, back.Validate())
	assert.Equal(t, s.Objects[1].RX, back.Objects[1].RX)
	assert.Equal(t, s.Objects[2].LocalBounds(), back.Objects[2].LocalBounds())
}

func TestRenderRecordsTransformedPaths(t *testing.T) {
	s := NewEmptyScene("test", 100, 100)
	s.Objects = []*Object{{
		ID:        "r",
		Type:      ObjectTypeShapeRect,
		Width:     10,
		Height:    10,
		Visible:   true,
		Transform: geometry.Transform{X: 5, Y: 5, ScaleX: 2, ScaleY: 2},
		Style:     Style{Fill: "#ff0000", Stroke: "#000000", StrokeWidth: 1, Opacity: 1},
	}, {
		ID:      "hidden",
		Type:    ObjectTypeShapeEllipse,
		RX:      3,
		RY:      3,
		Style:   Style{Fill: "#00ff00", Opacity: 1},
		Visible: false,
	}}

	rec := surface.NewRecorder("scene")
	s.Render(rec)
	cmds := rec.Commands()
	require.Len(t, cmds, 1)

	cmd := cmds[0]
	assert.Equal(t, "path", cmd.Op)
	assert.Equal(t, "#ff0000", cmd.Fill)
	assert.Equal(t, "#000000", cmd.Stroke)
	require.Len(t, cmd.Path, 5)
	assert.Equal(t, surface.PathCommand{"M", 5.0, 5.0}, cmd.Path[0])
	assert.Equal(t, surface.PathCommand{"L", 25.0, 25.0}, cmd.Path[2])
}

func TestRenderFlattensCurves(t *testing.T) {
	o := &Object{Type: ObjectTypeShapeEllipse, RX: 10, RY: 10, Visible: true,
		Transform: geometry.IdentityTransform(), Style: Style{Stroke: "#000000", StrokeWidth: 1, Opacity: 1}}
	rec := surface.NewRecorder("scene")
	o.Render(rec)

	cmds := rec.Commands()
	require.Len(t, cmds, 1)
	assert.Len(t, cmds[0].Path, 1+4*curveSegments+1)
	for _, p := range cmds[0].Path[:len(cmds[0].Path)-1] {
		r := math.Hypot(p[1].(float64), p[2].(float64))
		assert.InDelta(t, 10, r, 0.05)
	}
}

func TestParsePath(t *testing.T) {
	got, err := ParsePath("M 0,150 L 100 0 l 200 150 z")
	require.NoError(t, err)
	assert.Equal(t, []surface.PathCommand{
		{"M", 0.0, 150.0}, {"L", 100.0, 0.0}, {"L", 200.0, 150.0}, {"Z"},
	}, got)

	_, err = ParsePath("M 0")
	assert.Error(t, err)
	_, err = ParsePath("A 1 2")
	assert.Error(t, err)
	_, err = ParsePath("L x y")
	assert.Error(t, err)
}

const sceneTOML = `
name = "demo"
width = 800
height = 600
background = "#202020"

[[object]]
id = "box"
type = "ShapeRect"
x = 100
y = 50
rotation = 90
width = 40
height = 20
fill = "#ff0000"

[[object]]
type = "VectorPath"
path = "M 0 10 L 5 0 L 10 10 Z"
scale_x = 2
opacity = 0.5
hidden = true
`

func TestDecodeSceneTOML(t *testing.T) {
	s, err := DecodeSceneTOML(strings.NewReader(sceneTOML))
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, 800, s.Width)
	require.Len(t, s.Objects, 2)

	box := s.Objects[0]
	assert.Equal(t, "box", box.ID)
	assert.InDelta(t, math.Pi/2, box.Transform.Rotation, 1e-12)
	assert.Equal(t, 1.0, box.Transform.ScaleY)
	assert.Equal(t, 1.0, box.Style.Opacity)
	assert.True(t, box.Visible)

	tri := s.Objects[1]
	assert.True(t, strings.HasPrefix(tri.ID, "obj_"))
	assert.Equal(t, 2.0, tri.Transform.ScaleX)
	assert.Equal(t, 0.5, tri.Style.Opacity)
	assert.False(t, tri.Visible)
	assert.Len(t, tri.Commands, 4)
}

func TestDecodeSceneTOMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown key", "name = \"x\"\ncolour = 1\n", "unknown key"},
		{"bad type", "[[object]]\ntype = \"Blob\"\n", "unknown type"},
		{"rect without size", "[[object]]\ntype = \"ShapeRect\"\n", "positive width"},
		{"bad path", "[[object]]\ntype = \"VectorPath\"\npath = \"M 1\"\n", "parse path"},
		{"duplicate ids", "[[object]]\nid = \"a\"\ntype = \"ShapeEllipse\"\nrx = 1\nry = 1\n[[object]]\nid = \"a\"\ntype = \"ShapeEllipse\"\nrx = 1\nry = 1\n", "duplicate id"},
		{"syntax", "name = ", "decode scene"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSceneTOML(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
