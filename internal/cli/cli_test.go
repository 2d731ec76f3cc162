package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
)

const sceneTOML = `
name = "cli"
width = 400
height = 300

[[object]]
id = "box"
type = "ShapeRect"
x = 100
y = 100
width = 100
height = 50
fill = "#ff0000"
`

func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(sceneTOML), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseDrag(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    drag
		wantErr bool
	}{
		{"handle with start", "bottomRight:10,20:30,40", drag{target: "bottomRight", handle: geometry.BottomRight, from: mgl64.Vec2{10, 20}, hasFrom: true, to: mgl64.Vec2{30, 40}}, false},
		{"handle without start", "rotator::5,6", drag{target: "rotator", handle: geometry.Rotator, to: mgl64.Vec2{5, 6}}, false},
		{"translate", "translate:1,2:3.5,-4", drag{target: "translate", from: mgl64.Vec2{1, 2}, hasFrom: true, to: mgl64.Vec2{3.5, -4}}, false},
		{"translate needs start", "translate::3,4", drag{}, true},
		{"unknown handle", "middle:1,2:3,4", drag{}, true},
		{"missing part", "bottomRight:1,2", drag{}, true},
		{"bad number", "pointer:a,2:3,4", drag{}, true},
		{"missing comma", "pointer:1 2:3,4", drag{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDrag(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandlesCommand(t *testing.T) {
	out, err := execute(t, "handles")
	require.NoError(t, err)
	for _, h := range geometry.AllHandles {
		assert.Contains(t, out, h.String())
	}
	assert.Contains(t, out, "translate")
}

func TestRenderPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	_, err := execute(t, "render", "--scene", writeScene(t), "--select", "box",
		"--drag", "bottomRight::250,200", "--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestRenderJSONReflectsDrag(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")
	_, err := execute(t, "render", "--scene", writeScene(t),
		"--drag", "pointer:150,125:150,125",
		"--drag", "translate:150,125:170,145",
		"--out", out, "--json")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var commands []surface.DrawCommand
	require.NoError(t, json.Unmarshal(data, &commands))
	require.NotEmpty(t, commands)

	// the first path is the box, now starting at 120,120
	first := commands[0].Path[0]
	assert.Equal(t, "M", first[0])
	assert.InDelta(t, 120, first[1], 1e-9)
	assert.InDelta(t, 120, first[2], 1e-9)
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"handle without selection", []string{"render", "--scene", writeScene(t), "--drag", "bottomRight::1,1", "--out", filepath.Join(dir, "a.png")}},
		{"bad drag", []string{"render", "--drag", "nope", "--out", filepath.Join(dir, "b.png")}},
		{"unknown select", []string{"render", "--select", "missing", "--out", filepath.Join(dir, "c.png")}},
		{"bad props", []string{"render", "--props", "{", "--out", filepath.Join(dir, "d.png")}},
		{"missing scene", []string{"render", "--scene", filepath.Join(dir, "none.toml"), "--out", filepath.Join(dir, "e.png")}},
		{"missing out", []string{"render"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
