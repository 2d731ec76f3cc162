package surface

import (
	"encoding/json"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// PathCommand is a single path segment. The format matches Canvas2D:
// ["M", x, y], ["L", x, y], ["Z"].
type PathCommand []any

// DrawCommand is a single drawing operation for the frontend or the raster
// player to execute.
type DrawCommand struct {
	Op    string `json:"op"`              // "path", "circle", "roundedRect", "sprite"
	Layer string `json:"layer,omitempty"` // name of the owning surface

	Path []PathCommand `json:"path,omitempty"`

	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Radius   float64 `json:"radius,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	Fill        string    `json:"fill,omitempty"`
	FillAlpha   float64   `json:"fillAlpha,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	StrokeAlpha float64   `json:"strokeAlpha,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`

	TextureID string `json:"textureId,omitempty"`
}

type paint struct {
	fill        string
	fillAlpha   float64
	filling     bool
	stroke      string
	strokeWidth float64
	strokeAlpha float64
	dash        []float64
}

// Recorder is a Surface that keeps its commands in memory. Children are
// drawn after (above) their parent's own commands, in insertion order.
type Recorder struct {
	name     string
	commands []DrawCommand
	children []*Recorder
	parent   *Recorder

	pen     paint
	pending []PathCommand

	// writes counts every recorded operation, including clears.
	writes int
}

// NewRecorder creates an empty root recorder.
func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

// Name returns the surface name.
func (r *Recorder) Name() string { return r.name }

// Writes returns how many drawing operations were issued on this surface.
func (r *Recorder) Writes() int { return r.writes }

// Commands returns this surface's own commands.
func (r *Recorder) Commands() []DrawCommand {
	r.flush()
	return r.commands
}

// Children returns the child surfaces.
func (r *Recorder) Children() []*Recorder { return r.children }

// Child returns the first child with the given name.
func (r *Recorder) Child(name string) *Recorder {
	for _, c := range r.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (r *Recorder) Clear() {
	r.writes++
	r.commands = nil
	r.pending = nil
	r.pen = paint{}
}

func (r *Recorder) BeginFill(color string, alpha float64) {
	r.writes++
	r.flush()
	r.pen.fill, r.pen.fillAlpha, r.pen.filling = color, alpha, true
}

func (r *Recorder) EndFill() {
	r.writes++
	r.flush()
	r.pen.filling = false
}

func (r *Recorder) LineStyle(thickness float64, color string, alpha float64) {
	r.writes++
	r.flush()
	r.pen.strokeWidth, r.pen.stroke, r.pen.strokeAlpha = thickness, color, alpha
}

func (r *Recorder) SetDash(pattern []float64) {
	r.writes++
	r.flush()
	r.pen.dash = slices.Clone(pattern)
}

func (r *Recorder) MoveTo(x, y float64) {
	r.writes++
	r.pending = append(r.pending, PathCommand{"M", x, y})
}

func (r *Recorder) LineTo(x, y float64) {
	r.writes++
	if len(r.pending) == 0 {
		r.pending = append(r.pending, PathCommand{"M", x, y})
		return
	}
	r.pending = append(r.pending, PathCommand{"L", x, y})
}

func (r *Recorder) ClosePath() {
	r.writes++
	if len(r.pending) == 0 {
		return
	}
	r.pending = append(r.pending, PathCommand{"Z"})
	r.flush()
}

func (r *Recorder) DrawCircle(cx, cy, radius float64) {
	r.writes++
	r.flush()
	r.emit(DrawCommand{Op: "circle", X: cx, Y: cy, Radius: radius})
}

func (r *Recorder) DrawRoundedRect(x, y, w, h, radius float64) {
	r.writes++
	r.flush()
	r.emit(DrawCommand{Op: "roundedRect", X: x, Y: y, Width: w, Height: h, Radius: radius})
}

func (r *Recorder) DrawPolygon(points []mgl64.Vec2) {
	r.writes++
	r.flush()
	if len(points) == 0 {
		return
	}
	path := make([]PathCommand, 0, len(points)+1)
	for i, p := range points {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p[0], p[1]})
	}
	path = append(path, PathCommand{"Z"})
	r.emit(DrawCommand{Op: "path", Path: path})
}

func (r *Recorder) DrawSprite(textureID string, cx, cy, w, h, rotation float64) {
	r.writes++
	r.flush()
	r.commands = append(r.commands, DrawCommand{
		Op:        "sprite",
		Layer:     r.name,
		X:         cx,
		Y:         cy,
		Width:     w,
		Height:    h,
		Rotation:  rotation,
		TextureID: textureID,
	})
}

// AddChild creates a child surface drawn above everything added before it.
func (r *Recorder) AddChild(name string) Surface {
	c := &Recorder{name: name, parent: r}
	r.children = append(r.children, c)
	return c
}

// RemoveChild detaches a child created by AddChild.
func (r *Recorder) RemoveChild(child Surface) {
	c, ok := child.(*Recorder)
	if !ok {
		return
	}
	if i := slices.Index(r.children, c); i >= 0 {
		r.children = slices.Delete(r.children, i, i+1)
		c.parent = nil
	}
}

// flush turns a pending MoveTo/LineTo path into a stroke-only command.
func (r *Recorder) flush() {
	if len(r.pending) == 0 {
		return
	}
	path := r.pending
	r.pending = nil
	r.emit(DrawCommand{Op: "path", Path: path})
}

func (r *Recorder) emit(cmd DrawCommand) {
	cmd.Layer = r.name
	if r.pen.filling && (cmd.Op != "path" || closed(cmd.Path)) {
		cmd.Fill, cmd.FillAlpha = r.pen.fill, r.pen.fillAlpha
	}
	if r.pen.strokeWidth > 0 {
		cmd.Stroke, cmd.StrokeWidth, cmd.StrokeAlpha = r.pen.stroke, r.pen.strokeWidth, r.pen.strokeAlpha
		cmd.Dash = r.pen.dash
	}
	if cmd.Fill == "" && cmd.Stroke == "" {
		return
	}
	r.commands = append(r.commands, cmd)
}

func closed(path []PathCommand) bool {
	return len(path) > 0 && len(path[len(path)-1]) == 1 && path[len(path)-1][0] == "Z"
}

// Compile flattens the surface tree into a command buffer in painter's
// order (back to front).
func (r *Recorder) Compile() []DrawCommand {
	var out []DrawCommand
	r.compile(&out)
	return out
}

func (r *Recorder) compile(out *[]DrawCommand) {
	*out = append(*out, r.Commands()...)
	for _, c := range r.children {
		c.compile(out)
	}
}

// ToJSON serializes the compiled command buffer.
func (r *Recorder) ToJSON() (string, error) {
	return CommandsToJSON(r.Compile())
}

// CommandsToJSON serializes draw commands to JSON.
func CommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
