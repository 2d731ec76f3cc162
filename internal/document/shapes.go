package document

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
)

// curveSegments is how many line segments approximate one bezier curve.
const curveSegments = 12

func rectPath(w, h float64) []surface.PathCommand {
	return []surface.PathCommand{
		{"M", 0.0, 0.0},
		{"L", w, 0.0},
		{"L", w, h},
		{"L", 0.0, h},
		{"Z"},
	}
}

// ellipsePath approximates an ellipse with four cubic beziers.
func ellipsePath(rx, ry float64) []surface.PathCommand {
	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498
	kx, ky := rx*k, ry*k

	return []surface.PathCommand{
		{"M", rx, 0.0},
		{"C", rx, ky, kx, ry, 0.0, ry},
		{"C", -kx, ry, -rx, ky, -rx, 0.0},
		{"C", -rx, -ky, -kx, -ry, 0.0, -ry},
		{"C", kx, -ry, rx, -ky, rx, 0.0},
		{"Z"},
	}
}

// computePathBounds returns the local bounding box of a path, including
// bezier control points.
func computePathBounds(path []surface.PathCommand) geometry.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, cmd := range path {
		for _, p := range points(cmd) {
			minX = math.Min(minX, p[0])
			maxX = math.Max(maxX, p[0])
			minY = math.Min(minY, p[1])
			maxY = math.Max(maxY, p[1])
		}
	}
	if math.IsInf(minX, 1) {
		return geometry.Rect{}
	}
	return geometry.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// points returns the coordinates a command carries, control points first.
func points(cmd surface.PathCommand) []mgl64.Vec2 {
	if len(cmd) == 0 {
		return nil
	}
	op, ok := cmd[0].(string)
	if !ok {
		return nil
	}

	var n int
	switch op {
	case "M", "L":
		n = 1
	case "Q":
		n = 2
	case "C":
		n = 3
	default:
		return nil
	}
	if len(cmd) < 1+2*n {
		return nil
	}
	out := make([]mgl64.Vec2, n)
	for i := range n {
		out[i] = mgl64.Vec2{toFloat64(cmd[1+2*i]), toFloat64(cmd[2+2*i])}
	}
	return out
}

// flatten converts a path into polylines in world space, one per subpath.
// closed reports which of them end with Z.
func flatten(path []surface.PathCommand, m geometry.Matrix2D) (lines [][]mgl64.Vec2, closed []bool) {
	var cur []mgl64.Vec2
	var pen mgl64.Vec2
	finish := func(z bool) {
		if len(cur) > 1 {
			lines = append(lines, cur)
			closed = append(closed, z)
		}
		cur = nil
	}

	for _, cmd := range path {
		if len(cmd) == 0 {
			continue
		}
		pts := points(cmd)
		op, _ := cmd[0].(string)
		switch {
		case op == "M" && len(pts) == 1:
			finish(false)
			pen = pts[0]
			cur = []mgl64.Vec2{m.Apply(pen)}
		case op == "L" && len(pts) == 1:
			pen = pts[0]
			cur = append(cur, m.Apply(pen))
		case op == "Q" && len(pts) == 2:
			for i := 1; i <= curveSegments; i++ {
				t := float64(i) / curveSegments
				cur = append(cur, m.Apply(quadratic(pen, pts[0], pts[1], t)))
			}
			pen = pts[1]
		case op == "C" && len(pts) == 3:
			for i := 1; i <= curveSegments; i++ {
				t := float64(i) / curveSegments
				cur = append(cur, m.Apply(cubic(pen, pts[0], pts[1], pts[2], t)))
			}
			pen = pts[2]
		case op == "Z":
			finish(true)
		}
	}
	finish(false)
	return lines, closed
}

func quadratic(p0, p1, p2 mgl64.Vec2, t float64) mgl64.Vec2 {
	u := 1 - t
	return p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
}

func cubic(p0, p1, p2, p3 mgl64.Vec2, t float64) mgl64.Vec2 {
	u := 1 - t
	return p0.Mul(u * u * u).
		Add(p1.Mul(3 * u * u * t)).
		Add(p2.Mul(3 * u * t * t)).
		Add(p3.Mul(t * t * t))
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Render draws the visible objects into s in scene order.
func (s *Scene) Render(dst surface.Surface) {
	dst.Clear()
	for _, o := range s.Objects {
		if o.Visible {
			o.Render(dst)
		}
	}
}

// Render draws the object with its world transform applied.
func (o *Object) Render(dst surface.Surface) {
	lines, closed := flatten(o.Path(), o.Transform.Matrix())
	if len(lines) == 0 {
		return
	}
	opacity := o.Style.Opacity
	dst.LineStyle(o.Style.StrokeWidth, o.Style.Stroke, opacity)
	if o.Style.Fill != "" {
		dst.BeginFill(o.Style.Fill, opacity)
	}
	for i, line := range lines {
		dst.MoveTo(line[0][0], line[0][1])
		for _, p := range line[1:] {
			dst.LineTo(p[0], p[1])
		}
		if closed[i] {
			dst.ClosePath()
		}
	}
	if o.Style.Fill != "" {
		dst.EndFill()
	}
	dst.LineStyle(0, "", 0)
}
