// Package surface defines the retained drawing capability visuals render
// into, a recorder implementation that produces draw command buffers and a
// raster player for PNG snapshots.
package surface

import "github.com/go-gl/mathgl/mgl64"

// Surface is a retained drawing target. Colors are "#rrggbb" hex strings.
// Shapes drawn between BeginFill and EndFill are filled; every shape is
// stroked with the current line style when its thickness is positive.
type Surface interface {
	Clear()
	BeginFill(color string, alpha float64)
	EndFill()
	LineStyle(thickness float64, color string, alpha float64)
	SetDash(pattern []float64)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()

	DrawCircle(cx, cy, r float64)
	DrawRoundedRect(x, y, w, h, r float64)
	DrawPolygon(points []mgl64.Vec2)
	DrawSprite(textureID string, cx, cy, w, h, rotation float64)

	AddChild(name string) Surface
	RemoveChild(child Surface)
}
