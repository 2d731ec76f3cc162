package handle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/surface"
)

// shape is the per-kind drawing strategy, chosen once at construction.
type shape interface {
	size(s style.HandleStyle) (along, across float64)
	draw(s surface.Surface, v *Visual) error
	glow(s surface.Surface, v *Visual)
}

func shapeFor(k geometry.Kind) shape {
	switch k {
	case geometry.KindEdge:
		return pill{}
	case geometry.KindRotator:
		return icon{}
	case geometry.KindSkew:
		return diamond{}
	default:
		return circle{}
	}
}

// glowAlpha is the opacity of halo layer i, outermost first.
func glowAlpha(intensity float64, i int) float64 {
	return min(intensity, 1) * 0.35 / float64(i+1)
}

// glowGrowth is how far halo layer i extends past the shape, in radii.
func glowGrowth(i int) float64 {
	return 0.35 * float64(glowLayers-i)
}

type circle struct{}

func (circle) size(s style.HandleStyle) (float64, float64) {
	return 2 * s.Radius, 2 * s.Radius
}

func (circle) draw(s surface.Surface, v *Visual) error {
	st := v.style
	s.LineStyle(st.StrokeWidth, st.Stroke, st.Alpha)
	s.BeginFill(st.Fill, st.Alpha)
	s.DrawCircle(v.position[0], v.position[1], st.Radius)
	s.EndFill()
	return nil
}

func (circle) glow(s surface.Surface, v *Visual) {
	st := v.style
	s.LineStyle(0, "", 0)
	for i := 0; i < glowLayers; i++ {
		s.BeginFill(st.GlowColor, glowAlpha(st.GlowIntensity, i))
		s.DrawCircle(v.position[0], v.position[1], st.Radius*(1+glowGrowth(i)))
		s.EndFill()
	}
}

// pill is a capsule lying along the edge it controls.
type pill struct{}

func (pill) size(s style.HandleStyle) (float64, float64) {
	thickness := 2 * s.Radius * 0.8
	return thickness * max(s.PillAspect, 1), thickness
}

func (p pill) draw(s surface.Surface, v *Visual) error {
	st := v.style
	along, across := p.size(st)
	s.LineStyle(st.StrokeWidth, st.Stroke, st.Alpha)
	s.BeginFill(st.Fill, st.Alpha)
	drawPill(s, v.position, along, across, v.angle)
	s.EndFill()
	return nil
}

func (p pill) glow(s surface.Surface, v *Visual) {
	st := v.style
	along, across := p.size(st)
	s.LineStyle(0, "", 0)
	for i := 0; i < glowLayers; i++ {
		grow := glowGrowth(i) * st.Radius * 2
		s.BeginFill(st.GlowColor, glowAlpha(st.GlowIntensity, i))
		drawPill(s, v.position, along+grow, across+grow, v.angle)
		s.EndFill()
	}
}

// drawPill uses the rounded rectangle primitive when the pill is axis
// aligned and a polygon otherwise.
func drawPill(s surface.Surface, c mgl64.Vec2, along, across, angle float64) {
	r := across / 2
	turns := angle / (math.Pi / 2)
	if q := math.Round(turns); math.Abs(turns-q) < 1e-9 {
		w, h := along, across
		if int(math.Abs(q))%2 == 1 {
			w, h = h, w
		}
		s.DrawRoundedRect(c[0]-w/2, c[1]-h/2, w, h, r)
		return
	}
	s.DrawPolygon(pillOutline(c, along, across, angle))
}

// pillOutline approximates a rotated capsule with two semicircular caps.
func pillOutline(c mgl64.Vec2, along, across, angle float64) []mgl64.Vec2 {
	const segments = 8
	r := across / 2
	half := max(along/2-r, 0)
	m := geometry.Translate(c[0], c[1]).Multiply(geometry.Rotate(angle))

	pts := make([]mgl64.Vec2, 0, 2*(segments+1))
	for i := 0; i <= segments; i++ {
		a := -math.Pi/2 + math.Pi*float64(i)/segments
		pts = append(pts, m.Apply(mgl64.Vec2{half + r*math.Cos(a), r * math.Sin(a)}))
	}
	for i := 0; i <= segments; i++ {
		a := math.Pi/2 + math.Pi*float64(i)/segments
		pts = append(pts, m.Apply(mgl64.Vec2{-half + r*math.Cos(a), r * math.Sin(a)}))
	}
	return pts
}

// icon draws the cached rotator texture.
type icon struct{}

func (icon) size(s style.HandleStyle) (float64, float64) {
	d := 2 * s.Radius * s.IconScale
	return d, d
}

func (i icon) draw(s surface.Surface, v *Visual) error {
	st := v.style
	d, _ := i.size(st)
	tex, err := v.textures.Rotator(st.Stroke, st.Arrow, int(math.Ceil(d)))
	if err != nil {
		return err
	}
	s.DrawSprite(tex.ID, v.position[0], v.position[1], d, d, v.angle)
	return nil
}

func (icon) glow(surface.Surface, *Visual) {}

// diamond marks a skew handle.
type diamond struct{}

func (diamond) size(s style.HandleStyle) (float64, float64) {
	return 2 * s.Radius, 2 * s.Radius
}

func (d diamond) draw(s surface.Surface, v *Visual) error {
	st := v.style
	s.LineStyle(st.StrokeWidth, st.Stroke, st.Alpha)
	s.BeginFill(st.Fill, st.Alpha)
	s.DrawPolygon(diamondOutline(v.position, st.Radius, v.angle))
	s.EndFill()
	return nil
}

func (d diamond) glow(s surface.Surface, v *Visual) {
	st := v.style
	s.LineStyle(0, "", 0)
	for i := 0; i < glowLayers; i++ {
		s.BeginFill(st.GlowColor, glowAlpha(st.GlowIntensity, i))
		s.DrawPolygon(diamondOutline(v.position, st.Radius*(1+glowGrowth(i)), v.angle))
		s.EndFill()
	}
}

func diamondOutline(c mgl64.Vec2, r, angle float64) []mgl64.Vec2 {
	m := geometry.Translate(c[0], c[1]).Multiply(geometry.Rotate(angle))
	return []mgl64.Vec2{
		m.Apply(mgl64.Vec2{0, -r}),
		m.Apply(mgl64.Vec2{r, 0}),
		m.Apply(mgl64.Vec2{0, r}),
		m.Apply(mgl64.Vec2{-r, 0}),
	}
}
