package surface

import (
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// Textures resolves sprite texture ids to images.
type Textures interface {
	Image(id string) (image.Image, bool)
}

// Raster replays draw commands onto an image.
type Raster struct {
	Width, Height int
	Background    string
	Textures      Textures
}

// Render draws commands in order and returns the resulting image.
func (r Raster) Render(commands []DrawCommand) (image.Image, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", r.Width, r.Height)
	}
	dc := gg.NewContext(r.Width, r.Height)
	if r.Background != "" {
		if err := setColor(dc, r.Background, 1); err != nil {
			return nil, err
		}
		dc.Clear()
	}

	for i, cmd := range commands {
		if err := r.draw(dc, cmd); err != nil {
			return nil, fmt.Errorf("render command %d (%s): %w", i, cmd.Op, err)
		}
	}
	return dc.Image(), nil
}

// WritePNG renders commands and encodes them as PNG.
func (r Raster) WritePNG(w io.Writer, commands []DrawCommand) error {
	img, err := r.Render(commands)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(img).EncodePNG(w)
}

func (r Raster) draw(dc *gg.Context, cmd DrawCommand) error {
	if cmd.Op == "sprite" {
		return r.drawSprite(dc, cmd)
	}

	switch cmd.Op {
	case "circle":
		dc.DrawCircle(cmd.X, cmd.Y, cmd.Radius)
	case "roundedRect":
		dc.DrawRoundedRectangle(cmd.X, cmd.Y, cmd.Width, cmd.Height, cmd.Radius)
	case "path":
		if err := tracePath(dc, cmd.Path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}

	if cmd.Fill != "" {
		if err := setColor(dc, cmd.Fill, cmd.FillAlpha); err != nil {
			return err
		}
		dc.FillPreserve()
	}
	if cmd.Stroke != "" && cmd.StrokeWidth > 0 {
		if err := setColor(dc, cmd.Stroke, cmd.StrokeAlpha); err != nil {
			return err
		}
		dc.SetLineWidth(cmd.StrokeWidth)
		dc.SetDash(cmd.Dash...)
		dc.StrokePreserve()
		dc.SetDash()
	}
	dc.ClearPath()
	return nil
}

func (r Raster) drawSprite(dc *gg.Context, cmd DrawCommand) error {
	if r.Textures == nil {
		return nil
	}
	img, ok := r.Textures.Image(cmd.TextureID)
	if !ok {
		return fmt.Errorf("texture %q not found", cmd.TextureID)
	}

	dc.Push()
	defer dc.Pop()
	b := img.Bounds()
	dc.RotateAbout(cmd.Rotation, cmd.X, cmd.Y)
	if cmd.Width > 0 && cmd.Height > 0 && b.Dx() > 0 && b.Dy() > 0 {
		dc.ScaleAbout(cmd.Width/float64(b.Dx()), cmd.Height/float64(b.Dy()), cmd.X, cmd.Y)
	}
	dc.DrawImageAnchored(img, int(cmd.X), int(cmd.Y), 0.5, 0.5)
	return nil
}

func tracePath(dc *gg.Context, path []PathCommand) error {
	for _, seg := range path {
		if len(seg) == 0 {
			continue
		}
		op, _ := seg[0].(string)
		switch op {
		case "Z":
			dc.ClosePath()
		case "M", "L":
			if len(seg) < 3 {
				return fmt.Errorf("short path segment %v", seg)
			}
			x, okX := toFloat(seg[1])
			y, okY := toFloat(seg[2])
			if !okX || !okY {
				return fmt.Errorf("bad path segment %v", seg)
			}
			if op == "M" {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		default:
			return fmt.Errorf("unknown path op %q", op)
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func setColor(dc *gg.Context, hex string, alpha float64) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("parse color %q: %w", hex, err)
	}
	dc.SetRGBA(c.R, c.G, c.B, alpha)
	return nil
}
