package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/geometry"
)

const (
	targetTranslate = "translate"
	targetPointer   = "pointer"
)

// drag is one replayed press, move and release.
type drag struct {
	target string
	handle geometry.Handle
	// from is unset for handle drags that start on the handle itself.
	from    mgl64.Vec2
	hasFrom bool
	to      mgl64.Vec2
}

// parseDrag reads "target:x0,y0:x1,y1". The target is a handle id,
// "translate" or "pointer". A handle drag may leave the start empty to press
// the handle where it is drawn.
func parseDrag(s string) (drag, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return drag{}, fmt.Errorf("drag %q: want target:x0,y0:x1,y1", s)
	}

	d := drag{target: parts[0]}
	switch d.target {
	case targetTranslate, targetPointer:
	default:
		h, err := geometry.ParseHandle(d.target)
		if err != nil {
			return drag{}, fmt.Errorf("drag %q: %w", s, err)
		}
		d.handle = h
	}

	if parts[1] != "" {
		p, err := parsePoint(parts[1])
		if err != nil {
			return drag{}, fmt.Errorf("drag %q: %w", s, err)
		}
		d.from, d.hasFrom = p, true
	} else if d.target == targetTranslate || d.target == targetPointer {
		return drag{}, fmt.Errorf("drag %q: %s needs a start point", s, d.target)
	}

	p, err := parsePoint(parts[2])
	if err != nil {
		return drag{}, fmt.Errorf("drag %q: %w", s, err)
	}
	d.to = p
	return d, nil
}

func parsePoint(s string) (mgl64.Vec2, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return mgl64.Vec2{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return mgl64.Vec2{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return mgl64.Vec2{}, fmt.Errorf("point %q: %w", s, err)
	}
	return mgl64.Vec2{x, y}, nil
}

// replay runs d through the engine's stage.
func (d drag) replay(e *engine.Engine) error {
	from := d.from
	if d.target != targetTranslate && d.target != targetPointer {
		v := e.Transformer().Handle(d.handle)
		if v == nil || !v.Visible() {
			return fmt.Errorf("drag %s: handle is not shown", d.target)
		}
		if !d.hasFrom {
			from = v.Position()
		}
	}
	e.Drag(from, d.to)
	return nil
}
