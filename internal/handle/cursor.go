package handle

import (
	"math"

	"github.com/inamate/transformer/internal/geometry"
)

var resizeCursors = [4]string{"ew-resize", "nwse-resize", "ns-resize", "nesw-resize"}

// CursorFor returns the hover cursor of h on a box rotated by rotation.
func CursorFor(h geometry.Handle, rotation float64) string {
	switch h.Kind() {
	case geometry.KindRotator:
		return "grab"
	case geometry.KindSkew:
		if h == geometry.SkewHorizontal {
			return resizeCursor(rotation)
		}
		return resizeCursor(rotation + math.Pi/2)
	}
	d := h.Direction()
	return resizeCursor(math.Atan2(d[1], d[0]) + rotation)
}

// resizeCursor picks the double arrow closest to angle. Opposite
// directions share a cursor.
func resizeCursor(angle float64) string {
	octant := int(math.Round(angle/(math.Pi/4))) % 4
	if octant < 0 {
		octant += 4
	}
	return resizeCursors[octant]
}
