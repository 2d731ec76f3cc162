package geometry

import "math"

// Snap returns the entry of snaps nearest to angle when it lies within
// tolerance, compared modulo 2*pi. The earlier entry wins a tie. The result
// stays on the same turn as angle so that continuous drags do not jump by a
// full revolution. Without a match angle is returned unchanged.
func Snap(angle float64, snaps []float64, tolerance float64) float64 {
	if len(snaps) == 0 || tolerance <= 0 {
		return angle
	}

	best := math.Inf(1)
	snapped := angle
	for _, s := range snaps {
		d := AngleDelta(angle, s)
		if math.Abs(d) <= tolerance && math.Abs(d) < best {
			best = math.Abs(d)
			snapped = angle + d
		}
	}
	return snapped
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// RadiansAll converts a list of angles from degrees to radians.
func RadiansAll(deg []float64) []float64 {
	if deg == nil {
		return nil
	}
	out := make([]float64, len(deg))
	for i, d := range deg {
		out[i] = Radians(d)
	}
	return out
}
