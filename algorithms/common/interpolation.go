package common

import (
	"math"
)

// CrossingIndex returns the fractional sample index at which the straight line
// through (i-1, prev) and (i, next) reaches level. prev and next must lie on
// opposite sides of level (or next equal to it).
func CrossingIndex(i int, prev, next, level float64) float64 {
	delta := next - prev
	if delta == 0 {
		return float64(i)
	}
	return float64(i-1) + (level-prev)/delta
}

// ParabolicVertex fits a parabola through (-1, y1), (0, y2) and (1, y3) and
// returns the abscissa and height of its vertex. ok is false when the three
// points are collinear.
func ParabolicVertex(y1, y2, y3 float64) (offset, value float64, ok bool) {
	denom := 2.0 * (2.0*y2 - y1 - y3)
	if math.Abs(denom) < 1e-15 {
		return 0, y2, false
	}

	offset = (y3 - y1) / denom
	a := 0.5 * (y1 - 2.0*y2 + y3)
	b := 0.5 * (y3 - y1)
	return offset, y2 + a*offset*offset + b*offset, true
}
