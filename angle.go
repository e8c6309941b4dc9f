package astrochart

import (
	"math"

	"github.com/jbeda/geom"
)

// ToRadian converts a chart angle to screen radians. Chart angles grow
// counter-clockwise on screen, and shift rotates the whole wheel.
func ToRadian(angle, shift float64) float64 {
	return (shift - angle) * math.Pi / 180
}

// ToDegree converts radians to degrees.
func ToDegree(rad float64) float64 {
	return rad * 180 / math.Pi
}

// PointOnCircle returns the point at rad on the circle centered at (cx, cy).
func PointOnCircle(cx, cy, radius, rad float64) geom.Coord {
	return geom.Coord{
		X: cx + radius*math.Cos(rad),
		Y: cy + radius*math.Sin(rad),
	}
}

// AngleOfLine returns the direction from (x1, y1) to (x2, y2) in degrees,
// in the standard screen frame (not the chart frame).
func AngleOfLine(x1, y1, x2, y2 float64) float64 {
	return ToDegree(math.Atan2(y2-y1, x2-x1))
}

// Normalize reduces angle to [0, 360).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	// -1e-15 + 360 rounds to 360
	if a >= 360 {
		a -= 360
	}
	return a
}
