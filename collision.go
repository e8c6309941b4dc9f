package astrochart

// DefaultCollisionDegrees is the default tolerance of IsCollision.
const DefaultCollisionDegrees = 10

// IsCollision reports whether angle lies within radius degrees of any of
// refs, measured the short way round the circle. The bound is inclusive
// and angles may lie outside [0, 360).
func IsCollision(angle float64, refs []float64, radius float64) bool {
	for _, ref := range refs {
		d := Normalize(angle - ref)
		if d > 180 {
			d = 360 - d
		}
		if d <= radius {
			return true
		}
	}
	return false
}
