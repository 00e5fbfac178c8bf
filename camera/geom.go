package camera

import "math"

// Dist2 returns the length of the vector (a, b).
func Dist2(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}

// Angle returns the direction of (dx, dy) in radians.
func Angle(dy, dx float64) float64 {
	return math.Atan2(dy, dx)
}
