package transform

import "math"

// PositionInPlane returns the perifocal position for semi-major axis a
// (meters), eccentricity e and true anomaly nu (radians), from the conic
// equation r = a(1 − e²) / (1 + e·cos ν). The result lies in the z = 0 plane.
//
// Inputs are not checked; a NaN anomaly yields a NaN position.
func PositionInPlane(a, e, nu float64) Vector3 {
	sinNu, cosNu := math.Sincos(nu)
	r := a * (1 - e*e) / (1 + e*cosNu)
	return Vector3{X: r * cosNu, Y: r * sinNu}
}
