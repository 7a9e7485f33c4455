// Package transform provides the coordinate math of the propagation pipeline:
// orbital-plane positions, the perifocal-to-inertial Euler rotation, sidereal
// time, and the inertial to Earth-fixed rotation.
//
// Frames:
//   - perifocal: orbital plane, X toward periapsis, Z along the orbit normal.
//   - inertial: Earth-centered, non-rotating (X toward the vernal equinox).
//   - Earth-fixed: Earth-centered, rotating with Earth (X through Greenwich).
//
// The inertial/Earth-fixed rotation uses GMST only, ignoring polar motion,
// nutation and the equation of the equinoxes. That is tens of meters at most,
// which is fine for plotting and animation.
package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vector3 is a Cartesian position in meters.
type Vector3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v − u.
func (v Vector3) Sub(u Vector3) Vector3 {
	return Vector3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Scale returns the vector multiplied by s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vector3) vec() *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}

// apply returns m·v.
func apply(m mat.Matrix, v Vector3) Vector3 {
	var out mat.VecDense
	out.MulVec(m, v.vec())
	return Vector3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
