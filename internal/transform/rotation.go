package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rz returns the active rotation by theta radians about the Z axis.
func Rz(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// Rx returns the active rotation by theta radians about the X axis.
func Rx(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// PerifocalToInertial returns the classical 3-1-3 Euler rotation
//
//	R = Rz(raan) · Rx(inc) · Rz(argp)
//
// that carries a perifocal (orbital-plane) vector into the inertial frame.
// The order is fixed: any other composition still yields a closed ellipse of
// the right size, just in the wrong place.
func PerifocalToInertial(raan, inc, argp float64) *mat.Dense {
	var node mat.Dense
	node.Mul(Rz(raan), Rx(inc))

	var r mat.Dense
	r.Mul(&node, Rz(argp))
	return &r
}

// ToInertial rotates an orbital-plane position into the inertial frame.
func ToInertial(p Vector3, inc, raan, argp float64) Vector3 {
	return apply(PerifocalToInertial(raan, inc, argp), p)
}

// InertialToPerifocal undoes ToInertial. The rotation is orthonormal, so the
// inverse is the transpose.
func InertialToPerifocal(p Vector3, inc, raan, argp float64) Vector3 {
	return apply(PerifocalToInertial(raan, inc, argp).T(), p)
}
