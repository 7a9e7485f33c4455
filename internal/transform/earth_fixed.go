package transform

// ToEarthFixed rotates an inertial position into the Earth-fixed frame using
// a precomputed GMST angle (radians): r_fixed = Rz(−GMST) · r_inertial.
func ToEarthFixed(p Vector3, gmst float64) Vector3 {
	return apply(Rz(-gmst), p)
}

// FromEarthFixed rotates an Earth-fixed position back into the inertial
// frame: r_inertial = Rz(+GMST) · r_fixed.
func FromEarthFixed(p Vector3, gmst float64) Vector3 {
	return apply(Rz(gmst), p)
}
