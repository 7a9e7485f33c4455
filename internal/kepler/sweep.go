package kepler

// Sweep returns the true anomaly of sample i out of n when the orbit is traced
// at a constant angular rate: ν = start + 2π·orbits·i/n, normalized.
//
// This is a geometric preview, not a time-accurate propagation: a real body
// moves faster near periapsis than near apoapsis, which Sweep ignores. For
// circular orbits the two agree.
func Sweep(start, orbits float64, i, n int) float64 {
	return NormalizeAngle(start + twoPi*orbits*float64(i)/float64(n))
}
