package orbit

import "math"

// Parameters are quantities derived from an element set. Distances are
// meters, speeds m/s, energies J/kg, rates rad/s.
type Parameters struct {
	PeriodSeconds    float64 `json:"periodSeconds"`
	MeanMotion       float64 `json:"meanMotion"`
	PerigeeRadius    float64 `json:"perigeeRadius"`
	ApogeeRadius     float64 `json:"apogeeRadius"`
	PerigeeAltitude  float64 `json:"perigeeAltitude"`
	ApogeeAltitude   float64 `json:"apogeeAltitude"`
	PerigeeSpeed     float64 `json:"perigeeSpeed"`
	ApogeeSpeed      float64 `json:"apogeeSpeed"`
	SpecificEnergy   float64 `json:"specificEnergy"`
	PotentialEnergy  float64 `json:"potentialEnergy"`
	KineticEnergy    float64 `json:"kineticEnergy"`
	RAANRate         float64 `json:"raanRate"`
	ArgPeriapsisRate float64 `json:"argPeriapsisRate"`

	// Stable reports whether perigee clears StablePerigeeAltitude.
	Stable bool `json:"stable"`
}

// StablePerigeeAltitude is the perigee altitude below which drag decays an
// orbit within a few revolutions.
const StablePerigeeAltitude = 100e3

// ComputeParameters derives period, apsides, vis-viva speeds, energies and
// J2 drift rates. The elements must already have passed Validate.
func ComputeParameters(el Elements) Parameters {
	a, e := el.SemiMajorAxis, el.Eccentricity
	rp := a * (1 - e)
	ra := a * (1 + e)

	vp := visViva(rp, a)
	raanRate, argpRate := el.J2Rates()

	return Parameters{
		PeriodSeconds:    el.PeriodSeconds(),
		MeanMotion:       el.MeanMotion(),
		PerigeeRadius:    rp,
		ApogeeRadius:     ra,
		PerigeeAltitude:  rp - EarthRadius,
		ApogeeAltitude:   ra - EarthRadius,
		PerigeeSpeed:     vp,
		ApogeeSpeed:      visViva(ra, a),
		SpecificEnergy:   -EarthMu / (2 * a),
		PotentialEnergy:  -EarthMu / rp,
		KineticEnergy:    0.5 * vp * vp,
		RAANRate:         raanRate,
		ArgPeriapsisRate: argpRate,
		Stable:           rp-EarthRadius > StablePerigeeAltitude,
	}
}

// EnergyPoint is the specific energy split at one true anomaly (J/kg).
type EnergyPoint struct {
	TrueAnomaly float64 `json:"trueAnomaly"` // radians
	Potential   float64 `json:"potential"`
	Kinetic     float64 `json:"kinetic"`
	Total       float64 `json:"total"`
}

// EnergyProfile samples potential and kinetic energy at n true anomalies
// evenly spaced over one orbit, starting at periapsis. Their sum is the
// constant specific orbital energy.
func EnergyProfile(el Elements, n int) []EnergyPoint {
	if n < 1 {
		return nil
	}
	a, e := el.SemiMajorAxis, el.Eccentricity
	p := el.SemiLatusRectum()

	out := make([]EnergyPoint, n)
	for i := range out {
		nu := 2 * math.Pi * float64(i) / float64(n)
		r := p / (1 + e*math.Cos(nu))
		v := visViva(r, a)
		pot := -EarthMu / r
		kin := 0.5 * v * v
		out[i] = EnergyPoint{TrueAnomaly: nu, Potential: pot, Kinetic: kin, Total: pot + kin}
	}
	return out
}

// visViva returns the orbital speed at radius r: v² = μ(2/r − 1/a).
func visViva(r, a float64) float64 {
	return math.Sqrt(EarthMu * (2/r - 1/a))
}
