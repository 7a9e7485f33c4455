// Package kepler advances a body along a closed two-body orbit: the mean,
// eccentric and true anomaly conversions and the Newton-Raphson solution of
// Kepler's equation.
//
// All angles are radians. Functions returning an angle normalize it to
// [0, 2π) exactly once, through NormalizeAngle.
package kepler

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Tolerance is the Newton-Raphson stopping threshold on |ΔE| (radians).
	Tolerance = 1e-6

	// MaxIterations caps the Newton-Raphson loop.
	MaxIterations = 100

	twoPi = 2 * math.Pi
)

// ErrNumericDivergence is matched by errors returned when Kepler's equation
// could not be solved within MaxIterations.
var ErrNumericDivergence = errors.New("kepler: newton-raphson did not converge")

// DivergenceError reports a Kepler solve that exhausted its iteration budget.
type DivergenceError struct {
	MeanAnomaly  float64 // radians
	Eccentricity float64
	Estimate     float64 // last eccentric anomaly estimate (radians)
	LastStep     float64 // |ΔE| of the final iteration
	Iterations   int
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("kepler: no convergence after %d iterations (M=%.9f e=%.9f last |ΔE|=%.3e)",
		e.Iterations, e.MeanAnomaly, e.Eccentricity, e.LastStep)
}

func (e *DivergenceError) Unwrap() error { return ErrNumericDivergence }

// NormalizeAngle wraps an angle into [0, 2π).
func NormalizeAngle(x float64) float64 {
	x = math.Mod(x, twoPi)
	if x < 0 {
		x += twoPi
	}
	// math.Mod of a tiny negative number plus 2π can round up to 2π.
	if x >= twoPi {
		x = 0
	}
	return x
}

// Period returns the orbital period in seconds, T = 2π·√(a³/μ).
func Period(a, mu float64) float64 {
	return twoPi * math.Sqrt(a*a*a/mu)
}

// MeanMotion returns the mean motion in rad/s, n = √(μ/a³).
func MeanMotion(a, mu float64) float64 {
	return math.Sqrt(mu / (a * a * a))
}

// MeanAnomalyAt returns M = m0 + 2π·dt/period, normalized to [0, 2π).
func MeanAnomalyAt(m0, dt, period float64) float64 {
	return NormalizeAngle(m0 + twoPi*dt/period)
}

// SolveEccentric solves Kepler's equation M = E − e·sin E for the eccentric
// anomaly by Newton-Raphson, seeded with E₀ = M:
//
//	E ← E − (E − e·sin E − M) / (1 − e·cos E)
//
// It stops when |ΔE| < Tolerance and reports the number of iterations used.
// If MaxIterations is reached first, the last estimate is returned together
// with a *DivergenceError; callers decide whether that estimate is usable.
func SolveEccentric(m, e float64) (float64, int, error) {
	E := m
	var step float64
	for i := 1; i <= MaxIterations; i++ {
		step = (E - e*math.Sin(E) - m) / (1 - e*math.Cos(E))
		E -= step
		if math.Abs(step) < Tolerance {
			return E, i, nil
		}
	}
	return E, MaxIterations, &DivergenceError{
		MeanAnomaly:  m,
		Eccentricity: e,
		Estimate:     E,
		LastStep:     math.Abs(step),
		Iterations:   MaxIterations,
	}
}

// TrueFromEccentric converts eccentric anomaly to true anomaly,
//
//	ν = 2·atan2(√(1+e)·sin(E/2), √(1−e)·cos(E/2))
//
// normalized to [0, 2π).
func TrueFromEccentric(E, e float64) float64 {
	s, c := math.Sincos(E / 2)
	return NormalizeAngle(2 * math.Atan2(math.Sqrt(1+e)*s, math.Sqrt(1-e)*c))
}

// EccentricFromTrue is the inverse of TrueFromEccentric.
func EccentricFromTrue(nu, e float64) float64 {
	s, c := math.Sincos(nu / 2)
	return NormalizeAngle(2 * math.Atan2(math.Sqrt(1-e)*s, math.Sqrt(1+e)*c))
}

// MeanFromEccentric evaluates Kepler's equation, M = E − e·sin E.
func MeanFromEccentric(E, e float64) float64 {
	return NormalizeAngle(E - e*math.Sin(E))
}

// TrueFromMean chains SolveEccentric and TrueFromEccentric. On divergence
// the true anomaly of the last estimate is returned with the error.
func TrueFromMean(m, e float64) (float64, int, error) {
	E, n, err := SolveEccentric(m, e)
	return TrueFromEccentric(E, e), n, err
}
