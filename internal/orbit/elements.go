// Package orbit defines the Keplerian element set used throughout the
// service, its validation rules, and derived orbital parameters.
package orbit

import (
	"math"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/kepler"
)

// Earth constants.
const (
	EarthMu     = 3.986004418e14 // gravitational parameter (m³/s²)
	EarthRadius = 6378137.0      // equatorial radius (meters)
	EarthJ2     = 1.08263e-3     // second zonal harmonic
)

// Elements is a classical Keplerian element set. Angles are radians and
// distances meters. MeanAnomaly is the value at Epoch; its zero value means
// the element was not supplied and the body starts at periapsis.
type Elements struct {
	SemiMajorAxis float64
	Eccentricity  float64
	Inclination   float64
	RAAN          float64
	ArgPeriapsis  float64
	MeanAnomaly   float64
	Epoch         time.Time
}

// LaunchSite is a geodetic location in degrees used to anchor the starting
// position of an orbit.
type LaunchSite struct {
	Latitude  float64
	Longitude float64
}

// Period returns the orbital period.
func (el Elements) Period() time.Duration {
	return time.Duration(el.PeriodSeconds() * float64(time.Second))
}

// PeriodSeconds returns the orbital period in seconds.
func (el Elements) PeriodSeconds() float64 {
	return kepler.Period(el.SemiMajorAxis, EarthMu)
}

// MeanMotion returns the mean motion in rad/s.
func (el Elements) MeanMotion() float64 {
	return kepler.MeanMotion(el.SemiMajorAxis, EarthMu)
}

// SemiLatusRectum returns p = a(1 − e²).
func (el Elements) SemiLatusRectum() float64 {
	return el.SemiMajorAxis * (1 - el.Eccentricity*el.Eccentricity)
}

// J2Rates returns the secular drift of the ascending node and of the
// argument of periapsis caused by Earth's oblateness, in rad/s.
//
//	Ω̇ = −1.5·n·J2·(Rₑ/p)²·cos i
//	ω̇ = 0.75·n·J2·(Rₑ/p)²·(5cos²i − 1)
func (el Elements) J2Rates() (raanRate, argpRate float64) {
	n := el.MeanMotion()
	k := n * EarthJ2 * math.Pow(EarthRadius/el.SemiLatusRectum(), 2)
	cosI := math.Cos(el.Inclination)
	raanRate = -1.5 * k * cosI
	argpRate = 0.75 * k * (5*cosI*cosI - 1)
	return raanRate, argpRate
}

// Drifted returns a copy of el with RAAN and argument of periapsis advanced
// by the J2 secular rates over dt seconds.
func (el Elements) Drifted(dt float64) Elements {
	raanRate, argpRate := el.J2Rates()
	out := el
	out.RAAN = kepler.NormalizeAngle(el.RAAN + raanRate*dt)
	out.ArgPeriapsis = kepler.NormalizeAngle(el.ArgPeriapsis + argpRate*dt)
	return out
}
