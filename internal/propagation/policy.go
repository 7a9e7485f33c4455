package propagation

import (
	"math"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/kepler"
	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/transform"
)

// positionSource yields the inertial position of sample i, taken at time t,
// dt seconds after the element epoch. It reports the Newton-Raphson
// iterations spent, zero for sources that do not solve Kepler's equation.
type positionSource interface {
	inertial(i int, t time.Time, dt float64) (transform.Vector3, int, error)
}

// twoBody holds what the geometric and Kepler sources share: the element set
// and whether J2 drift is applied before rotating into the inertial frame.
type twoBody struct {
	el orbit.Elements
	j2 bool
}

func (b twoBody) place(nu, dt float64) transform.Vector3 {
	el := b.el
	if b.j2 {
		el = el.Drifted(dt)
	}
	p := transform.PositionInPlane(el.SemiMajorAxis, el.Eccentricity, nu)
	return transform.ToInertial(p, el.Inclination, el.RAAN, el.ArgPeriapsis)
}

// sweepSource advances the true anomaly linearly with the sample index.
type sweepSource struct {
	twoBody
	start  float64 // true anomaly of sample 0
	orbits float64
	n      int
}

func (s sweepSource) inertial(i int, _ time.Time, dt float64) (transform.Vector3, int, error) {
	return s.place(kepler.Sweep(s.start, s.orbits, i, s.n), dt), 0, nil
}

// keplerSource solves Kepler's equation at each sample time.
type keplerSource struct {
	twoBody
	m0     float64 // mean anomaly at epoch
	period float64
}

func (s keplerSource) inertial(_ int, _ time.Time, dt float64) (transform.Vector3, int, error) {
	m := kepler.MeanAnomalyAt(s.m0, dt, s.period)
	nu, iters, err := kepler.TrueFromMean(m, s.el.Eccentricity)
	if err != nil {
		return transform.Vector3{}, iters, err
	}
	return s.place(nu, dt), iters, nil
}

// sgp4Source reads positions from the SGP4 model; TEME is taken as the
// inertial frame.
type sgp4Source struct {
	prop *SGP4Propagator
}

func (s sgp4Source) inertial(_ int, t time.Time, _ float64) (transform.Vector3, int, error) {
	p, err := s.prop.Position(t)
	return p, 0, err
}

// newSource builds the position source for a normalized request.
func newSource(req Request) (positionSource, error) {
	el := req.Elements
	body := twoBody{el: el, j2: req.Perturbation == PerturbationJ2}

	switch req.Policy {
	case PolicyGeometric:
		var start float64
		if req.LaunchSite != nil {
			start = anchorTrueAnomaly(el, *req.LaunchSite)
		}
		return sweepSource{
			twoBody: body,
			start:   start,
			orbits:  req.Duration.Seconds() / el.PeriodSeconds(),
			n:       req.SampleCount,
		}, nil

	case PolicyKepler:
		m0 := el.MeanAnomaly
		if req.LaunchSite != nil {
			nu := anchorTrueAnomaly(el, *req.LaunchSite)
			m0 = kepler.MeanFromEccentric(kepler.EccentricFromTrue(nu, el.Eccentricity), el.Eccentricity)
		}
		return keplerSource{twoBody: body, m0: m0, period: el.PeriodSeconds()}, nil

	case PolicySGP4:
		prop, err := NewSGP4Propagator(req.TLE.Line1, req.TLE.Line2)
		if err != nil {
			return nil, err
		}
		return sgp4Source{prop: prop}, nil
	}
	return nil, errUnknownPolicy(req.Policy)
}

// anchorTrueAnomaly returns the true anomaly at which the orbit passes
// closest in direction to the launch site at the element epoch: the site is
// placed on the WGS-84 ellipsoid, rotated into the inertial frame at the
// epoch's GMST, projected onto the orbital plane, and its polar angle taken.
func anchorTrueAnomaly(el orbit.Elements, site orbit.LaunchSite) float64 {
	fixed := transform.GeodeticToECEF(site.Latitude, site.Longitude, 0)
	inertial := transform.FromEarthFixed(fixed, transform.GMST(el.Epoch))
	pf := transform.InertialToPerifocal(inertial, el.Inclination, el.RAAN, el.ArgPeriapsis)
	return kepler.NormalizeAngle(math.Atan2(pf.Y, pf.X))
}
