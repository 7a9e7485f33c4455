package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/propagation"
	"github.com/itsmewall/orbital-space-objects/internal/tle"
)

const deg2rad = math.Pi / 180

// orbitFlags are the element, site and policy flags shared by the
// propagate, parameters and passes commands.
type orbitFlags struct {
	semiMajorKm  float64
	ecc          float64
	incDeg       float64
	raanDeg      float64
	argpDeg      float64
	meanAnomDeg  float64
	launchLat    float64
	launchLon    float64
	epoch        string
	samples      int
	duration     time.Duration
	frame        string
	policy       string
	perturbation string
	line1        string
	line2        string
}

func (f *orbitFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.semiMajorKm, "a", 7000, "semi-major axis (km)")
	fs.Float64Var(&f.ecc, "e", 0, "eccentricity, [0, 1)")
	fs.Float64Var(&f.incDeg, "i", 0, "inclination (degrees)")
	fs.Float64Var(&f.raanDeg, "raan", 0, "right ascension of the ascending node (degrees)")
	fs.Float64Var(&f.argpDeg, "argp", 0, "argument of periapsis (degrees)")
	fs.Float64Var(&f.meanAnomDeg, "ma", 0, "mean anomaly at epoch (degrees)")
	fs.Float64Var(&f.launchLat, "lat", 0, "launch site latitude (degrees); requires --lon")
	fs.Float64Var(&f.launchLon, "lon", 0, "launch site longitude (degrees); requires --lat")
	fs.StringVar(&f.epoch, "epoch", "", "element epoch, RFC 3339 (default now)")
	fs.IntVar(&f.samples, "samples", 1000, "number of intervals; samples+1 positions are produced")
	fs.DurationVar(&f.duration, "duration", 0, "time span (default one orbital period)")
	fs.StringVar(&f.frame, "frame", "inertial", "output frame: inertial or earth_fixed")
	fs.StringVar(&f.policy, "policy", "kepler", "propagation policy: kepler, geometric or sgp4")
	fs.StringVar(&f.perturbation, "perturbation", "none", "perturbation model: none or j2")
	fs.StringVar(&f.line1, "line1", "", "TLE line 1 (sgp4)")
	fs.StringVar(&f.line2, "line2", "", "TLE line 2 (sgp4)")
}

func (f *orbitFlags) elements(now time.Time) (orbit.Elements, error) {
	el := orbit.Elements{
		SemiMajorAxis: f.semiMajorKm * 1000,
		Eccentricity:  f.ecc,
		Inclination:   f.incDeg * deg2rad,
		RAAN:          f.raanDeg * deg2rad,
		ArgPeriapsis:  f.argpDeg * deg2rad,
		MeanAnomaly:   f.meanAnomDeg * deg2rad,
		Epoch:         now,
	}
	if f.epoch != "" {
		t, err := time.Parse(time.RFC3339, f.epoch)
		if err != nil {
			return el, fmt.Errorf("--epoch: %w", err)
		}
		el.Epoch = t
	}
	return el, nil
}

// request builds a propagation request from the flags of cmd.
func (f *orbitFlags) request(cmd *cobra.Command, now time.Time) (propagation.Request, error) {
	var req propagation.Request

	el, err := f.elements(now)
	if err != nil {
		return req, err
	}
	frame, err := propagation.ParseFrame(f.frame)
	if err != nil {
		return req, fmt.Errorf("--frame: %w", err)
	}
	policy, err := propagation.ParsePolicy(f.policy)
	if err != nil {
		return req, fmt.Errorf("--policy: %w", err)
	}
	perturbation, err := propagation.ParsePerturbation(f.perturbation)
	if err != nil {
		return req, fmt.Errorf("--perturbation: %w", err)
	}

	req = propagation.Request{
		Elements:     el,
		SampleCount:  f.samples,
		Duration:     f.duration,
		Frame:        frame,
		Policy:       policy,
		Perturbation: perturbation,
	}

	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	switch {
	case latSet && lonSet:
		req.LaunchSite = &orbit.LaunchSite{Latitude: f.launchLat, Longitude: f.launchLon}
	case latSet || lonSet:
		return req, fmt.Errorf("--lat and --lon must be given together")
	}

	if policy == propagation.PolicySGP4 {
		req.TLE = &propagation.TLE{Line1: f.line1, Line2: f.line2}
		req.Elements = orbit.Elements{}
		if f.epoch != "" {
			req.Start = el.Epoch
		}
	}

	if req.Duration == 0 {
		req.Duration = f.defaultDuration(req)
	}
	return req, nil
}

// defaultDuration is one orbital period, taken from the TLE under sgp4.
func (f *orbitFlags) defaultDuration(req propagation.Request) time.Duration {
	el := req.Elements
	if req.TLE != nil {
		entry, err := tle.ParseLines("", req.TLE.Line1, req.TLE.Line2)
		if err != nil {
			return 90 * time.Minute
		}
		el = entry.Elements()
	}
	if ps := el.PeriodSeconds(); ps > 0 && !math.IsInf(ps, 0) && !math.IsNaN(ps) {
		return el.Period()
	}
	return 90 * time.Minute
}
