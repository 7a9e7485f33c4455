// Package propagation turns an orbit request into an ordered, frame-tagged
// series of positions. Propagate is pure; WorkerPool runs many requests in
// parallel and owns the logging and metrics around them.
package propagation

import (
	"fmt"
	"strings"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/transform"
)

// MaxSamples is the default upper bound on Request.SampleCount.
const MaxSamples = 100000

// Request field names, reported alongside the orbit field names in a
// ValidationError.
const (
	FieldSampleCount  = "sampleCount"
	FieldDuration     = "durationSeconds"
	FieldFrame        = "frame"
	FieldPolicy       = "propagation"
	FieldPerturbation = "perturbation"
	FieldTLE          = "tle"
	FieldEpoch        = "epoch"
)

// Frame identifies the reference frame of a Result.
type Frame int

const (
	FrameInertial Frame = iota
	FrameEarthFixed
)

func (f Frame) String() string {
	switch f {
	case FrameInertial:
		return "inertial"
	case FrameEarthFixed:
		return "earth_fixed"
	}
	return fmt.Sprintf("Frame(%d)", int(f))
}

// ParseFrame accepts "inertial" or "earth_fixed". An empty string selects
// FrameInertial.
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inertial", "eci":
		return FrameInertial, nil
	case "earth_fixed", "earth-fixed", "ecef":
		return FrameEarthFixed, nil
	}
	return 0, fmt.Errorf("unknown frame %q", s)
}

// Policy selects how the anomaly advances between samples.
type Policy int

const (
	// PolicyKepler solves Kepler's equation at each sample time.
	PolicyKepler Policy = iota
	// PolicyGeometric sweeps the true anomaly at a constant rate. It is a
	// visual preview and not time accurate for eccentric orbits.
	PolicyGeometric
	// PolicySGP4 propagates a two-line element set with the SGP4 model.
	PolicySGP4
)

func (p Policy) String() string {
	switch p {
	case PolicyGeometric:
		return "geometric"
	case PolicyKepler:
		return "kepler"
	case PolicySGP4:
		return "sgp4"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "geometric", "kepler" or "sgp4". An empty string
// selects PolicyKepler.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geometric", "sweep":
		return PolicyGeometric, nil
	case "", "kepler":
		return PolicyKepler, nil
	case "sgp4":
		return PolicySGP4, nil
	}
	return 0, fmt.Errorf("unknown propagation policy %q", s)
}

// Perturbation selects the force model on top of two-body motion.
type Perturbation int

const (
	PerturbationNone Perturbation = iota
	// PerturbationJ2 applies the secular node and periapsis drift caused by
	// Earth's oblateness.
	PerturbationJ2
)

func (p Perturbation) String() string {
	switch p {
	case PerturbationNone:
		return "none"
	case PerturbationJ2:
		return "j2"
	}
	return fmt.Sprintf("Perturbation(%d)", int(p))
}

// ParsePerturbation accepts "none" or "j2". An empty string selects
// PerturbationNone.
func ParsePerturbation(s string) (Perturbation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PerturbationNone, nil
	case "j2":
		return PerturbationJ2, nil
	}
	return 0, fmt.Errorf("unknown perturbation %q", s)
}

// TLE is a two-line element set.
type TLE struct {
	Line1 string
	Line2 string
}

// Request describes one propagation. It is a value: Propagate never
// modifies it.
type Request struct {
	Elements   orbit.Elements
	LaunchSite *orbit.LaunchSite

	// Start is the time of the first sample. Zero means Elements.Epoch.
	Start       time.Time
	SampleCount int
	Duration    time.Duration

	Frame        Frame
	Policy       Policy
	Perturbation Perturbation

	// TLE is required by PolicySGP4 and ignored otherwise.
	TLE *TLE

	// MaxSamples overrides the package MaxSamples bound when positive.
	MaxSamples int
}

// Sample is a position at an instant. Position is in meters in the frame of
// the enclosing Result.
type Sample struct {
	Time     time.Time
	Position transform.Vector3
}

// Stats summarizes solver effort for a Result.
type Stats struct {
	MaxIterations   int // most Newton-Raphson iterations spent on one sample
	TotalIterations int
}

// Result is the output of a successful propagation: SampleCount+1 samples in
// ascending time order, all in Frame.
type Result struct {
	Frame   Frame
	Policy  Policy
	Samples []Sample
	Stats   Stats
}

// Config holds worker pool settings. cmd/orbitd fills it from the
// environment.
type Config struct {
	Workers int // pool size (default: runtime.NumCPU())
}
