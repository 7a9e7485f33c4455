package propagation

import (
	"fmt"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/tle"
	"github.com/itsmewall/orbital-space-objects/internal/transform"
)

// Minimum spacing between samples. SGP4 times resolve to whole seconds.
const (
	minStep     = time.Microsecond
	minSGP4Step = time.Second
)

func errUnknownPolicy(p Policy) error {
	return fmt.Errorf("unknown propagation policy %v", p)
}

// Validate reports every problem with the request as a *orbit.ValidationError,
// or nil when Propagate would accept it.
func (r Request) Validate() error {
	_, err := r.normalize()
	return err
}

// normalize validates the request and fills in derived defaults: elements
// from the TLE for PolicySGP4 and Start from the element epoch.
func (r Request) normalize() (Request, error) {
	var v *orbit.ValidationError

	switch r.Policy {
	case PolicySGP4:
		v = &orbit.ValidationError{}
		switch {
		case r.TLE == nil:
			v.Add(FieldTLE, "required for sgp4 propagation")
		default:
			entry, err := tle.ParseLines("", r.TLE.Line1, r.TLE.Line2)
			if err != nil {
				v.Add(FieldTLE, err.Error())
				break
			}
			r.Elements = entry.Elements()
		}
		if r.LaunchSite != nil {
			v.Add(FieldPolicy, "launch site anchoring does not apply to sgp4")
		}
	case PolicyKepler, PolicyGeometric:
		v = orbit.Check(r.Elements, r.LaunchSite)
	default:
		v = &orbit.ValidationError{}
		v.Add(FieldPolicy, fmt.Sprintf("unknown value %d", int(r.Policy)))
	}

	limit := r.MaxSamples
	if limit <= 0 {
		limit = MaxSamples
	}
	switch {
	case r.SampleCount < 1:
		v.Add(FieldSampleCount, fmt.Sprintf("must be at least 1 (got %d)", r.SampleCount))
	case r.SampleCount > limit:
		v.Add(FieldSampleCount, fmt.Sprintf("must be at most %d (got %d)", limit, r.SampleCount))
	}

	step := minStep
	if r.Policy == PolicySGP4 {
		step = minSGP4Step
	}
	switch {
	case r.Duration <= 0:
		v.Add(FieldDuration, fmt.Sprintf("must be positive (got %s)", r.Duration))
	case r.SampleCount >= 1 && r.Duration/time.Duration(r.SampleCount) < step:
		v.Add(FieldDuration, fmt.Sprintf("leaves less than %s between samples", step))
	}

	if r.Frame != FrameInertial && r.Frame != FrameEarthFixed {
		v.Add(FieldFrame, fmt.Sprintf("unknown value %d", int(r.Frame)))
	}
	if r.Perturbation != PerturbationNone && r.Perturbation != PerturbationJ2 {
		v.Add(FieldPerturbation, fmt.Sprintf("unknown value %d", int(r.Perturbation)))
	}
	if r.Policy != PolicySGP4 && r.Elements.Epoch.IsZero() &&
		(r.Frame == FrameEarthFixed || r.LaunchSite != nil) {
		v.Add(FieldEpoch, "required for the earth_fixed frame and launch site anchoring")
	}

	if err := v.Err(); err != nil {
		return r, err
	}
	if r.Start.IsZero() {
		r.Start = r.Elements.Epoch
	}
	return r, nil
}

// Propagate validates req and returns SampleCount+1 samples evenly spaced
// over req.Duration from req.Start, in req.Frame.
//
// It fails with a *orbit.ValidationError before any computation, or with an
// error wrapping kepler.ErrNumericDivergence or an SGP4 failure. No samples
// are returned on failure. Propagate has no side effects and is safe for
// concurrent use.
func Propagate(req Request) (*Result, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	src, err := newSource(req)
	if err != nil {
		return nil, err
	}

	// Seconds between the element epoch and Start. Without an epoch the
	// request is relative and Start counts as the epoch.
	var epochOffset float64
	if !req.Elements.Epoch.IsZero() {
		epochOffset = req.Start.Sub(req.Elements.Epoch).Seconds()
	}

	n := req.SampleCount
	res := &Result{
		Frame:   req.Frame,
		Policy:  req.Policy,
		Samples: make([]Sample, 0, n+1),
	}

	for i := 0; i <= n; i++ {
		offset := time.Duration(float64(req.Duration) * float64(i) / float64(n))
		t := req.Start.Add(offset)
		if req.Policy == PolicySGP4 {
			t = t.Truncate(time.Second)
		}

		pos, iters, err := src.inertial(i, t, epochOffset+offset.Seconds())
		if err != nil {
			return nil, fmt.Errorf("sample %d at %s: %w", i, t.UTC().Format(time.RFC3339Nano), err)
		}
		res.Stats.TotalIterations += iters
		if iters > res.Stats.MaxIterations {
			res.Stats.MaxIterations = iters
		}

		if req.Frame == FrameEarthFixed {
			pos = transform.ToEarthFixed(pos, transform.GMST(t))
		}
		res.Samples = append(res.Samples, Sample{Time: t, Position: pos})
	}

	return res, nil
}
