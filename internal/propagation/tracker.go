package propagation

import (
	"fmt"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/transform"
)

// Tracker evaluates a single orbit at arbitrary times rather than on the
// fixed grid Propagate produces. It backs pass prediction and live streaming.
//
// Only time-based policies can be tracked; the geometric sweep advances by
// sample index and has no position for an arbitrary instant.
type Tracker struct {
	req   Request
	src   positionSource
	epoch time.Time
}

// NewTracker validates req and prepares its position source. SampleCount and
// Duration are not used by the tracker, but must still be valid.
func NewTracker(req Request) (*Tracker, error) {
	if req.Policy == PolicyGeometric {
		v := &orbit.ValidationError{}
		v.Add(FieldPolicy, "geometric sweep cannot be evaluated at arbitrary times")
		return nil, v
	}
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}
	src, err := newSource(req)
	if err != nil {
		return nil, err
	}

	epoch := req.Elements.Epoch
	if epoch.IsZero() {
		epoch = req.Start
	}
	return &Tracker{req: req, src: src, epoch: epoch}, nil
}

// Start returns the normalized request start.
func (tr *Tracker) Start() time.Time { return tr.req.Start }

// Frame returns the frame At reports positions in.
func (tr *Tracker) Frame() Frame { return tr.req.Frame }

// Inertial returns the inertial position at t.
func (tr *Tracker) Inertial(t time.Time) (transform.Vector3, error) {
	if tr.req.Policy == PolicySGP4 {
		t = t.Truncate(time.Second)
	}
	pos, _, err := tr.src.inertial(0, t, t.Sub(tr.epoch).Seconds())
	if err != nil {
		return transform.Vector3{}, fmt.Errorf("at %s: %w", t.UTC().Format(time.RFC3339Nano), err)
	}
	return pos, nil
}

// EarthFixed returns the Earth-fixed position at t.
func (tr *Tracker) EarthFixed(t time.Time) (transform.Vector3, error) {
	pos, err := tr.Inertial(t)
	if err != nil {
		return pos, err
	}
	return transform.ToEarthFixed(pos, transform.GMST(t)), nil
}

// At returns the sample at t in the tracker's frame.
func (tr *Tracker) At(t time.Time) (Sample, error) {
	if tr.req.Policy == PolicySGP4 {
		t = t.Truncate(time.Second)
	}
	var (
		pos transform.Vector3
		err error
	)
	if tr.req.Frame == FrameEarthFixed {
		pos, err = tr.EarthFixed(t)
	} else {
		pos, err = tr.Inertial(t)
	}
	if err != nil {
		return Sample{}, err
	}
	return Sample{Time: t, Position: pos}, nil
}

// Policy returns the propagation policy of the tracked request.
func (tr *Tracker) Policy() Policy { return tr.req.Policy }
