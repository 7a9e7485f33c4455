// Package passes finds the intervals during which an orbiting object is
// above an observer's horizon.
package passes

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/transform"
)

// Source yields Earth-fixed positions at arbitrary times.
// *propagation.Tracker satisfies it.
type Source interface {
	EarthFixed(t time.Time) (transform.Vector3, error)
}

// Target is one object to predict passes for.
type Target struct {
	ID     string
	Source Source
}

// Observer is a ground site on the WGS-84 ellipsoid.
type Observer struct {
	Latitude  float64 `json:"latitude"`  // degrees
	Longitude float64 `json:"longitude"` // degrees
}

// GroundTrackPoint is a sub-satellite position at a specific time during a pass.
type GroundTrackPoint struct {
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`  // km
	Elevation float64   `json:"elevation"` // degrees above the observer's horizon
}

// Pass describes one pass over the observer.
type Pass struct {
	StartTime        time.Time          `json:"startTime"`
	MaxElevationTime time.Time          `json:"maxElevationTime"`
	EndTime          time.Time          `json:"endTime"`
	DurationSeconds  float64            `json:"durationSeconds"`
	MaxElevation     float64            `json:"maxElevation"`
	AzimuthAtMax     float64            `json:"azimuthAtMax"`
	StartAzimuth     float64            `json:"startAzimuth"`
	EndAzimuth       float64            `json:"endAzimuth"`
	GroundTrack      []GroundTrackPoint `json:"groundTrack,omitempty"`
}

// TargetPasses holds the predicted passes for one target.
type TargetPasses struct {
	ID     string `json:"id,omitempty"`
	Passes []Pass `json:"passes"`
	Error  string `json:"error,omitempty"`
}

// Request holds the parameters for a pass prediction.
type Request struct {
	Observer     Observer
	Start        time.Time
	Horizon      time.Duration
	MinElevation float64 // degrees
	MaxPasses    int
}

const (
	coarseStep      = 30 * time.Second
	fineStep        = time.Second
	groundTrackStep = 10 * time.Second
	minPassDur      = 10 * time.Second
)

// Predict computes passes for every target. Targets run concurrently,
// bounded by the CPU count; results keep the order of targets.
func Predict(ctx context.Context, targets []Target, req Request) []TargetPasses {
	results := make([]TargetPasses, len(targets))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, tg Target) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = TargetPasses{ID: tg.ID, Error: "canceled"}
				return
			}

			passes, err := PredictOne(ctx, tg.Source, req)
			results[idx] = TargetPasses{ID: tg.ID, Passes: passes}
			if err != nil {
				results[idx].Error = err.Error()
			}
		}(i, target)
	}

	wg.Wait()
	return results
}

// PredictOne finds the passes of a single source that rise and set inside
// [Start, Start+Horizon]. A pass already in progress at Start, or still
// above MinElevation at the end of the window, is not reported. A canceled
// context stops the scan and returns the passes found so far along with
// ctx.Err().
func PredictOne(ctx context.Context, src Source, req Request) ([]Pass, error) {
	end := req.Start.Add(req.Horizon)
	passes := []Pass{}
	sc := scan{src: src, obs: req.Observer, minElev: req.MinElevation}

	var (
		lastErr   error
		ok        bool // at least one position was produced
		prev      time.Time
		prevAbove bool
		havePrev  bool // prev is a readable sample
	)
	for t := req.Start; !t.After(end) && len(passes) < req.MaxPasses; {
		if err := ctx.Err(); err != nil {
			return passes, err
		}

		above, err := sc.above(t)
		if err != nil {
			lastErr = err
			havePrev = false
			t = nextCoarse(t, end)
			continue
		}
		ok = true

		if above && havePrev && !prevAbove {
			pass, err := sc.trace(ctx, prev, t, end)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return passes, ctxErr
				}
				lastErr = err
				havePrev = false
				t = nextCoarse(t, end)
				continue
			}
			if pass == nil {
				// Still above when the window closes.
				break
			}
			if pass.EndTime.Sub(pass.StartTime) >= minPassDur {
				passes = append(passes, *pass)
			}
			t = pass.EndTime
			above = false
		}

		prev, prevAbove, havePrev = t, above, true
		t = nextCoarse(t, end)
	}

	// A source that never produced a position is an error, not an empty sky.
	if !ok && lastErr != nil {
		return passes, fmt.Errorf("propagate: %w", lastErr)
	}
	return passes, nil
}

// nextCoarse steps t by coarseStep, landing exactly on end once, then past it.
func nextCoarse(t, end time.Time) time.Time {
	next := t.Add(coarseStep)
	if next.After(end) && t.Before(end) {
		return end
	}
	return next
}

type scan struct {
	src     Source
	obs     Observer
	minElev float64
}

func (s scan) above(t time.Time) (bool, error) {
	el, _, _, err := elevationAt(s.src, s.obs, t)
	if err != nil {
		return false, err
	}
	return el >= s.minElev, nil
}

// crossing bisects (lo, hi] down to fineStep and returns the first time at
// which the state differs from the state at lo.
func (s scan) crossing(lo, hi time.Time, loAbove bool) (time.Time, error) {
	for hi.Sub(lo) > fineStep {
		mid := lo.Add(hi.Sub(lo) / 2)
		above, err := s.above(mid)
		if err != nil {
			return time.Time{}, err
		}
		if above == loAbove {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, nil
}

// trace follows a pass whose rise lies in (below, firstAbove]. It returns
// nil without error when the object has not set by windowEnd.
func (s scan) trace(ctx context.Context, below, firstAbove, windowEnd time.Time) (*Pass, error) {
	rise, err := s.crossing(below, firstAbove, false)
	if err != nil {
		return nil, err
	}

	var set time.Time
	for last := firstAbove; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := last.Add(coarseStep)
		if next.After(windowEnd) {
			next = windowEnd
		}
		above, err := s.above(next)
		if err != nil {
			return nil, err
		}
		if !above {
			if set, err = s.crossing(last, next, true); err != nil {
				return nil, err
			}
			break
		}
		if !next.Before(windowEnd) {
			return nil, nil
		}
		last = next
	}

	pass := &Pass{
		StartTime:       rise,
		EndTime:         set,
		DurationSeconds: set.Sub(rise).Seconds(),
		MaxElevation:    -90,
	}
	if _, la, _, err := elevationAt(s.src, s.obs, rise); err == nil {
		pass.StartAzimuth = la.AzimuthDeg
	}
	if _, la, _, err := elevationAt(s.src, s.obs, set); err == nil {
		pass.EndAzimuth = la.AzimuthDeg
	}

	// Culmination and ground track at fine resolution.
	for t := rise; t.Before(set); t = t.Add(fineStep) {
		el, la, fixed, err := elevationAt(s.src, s.obs, t)
		if err != nil {
			continue
		}
		if el > pass.MaxElevation {
			pass.MaxElevation, pass.MaxElevationTime, pass.AzimuthAtMax = el, t, la.AzimuthDeg
		}
		if t.Sub(rise)%groundTrackStep == 0 {
			geo := transform.ECEFToGeodetic(fixed)
			pass.GroundTrack = append(pass.GroundTrack, GroundTrackPoint{
				Time:      t,
				Latitude:  geo.LatDeg,
				Longitude: geo.LonDeg,
				Altitude:  geo.AltM / 1000,
				Elevation: el,
			})
		}
	}
	if pass.MaxElevationTime.IsZero() {
		return nil, fmt.Errorf("no position between %s and %s", rise.Format(time.RFC3339), set.Format(time.RFC3339))
	}
	return pass, nil
}

// elevationAt returns the elevation, look angles and Earth-fixed position of
// the source as seen from obs at t.
func elevationAt(src Source, obs Observer, t time.Time) (float64, transform.LookAngles, transform.Vector3, error) {
	fixed, err := src.EarthFixed(t)
	if err != nil {
		return 0, transform.LookAngles{}, transform.Vector3{}, err
	}
	la := transform.LookAnglesFrom(obs.Latitude, obs.Longitude, fixed)
	return la.ElevationDeg, la, fixed, nil
}
