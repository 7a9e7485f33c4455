package propagation

import (
	"fmt"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/itsmewall/orbital-space-objects/internal/transform"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Propagate takes Satellite by value so SGP4 error codes are not visible to
// the caller. Failures are detected by checking the output for NaN/Inf and
// unreasonable position magnitudes.

// SGP4Propagator wraps the go-satellite library for a single element set.
type SGP4Propagator struct {
	sat     satellite.Satellite
	catalog string
}

// NewSGP4Propagator initializes the SGP4 model from a two-line element set.
//
// The lines are format-checked first because go-satellite calls log.Fatal
// on malformed input.
func NewSGP4Propagator(line1, line2 string) (*SGP4Propagator, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE: %w", err)
	}

	catalog := strings.TrimSpace(line1[2:7])
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for %s: code=%d %s", catalog, sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat, catalog: catalog}, nil
}

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// Position returns the TEME position in meters at t. The library's calendar
// interface has one-second resolution, so t is truncated to the second.
func (p *SGP4Propagator) Position(t time.Time) (transform.Vector3, error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	pos, _ := satellite.Propagate(p.sat, year, int(month), day, hour, minute, sec)

	out := transform.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}.Scale(1000)
	if !out.IsFinite() {
		return transform.Vector3{}, fmt.Errorf("sgp4 propagation failed for %s: output is NaN/Inf", p.catalog)
	}

	// Sanity check: magnitude should be between ~6200 km and ~50000 km.
	if mag := out.Norm() / 1000; mag < 6200.0 || mag > 50000.0 {
		return transform.Vector3{}, fmt.Errorf("sgp4 propagation failed for %s: unreasonable position magnitude %.1f km", p.catalog, mag)
	}
	return out, nil
}
