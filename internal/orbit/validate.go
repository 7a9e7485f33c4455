package orbit

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrDegenerateOrbit matches a ValidationError whose elements do not describe
// a closed orbit (eccentricity ≥ 1 or a non-positive semi-major axis).
var ErrDegenerateOrbit = errors.New("orbit: degenerate orbit")

// Field names reported in a ValidationError. They match the JSON request
// fields of the HTTP API.
const (
	FieldSemiMajorAxis   = "semiMajorAxis"
	FieldEccentricity    = "eccentricity"
	FieldInclination     = "inclination"
	FieldRAAN            = "raan"
	FieldArgPeriapsis    = "argPeriapsis"
	FieldMeanAnomaly     = "meanAnomaly"
	FieldLaunchLatitude  = "launchLatitude"
	FieldLaunchLongitude = "launchLongitude"
)

const twoPi = 2 * math.Pi

// FieldError is one violated constraint.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`

	degenerate bool
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "invalid orbit request: " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrDegenerateOrbit and one of the violations
// makes the orbit open or collapsed.
func (e *ValidationError) Is(target error) bool {
	if target != ErrDegenerateOrbit {
		return false
	}
	for _, f := range e.Fields {
		if f.degenerate {
			return true
		}
	}
	return false
}

// Add appends a violation.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) addDegenerate(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason, degenerate: true})
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Merge appends the violations of other on fields e does not report yet.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for _, f := range other.Fields {
		if !e.Has(f.Field) {
			e.Fields = append(e.Fields, f)
		}
	}
}

// Err returns e as an error, or nil when nothing was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks an element set and optional launch site. It returns nil or
// a *ValidationError naming every violated field.
func Validate(el Elements, site *LaunchSite) error {
	return Check(el, site).Err()
}

// Check is Validate returning the raw list, which callers extend with their
// own request-level checks. The result is never nil.
func Check(el Elements, site *LaunchSite) *ValidationError {
	v := &ValidationError{}

	switch a := el.SemiMajorAxis; {
	case !finite(a):
		v.Add(FieldSemiMajorAxis, "must be finite")
	case a <= 0:
		v.addDegenerate(FieldSemiMajorAxis, fmt.Sprintf("must be positive (got %g m)", a))
	}

	switch e := el.Eccentricity; {
	case !finite(e):
		v.Add(FieldEccentricity, "must be finite")
	case e < 0:
		v.Add(FieldEccentricity, fmt.Sprintf("must not be negative (got %g)", e))
	case e >= 1:
		v.addDegenerate(FieldEccentricity, fmt.Sprintf("must be less than 1 for a closed orbit (got %g)", e))
	}

	checkAngle(v, FieldInclination, el.Inclination, math.Pi, true)
	checkAngle(v, FieldRAAN, el.RAAN, twoPi, false)
	checkAngle(v, FieldArgPeriapsis, el.ArgPeriapsis, twoPi, false)
	checkAngle(v, FieldMeanAnomaly, el.MeanAnomaly, twoPi, false)

	if site != nil {
		if !finite(site.Latitude) || site.Latitude < -90 || site.Latitude > 90 {
			v.Add(FieldLaunchLatitude, fmt.Sprintf("must be within [-90, 90] degrees (got %g)", site.Latitude))
		}
		if !finite(site.Longitude) || site.Longitude < -180 || site.Longitude > 180 {
			v.Add(FieldLaunchLongitude, fmt.Sprintf("must be within [-180, 180] degrees (got %g)", site.Longitude))
		}
	}
	return v
}

// checkAngle requires x in [0, limit], or [0, limit) when closed is false.
func checkAngle(v *ValidationError, field string, x, limit float64, closed bool) {
	if !finite(x) {
		v.Add(field, "must be finite")
		return
	}
	if x < 0 || x > limit || (!closed && x == limit) {
		bracket := ")"
		if closed {
			bracket = "]"
		}
		v.Add(field, fmt.Sprintf("must be within [0, %.6g%s radians (got %g)", limit, bracket, x))
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
