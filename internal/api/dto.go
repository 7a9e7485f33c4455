package api

import (
	"errors"
	"math"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/passes"
	"github.com/itsmewall/orbital-space-objects/internal/propagation"
	"github.com/itsmewall/orbital-space-objects/internal/tle"
	"github.com/itsmewall/orbital-space-objects/internal/transform"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi

	defaultSampleCount = 1000

	// Fallback span when no period can be derived from the request.
	fallbackDuration = 90 * time.Minute
)

// Request field names reported by the API layer.
const (
	fieldSatellites   = "satellites"
	fieldObserver     = "observer"
	fieldHorizonHours = "horizonHours"
	fieldMinElevation = "minElevation"
	fieldMaxPasses    = "maxPasses"
	fieldStep         = "step"
)

type tleLines struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// propagateRequest is the JSON body of POST /api/v1/orbit/propagate.
// Distances are kilometers and angles degrees, as entered by users.
type propagateRequest struct {
	ID string `json:"id,omitempty"`

	SemiMajorAxis float64 `json:"semiMajorAxis"`
	Eccentricity  float64 `json:"eccentricity"`
	Inclination   float64 `json:"inclination"`
	RAAN          float64 `json:"raan"`
	ArgPeriapsis  float64 `json:"argPeriapsis"`
	MeanAnomaly   float64 `json:"meanAnomaly"`

	LaunchLatitude  *float64 `json:"launchLatitude,omitempty"`
	LaunchLongitude *float64 `json:"launchLongitude,omitempty"`

	Epoch           *time.Time `json:"epoch,omitempty"`
	SampleCount     *int       `json:"sampleCount,omitempty"`
	DurationSeconds *float64   `json:"durationSeconds,omitempty"`

	Frame        string    `json:"frame,omitempty"`
	Propagation  string    `json:"propagation,omitempty"`
	Perturbation string    `json:"perturbation,omitempty"`
	TLE          *tleLines `json:"tle,omitempty"`

	GroundTrack bool `json:"groundTrack,omitempty"`
}

type vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type geoPoint struct {
	Latitude  float64 `json:"latitude"`  // degrees
	Longitude float64 `json:"longitude"` // degrees
	Altitude  float64 `json:"altitude"`  // km
}

type lookAngle struct {
	Azimuth   float64 `json:"azimuth"`   // degrees
	Elevation float64 `json:"elevation"` // degrees
	Range     float64 `json:"range"`     // km
}

type stats struct {
	MaxIterations   int `json:"maxIterations"`
	TotalIterations int `json:"totalIterations"`
}

type propagateResponse struct {
	ID          string      `json:"id,omitempty"`
	Frame       string      `json:"frame"`
	Propagation string      `json:"propagation"`
	Positions   []vector    `json:"positions"`
	Times       []time.Time `json:"times"`
	GroundTrack []geoPoint  `json:"groundTrack,omitempty"`
	LookAngles  []lookAngle `json:"lookAngles,omitempty"`
	Stats       stats       `json:"stats"`
}

type errorResponse struct {
	Error  string             `json:"error"`
	Fields []orbit.FieldError `json:"fields,omitempty"`
}

type batchRequest struct {
	Satellites []propagateRequest `json:"satellites"`
}

type batchItem struct {
	ID     string             `json:"id,omitempty"`
	Result *propagateResponse `json:"result,omitempty"`
	Error  *errorResponse     `json:"error,omitempty"`
}

type batchResponse struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []batchItem `json:"results"`
}

// elementsJSON is an element set on the wire, in km and degrees.
type elementsJSON struct {
	Name          string    `json:"name,omitempty"`
	CatalogNumber int       `json:"catalogNumber,omitempty"`
	SemiMajorAxis float64   `json:"semiMajorAxis"`
	Eccentricity  float64   `json:"eccentricity"`
	Inclination   float64   `json:"inclination"`
	RAAN          float64   `json:"raan"`
	ArgPeriapsis  float64   `json:"argPeriapsis"`
	MeanAnomaly   float64   `json:"meanAnomaly"`
	Epoch         time.Time `json:"epoch"`
}

func elementsToJSON(el orbit.Elements) elementsJSON {
	return elementsJSON{
		SemiMajorAxis: el.SemiMajorAxis / 1000,
		Eccentricity:  el.Eccentricity,
		Inclination:   el.Inclination * rad2deg,
		RAAN:          el.RAAN * rad2deg,
		ArgPeriapsis:  el.ArgPeriapsis * rad2deg,
		MeanAnomaly:   el.MeanAnomaly * rad2deg,
		Epoch:         el.Epoch,
	}
}

// toRequest converts the wire request into a propagation request, filling
// defaults: epoch now, 1000 samples, one orbital period.
func (p propagateRequest) toRequest(now time.Time, maxSamples int) (propagation.Request, error) {
	v := &orbit.ValidationError{}

	frame, err := propagation.ParseFrame(p.Frame)
	if err != nil {
		v.Add(propagation.FieldFrame, err.Error())
	}
	policy, err := propagation.ParsePolicy(p.Propagation)
	if err != nil {
		v.Add(propagation.FieldPolicy, err.Error())
	}
	perturbation, err := propagation.ParsePerturbation(p.Perturbation)
	if err != nil {
		v.Add(propagation.FieldPerturbation, err.Error())
	}

	req := propagation.Request{
		Elements: orbit.Elements{
			SemiMajorAxis: p.SemiMajorAxis * 1000,
			Eccentricity:  p.Eccentricity,
			Inclination:   p.Inclination * deg2rad,
			RAAN:          p.RAAN * deg2rad,
			ArgPeriapsis:  p.ArgPeriapsis * deg2rad,
			MeanAnomaly:   p.MeanAnomaly * deg2rad,
			Epoch:         now,
		},
		SampleCount:  defaultSampleCount,
		Frame:        frame,
		Policy:       policy,
		Perturbation: perturbation,
		MaxSamples:   maxSamples,
	}
	if p.Epoch != nil {
		req.Elements.Epoch = *p.Epoch
	}
	if p.SampleCount != nil {
		req.SampleCount = *p.SampleCount
	}

	switch {
	case p.LaunchLatitude != nil && p.LaunchLongitude != nil:
		req.LaunchSite = &orbit.LaunchSite{Latitude: *p.LaunchLatitude, Longitude: *p.LaunchLongitude}
	case p.LaunchLatitude != nil:
		v.Add(orbit.FieldLaunchLongitude, "required together with launchLatitude")
	case p.LaunchLongitude != nil:
		v.Add(orbit.FieldLaunchLatitude, "required together with launchLongitude")
	}

	var period time.Duration
	if ps := req.Elements.PeriodSeconds(); ps > 0 && ps <= maxDurationSeconds {
		period = req.Elements.Period()
	}
	if policy == propagation.PolicySGP4 && p.TLE != nil {
		req.TLE = &propagation.TLE{Line1: p.TLE.Line1, Line2: p.TLE.Line2}
		// The epoch field sets the start; the TLE carries its own epoch.
		req.Start = time.Time{}
		if p.Epoch != nil {
			req.Start = *p.Epoch
		}
		period = fallbackDuration
		if entry, err := tle.ParseLines("", p.TLE.Line1, p.TLE.Line2); err == nil {
			period = entry.Elements().Period()
		}
	}

	switch {
	case p.DurationSeconds != nil:
		d := *p.DurationSeconds
		if math.IsNaN(d) || d <= 0 || d > maxDurationSeconds {
			v.Add(propagation.FieldDuration, "must be positive and at most 10 years")
		} else {
			req.Duration = time.Duration(d * float64(time.Second))
		}
	case period > 0:
		req.Duration = period
	default:
		req.Duration = fallbackDuration
	}

	err = req.Validate()
	if len(v.Fields) == 0 {
		return req, err
	}
	var verr *orbit.ValidationError
	if errors.As(err, &verr) {
		v.Merge(verr)
	}
	return req, v
}

const maxDurationSeconds = 10 * 365.25 * 86400

// toResponse converts a result back to wire units. Ground track and look
// angles need Earth-fixed positions, which are derived here when the result
// is inertial.
func toResponse(id string, res *propagation.Result, site *orbit.LaunchSite, groundTrack bool) *propagateResponse {
	out := &propagateResponse{
		ID:          id,
		Frame:       res.Frame.String(),
		Propagation: res.Policy.String(),
		Positions:   make([]vector, len(res.Samples)),
		Times:       make([]time.Time, len(res.Samples)),
		Stats:       stats{MaxIterations: res.Stats.MaxIterations, TotalIterations: res.Stats.TotalIterations},
	}
	if groundTrack {
		out.GroundTrack = make([]geoPoint, len(res.Samples))
		if site != nil {
			out.LookAngles = make([]lookAngle, len(res.Samples))
		}
	}

	for i, s := range res.Samples {
		out.Positions[i] = vector{X: s.Position.X, Y: s.Position.Y, Z: s.Position.Z}
		out.Times[i] = s.Time.UTC()
		if !groundTrack {
			continue
		}

		fixed := s.Position
		if res.Frame == propagation.FrameInertial {
			fixed = transform.ToEarthFixed(s.Position, transform.GMST(s.Time))
		}
		g := transform.ECEFToGeodetic(fixed)
		out.GroundTrack[i] = geoPoint{Latitude: g.LatDeg, Longitude: g.LonDeg, Altitude: g.AltM / 1000}
		if site != nil {
			la := transform.LookAnglesFrom(site.Latitude, site.Longitude, fixed)
			out.LookAngles[i] = lookAngle{Azimuth: la.AzimuthDeg, Elevation: la.ElevationDeg, Range: la.RangeM / 1000}
		}
	}
	return out
}

type observerJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// passesRequest is the JSON body of POST /api/v1/orbit/passes.
type passesRequest struct {
	Observer     observerJSON       `json:"observer"`
	Start        *time.Time         `json:"start,omitempty"`
	HorizonHours *float64           `json:"horizonHours,omitempty"`
	MinElevation float64            `json:"minElevation"`
	MaxPasses    *int               `json:"maxPasses,omitempty"`
	Satellites   []propagateRequest `json:"satellites"`
}

type passesResponse struct {
	Observer passes.Observer       `json:"observer"`
	Start    time.Time             `json:"start"`
	End      time.Time             `json:"end"`
	Results  []passes.TargetPasses `json:"results"`
}

const (
	defaultHorizonHours = 24
	maxHorizonHours     = 240
	defaultMaxPasses    = 10
	maxPasses           = 100
)

// toPassesRequest validates the prediction window and observer.
func (p passesRequest) toPassesRequest(now time.Time) (passes.Request, error) {
	v := &orbit.ValidationError{}
	req := passes.Request{
		Start:        now,
		Horizon:      defaultHorizonHours * time.Hour,
		MinElevation: p.MinElevation,
		MaxPasses:    defaultMaxPasses,
	}

	switch lat, lon := p.Observer.Latitude, p.Observer.Longitude; {
	case lat == nil || lon == nil:
		v.Add(fieldObserver, "latitude and longitude are required")
	case math.IsNaN(*lat) || *lat < -90 || *lat > 90:
		v.Add(fieldObserver, "latitude must be within [-90, 90] degrees")
	case math.IsNaN(*lon) || *lon < -180 || *lon > 180:
		v.Add(fieldObserver, "longitude must be within [-180, 180] degrees")
	default:
		req.Observer = passes.Observer{Latitude: *lat, Longitude: *lon}
	}

	if p.Start != nil {
		req.Start = *p.Start
	}
	if p.HorizonHours != nil {
		hrs := *p.HorizonHours
		if math.IsNaN(hrs) || hrs <= 0 || hrs > maxHorizonHours {
			v.Add(fieldHorizonHours, "must be positive and at most 240")
		} else {
			req.Horizon = time.Duration(hrs * float64(time.Hour))
		}
	}
	if math.IsNaN(p.MinElevation) || p.MinElevation < 0 || p.MinElevation >= 90 {
		v.Add(fieldMinElevation, "must be within [0, 90) degrees")
	}
	if p.MaxPasses != nil {
		if *p.MaxPasses < 1 || *p.MaxPasses > maxPasses {
			v.Add(fieldMaxPasses, "must be between 1 and 100")
		} else {
			req.MaxPasses = *p.MaxPasses
		}
	}
	return req, v.Err()
}

// toTracker converts the wire request into a tracker for evaluation at
// arbitrary times.
func (p propagateRequest) toTracker(now time.Time, maxSamples int) (*propagation.Tracker, error) {
	req, err := p.toRequest(now, maxSamples)
	if err != nil {
		return nil, err
	}
	return propagation.NewTracker(req)
}
