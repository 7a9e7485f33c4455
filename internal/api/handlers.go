package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/httputil"
	"github.com/itsmewall/orbital-space-objects/internal/kepler"
	"github.com/itsmewall/orbital-space-objects/internal/metrics"
	"github.com/itsmewall/orbital-space-objects/internal/orbit"
	"github.com/itsmewall/orbital-space-objects/internal/passes"
	"github.com/itsmewall/orbital-space-objects/internal/propagation"
	"github.com/itsmewall/orbital-space-objects/internal/stream"
	"github.com/itsmewall/orbital-space-objects/internal/tle"
)

type handlers struct {
	cfg      Config
	pool     *propagation.WorkerPool
	logger   *slog.Logger
	now      func() time.Time
	inflight *httputil.ConcurrencyLimiter
	streams  *stream.Handler
}

// failure maps a propagation error to a status code and body.
func failure(err error) (int, *errorResponse) {
	var verr *orbit.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, &errorResponse{Error: "invalid request", Fields: verr.Fields}
	case errors.Is(err, kepler.ErrNumericDivergence):
		return http.StatusUnprocessableEntity, &errorResponse{Error: "numeric divergence: " + err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, &errorResponse{Error: "request canceled"}
	}
	return http.StatusUnprocessableEntity, &errorResponse{Error: err.Error()}
}

func writeFailure(w http.ResponseWriter, err error) {
	status, body := failure(err)
	httputil.WriteJSON(w, status, body)
}

// propagate handles POST /api/v1/orbit/propagate.
func (h *handlers) propagate(w http.ResponseWriter, r *http.Request) {
	var body propagateRequest
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := body.toRequest(h.now().UTC(), h.cfg.MaxSamples)
	if err != nil {
		writeFailure(w, err)
		return
	}

	res, err := h.pool.Run(req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(body.ID, res, req.LaunchSite, body.GroundTrack))
}

// batch handles POST /api/v1/orbit/batch. Each satellite succeeds or fails
// on its own; the response is 200 whenever the batch itself was accepted.
func (h *handlers) batch(w http.ResponseWriter, r *http.Request) {
	ip := httputil.ClientIP(r, h.cfg.TrustProxy)
	if !h.inflight.Acquire(ip) {
		httputil.WriteError(w, http.StatusTooManyRequests, "too many concurrent batch requests")
		return
	}
	defer h.inflight.Release(ip)

	var body batchRequest
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch n := len(body.Satellites); {
	case n == 0:
		writeFailure(w, fieldError(fieldSatellites, "must contain at least one satellite"))
		return
	case n > h.cfg.MaxBatch:
		writeFailure(w, fieldError(fieldSatellites, fmt.Sprintf("must contain at most %d satellites (got %d)", h.cfg.MaxBatch, n)))
		return
	}

	now := h.now().UTC()
	items := make([]batchItem, len(body.Satellites))
	reqs := make([]propagation.Request, len(body.Satellites))
	var jobs []propagation.Job
	var jobIndex []int

	for i, sat := range body.Satellites {
		items[i].ID = sat.ID
		req, err := sat.toRequest(now, h.cfg.MaxSamples)
		if err != nil {
			_, items[i].Error = failure(err)
			continue
		}
		reqs[i] = req
		jobs = append(jobs, propagation.Job{ID: sat.ID, Request: req})
		jobIndex = append(jobIndex, i)
	}

	for j, res := range h.pool.PropagateBatch(r.Context(), jobs) {
		i := jobIndex[j]
		if res.Err != nil {
			_, items[i].Error = failure(res.Err)
			continue
		}
		sat := body.Satellites[i]
		items[i].Result = toResponse(sat.ID, res.Result, reqs[i].LaunchSite, sat.GroundTrack)
	}

	out := batchResponse{Results: items}
	for _, it := range items {
		if it.Error != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	h.logger.Info("batch propagated",
		"component", "api",
		"satellites", len(items),
		"succeeded", out.Succeeded,
		"failed", out.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, out)
}

func fieldError(field, reason string) error {
	v := &orbit.ValidationError{}
	v.Add(field, reason)
	return v
}

type parametersResponse struct {
	Elements      elementsJSON        `json:"elements"`
	Parameters    orbit.Parameters    `json:"parameters"`
	EnergyProfile []orbit.EnergyPoint `json:"energyProfile"`
}

// Energy profile resolution: one point every 5 degrees of true anomaly.
const energyProfilePoints = 72

// parameters handles POST /api/v1/orbit/parameters. It accepts the same
// body as propagate; only the element fields (or the TLE) are used.
func (h *handlers) parameters(w http.ResponseWriter, r *http.Request) {
	var body propagateRequest
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var el orbit.Elements
	if body.TLE != nil {
		entry, err := tle.ParseLines("", body.TLE.Line1, body.TLE.Line2)
		if err != nil {
			writeFailure(w, fieldError(propagation.FieldTLE, err.Error()))
			return
		}
		el = entry.Elements()
	} else {
		el = orbit.Elements{
			SemiMajorAxis: body.SemiMajorAxis * 1000,
			Eccentricity:  body.Eccentricity,
			Inclination:   body.Inclination * deg2rad,
			RAAN:          body.RAAN * deg2rad,
			ArgPeriapsis:  body.ArgPeriapsis * deg2rad,
			MeanAnomaly:   body.MeanAnomaly * deg2rad,
		}
		if body.Epoch != nil {
			el.Epoch = *body.Epoch
		}
		if err := orbit.Validate(el, nil); err != nil {
			writeFailure(w, err)
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, parametersResponse{
		Elements:      elementsToJSON(el),
		Parameters:    orbit.ComputeParameters(el),
		EnergyProfile: orbit.EnergyProfile(el, energyProfilePoints),
	})
}

// elements handles POST /api/v1/orbit/elements: a text body of 2- or 3-line
// element sets is converted to Keplerian elements.
func (h *handlers) elements(w http.ResponseWriter, r *http.Request) {
	entries, err := tle.Parse(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes), h.logger)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(entries) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "no valid element sets in request body")
		return
	}

	out := make([]elementsJSON, len(entries))
	for i, e := range entries {
		out[i] = elementsToJSON(e.Elements())
		out[i].Name = e.Name
		out[i].CatalogNumber = e.CatalogNumber
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"elements": out})
}

// passes handles POST /api/v1/orbit/passes: rise, culmination and set of
// each satellite over an observer within the prediction window.
func (h *handlers) passes(w http.ResponseWriter, r *http.Request) {
	ip := httputil.ClientIP(r, h.cfg.TrustProxy)
	if !h.inflight.Acquire(ip) {
		httputil.WriteError(w, http.StatusTooManyRequests, "too many concurrent long-running requests")
		return
	}
	defer h.inflight.Release(ip)

	var body passesRequest
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.now().UTC()
	preq, err := body.toPassesRequest(now)
	if err != nil {
		writeFailure(w, err)
		return
	}
	switch n := len(body.Satellites); {
	case n == 0:
		writeFailure(w, fieldError(fieldSatellites, "must contain at least one satellite"))
		return
	case n > h.cfg.MaxBatch:
		writeFailure(w, fieldError(fieldSatellites, fmt.Sprintf("must contain at most %d satellites (got %d)", h.cfg.MaxBatch, n)))
		return
	}

	results := make([]passes.TargetPasses, len(body.Satellites))
	var targets []passes.Target
	var targetIndex []int
	for i, sat := range body.Satellites {
		results[i].ID = sat.ID
		tr, err := sat.toTracker(now, h.cfg.MaxSamples)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		targets = append(targets, passes.Target{ID: sat.ID, Source: tr})
		targetIndex = append(targetIndex, i)
	}

	for j, res := range passes.Predict(r.Context(), targets, preq) {
		results[targetIndex[j]] = res
	}
	for _, res := range results {
		if res.Error != "" {
			metrics.RecordPassPrediction(metrics.ResultError)
		} else {
			metrics.RecordPassPrediction(metrics.ResultOK)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, passesResponse{
		Observer: preq.Observer,
		Start:    preq.Start,
		End:      preq.Start.Add(preq.Horizon),
		Results:  results,
	})
}

const (
	defaultStreamStep = 5 * time.Second
	minStreamStep     = time.Second
	maxStreamStep     = time.Minute
)

// stream handles POST /api/v1/orbit/stream?step=5: the live position of one
// orbit as Server-Sent Events, every step seconds.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	step := defaultStreamStep
	if v := r.URL.Query().Get("step"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		d := time.Duration(secs * float64(time.Second))
		if err != nil || math.IsNaN(secs) || d < minStreamStep || d > maxStreamStep {
			writeFailure(w, fieldError(fieldStep, "must be between 1 and 60 seconds"))
			return
		}
		step = d
	}

	var body propagateRequest
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	tr, err := body.toTracker(h.now().UTC(), h.cfg.MaxSamples)
	if err != nil {
		writeFailure(w, err)
		return
	}

	h.streams.Serve(w, r, stream.Stream{
		ID:     body.ID,
		Frame:  tr.Frame(),
		Policy: tr.Policy(),
		Step:   step,
		Source: tr,
	})
}
