package propagation

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/kepler"
	"github.com/itsmewall/orbital-space-objects/internal/metrics"
	"github.com/itsmewall/orbital-space-objects/internal/orbit"
)

// Job is one request in a batch. ID is echoed back in the BatchResult.
type Job struct {
	ID      string
	Request Request
}

// BatchResult pairs a Job with its outcome. Exactly one of Result and Err is
// set.
type BatchResult struct {
	Index  int
	ID     string
	Result *Result
	Err    error
}

type indexedJob struct {
	index int
	job   Job
}

// WorkerPool runs propagations on a fixed number of goroutines. The pool
// holds no per-request state.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// DefaultConfig sizes the pool to the CPU count.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU()}
}

// NewWorkerPoolFromConfig creates a worker pool sized by cfg.
func NewWorkerPoolFromConfig(cfg Config, logger *slog.Logger) *WorkerPool {
	return NewWorkerPool(cfg.Workers, logger)
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Run propagates a single request on the calling goroutine, recording
// metrics and logging failures.
func (wp *WorkerPool) Run(req Request) (*Result, error) {
	start := time.Now()
	res, err := Propagate(req)
	duration := time.Since(start)

	outcome := classify(err)
	var samples, iters int
	if res != nil {
		samples, iters = len(res.Samples), res.Stats.MaxIterations
	}
	metrics.RecordPropagation(req.Policy.String(), req.Frame.String(), outcome, duration, samples, iters)

	switch outcome {
	case metrics.ResultOK:
		wp.logger.Debug("propagation complete",
			"policy", req.Policy.String(),
			"frame", req.Frame.String(),
			"samples", samples,
			"max_iterations", iters,
			"duration_ms", duration.Milliseconds(),
		)
	case metrics.ResultInvalid:
		wp.logger.Debug("propagation rejected", "error", err)
	default:
		wp.logger.Warn("propagation failed",
			"policy", req.Policy.String(),
			"result", outcome,
			"error", err,
		)
	}
	return res, err
}

func classify(err error) string {
	var verr *orbit.ValidationError
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.As(err, &verr):
		return metrics.ResultInvalid
	case errors.Is(err, kepler.ErrNumericDivergence):
		return metrics.ResultDivergence
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	}
	return metrics.ResultError
}

// PropagateBatch runs every job on the pool and returns one BatchResult per
// job, in job order. Jobs not started before ctx is done get ctx.Err().
func (wp *WorkerPool) PropagateBatch(ctx context.Context, jobs []Job) []BatchResult {
	out := make([]BatchResult, len(jobs))
	if len(jobs) == 0 {
		return out
	}
	for i, j := range jobs {
		out[i] = BatchResult{Index: i, ID: j.ID}
	}

	queue := make(chan indexedJob, wp.workers*2)
	results := make(chan BatchResult, wp.workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ij := range queue {
				if ctx.Err() != nil {
					results <- BatchResult{Index: ij.index, ID: ij.job.ID, Err: ctx.Err()}
					continue
				}
				metrics.WorkerStarted()
				res, err := wp.Run(ij.job.Request)
				metrics.WorkerDone()
				results <- BatchResult{Index: ij.index, ID: ij.job.ID, Result: res, Err: err}
			}
		}()
	}

	// Feed jobs in a goroutine.
	fed := make(chan int, 1)
	go func() {
		defer close(queue)
		n := 0
		defer func() { fed <- n }()
		for i, j := range jobs {
			select {
			case queue <- indexedJob{index: i, job: j}:
				n++
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	done := make([]bool, len(jobs))
	var succeeded, failed int
	for r := range results {
		out[r.Index] = r
		done[r.Index] = true
		if r.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}

	skipped := len(jobs) - <-fed
	for i := range out {
		if !done[i] {
			out[i].Err = ctx.Err()
		}
	}

	wp.logger.Debug("batch complete",
		"jobs", len(jobs),
		"succeeded", succeeded,
		"failed", failed,
		"skipped", skipped,
	)
	return out
}
