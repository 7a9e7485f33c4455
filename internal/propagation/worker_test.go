package propagation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/itsmewall/orbital-space-objects/internal/orbit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestWorkerPoolBatch verifies results come back in job order with failures
// reported per job.
func TestWorkerPoolBatch(t *testing.T) {
	pool := NewWorkerPool(4, testLogger())

	var jobs []Job
	for i := 0; i < 20; i++ {
		el := leo(float64(i) * 0.04)
		jobs = append(jobs, Job{
			ID:      fmt.Sprintf("sat-%d", i),
			Request: Request{Elements: el, SampleCount: 50, Duration: el.Period()},
		})
	}
	jobs[7].Request.Elements.Eccentricity = 1.2

	results := pool.PropagateBatch(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}

	for i, r := range results {
		if r.Index != i || r.ID != jobs[i].ID {
			t.Fatalf("result %d is %d/%s, want %d/%s", i, r.Index, r.ID, i, jobs[i].ID)
		}
		if i == 7 {
			if !errors.Is(r.Err, orbit.ErrDegenerateOrbit) {
				t.Errorf("job 7: expected degenerate orbit error, got %v", r.Err)
			}
			if r.Result != nil {
				t.Error("job 7: failed job carries a result")
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("job %d: %v", i, r.Err)
			continue
		}
		if len(r.Result.Samples) != 51 {
			t.Errorf("job %d: %d samples", i, len(r.Result.Samples))
		}
	}
}

// TestWorkerPoolMatchesPropagate checks the pool adds nothing to the result.
func TestWorkerPoolMatchesPropagate(t *testing.T) {
	el := leo(0.2)
	req := Request{Elements: el, SampleCount: 10, Duration: time.Hour, Frame: FrameEarthFixed}

	direct, err := Propagate(req)
	if err != nil {
		t.Fatal(err)
	}
	pooled := NewWorkerPool(2, testLogger()).PropagateBatch(context.Background(), []Job{{Request: req}})
	if pooled[0].Err != nil {
		t.Fatal(pooled[0].Err)
	}
	for i := range direct.Samples {
		if direct.Samples[i] != pooled[0].Result.Samples[i] {
			t.Fatalf("sample %d differs", i)
		}
	}
}

// TestWorkerPoolCancellation verifies the worker pool respects context cancellation.
func TestWorkerPoolCancellation(t *testing.T) {
	pool := NewWorkerPool(2, testLogger())

	el := leo(0.1)
	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = Job{Request: Request{Elements: el, SampleCount: 1000, Duration: el.Period()}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := pool.PropagateBatch(ctx, jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("job %d: err = %v, want context.Canceled", i, r.Err)
		}
	}
}

func TestWorkerPoolEmpty(t *testing.T) {
	if got := NewWorkerPool(0, testLogger()).PropagateBatch(context.Background(), nil); len(got) != 0 {
		t.Errorf("got %d results for no jobs", len(got))
	}
}

func TestWorkerPoolRun(t *testing.T) {
	pool := NewWorkerPool(1, testLogger())
	if pool.Workers() != 1 {
		t.Errorf("Workers() = %d", pool.Workers())
	}
	res, err := pool.Run(Request{Elements: leo(0), SampleCount: 4, Duration: time.Hour})
	if err != nil || len(res.Samples) != 5 {
		t.Fatalf("Run: %v", err)
	}
	if _, err := pool.Run(Request{Elements: leo(0)}); err == nil {
		t.Fatal("Run accepted a request without samples")
	}
}

func TestWorkerPoolFromConfig(t *testing.T) {
	if got := DefaultConfig().Workers; got != runtime.NumCPU() {
		t.Errorf("default workers = %d, want %d", got, runtime.NumCPU())
	}
	if got := NewWorkerPoolFromConfig(Config{Workers: 3}, testLogger()).Workers(); got != 3 {
		t.Errorf("Workers() = %d, want 3", got)
	}
	if got := NewWorkerPoolFromConfig(Config{}, testLogger()).Workers(); got != 1 {
		t.Errorf("zero config Workers() = %d, want 1", got)
	}
}
