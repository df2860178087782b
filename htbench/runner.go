package htbench

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/jpillora/backoff"
	"github.com/oklog/ulid/v2"
	"github.com/zoobzio/clockz"

	hitrace "github.com/Narfinger/hitrace-bench"
	"github.com/Narfinger/hitrace-bench/htparse"
	"github.com/Narfinger/hitrace-bench/htstats"
)

var runIDEntropy = ulid.DefaultEntropy()

// Runner executes the capture command once per run and folds every run's
// capture through the configured filters.
type Runner struct {
	// Command produces a capture on stdout. Required.
	Command []string

	// Runs is the number of executions. Zero means 1.
	Runs int

	// Filters are applied to every parsed capture. Required.
	Filters []Filter

	// Retries is how often a failed capture is retried per run, with
	// exponential backoff between attempts.
	Retries int

	// Clock drives run timing and backoff sleeps. Nil means real time.
	Clock clockz.Clock
}

// RunRecord describes one completed (or abandoned) run.
type RunRecord struct {
	// ID is a unique identifier for the run.
	ID string `json:"id"`

	// Run is the 1-based run number.
	Run int `json:"run"`

	// Attempts is how many capture executions the run took.
	Attempts int `json:"attempts"`

	// Elapsed is the wall time of the last capture attempt.
	Elapsed time.Duration `json:"elapsed"`

	// Records is the number of marker records parsed from the capture.
	Records int `json:"records"`

	// Err is set when the run was abandoned after exhausting retries.
	Err string `json:"err,omitempty"`
}

// Run executes all configured runs. It returns the accumulated results and
// one record per run. Runs that fail even after retries are reported in
// their record and as an error count per filter; Run itself only fails on
// invalid configuration or context cancelation.
func (r *Runner) Run(ctx context.Context) (*htstats.RunResults, []RunRecord, error) {
	if len(r.Command) == 0 {
		return nil, nil, fmt.Errorf("no capture command configured")
	}
	if len(r.Filters) == 0 {
		return nil, nil, fmt.Errorf("no filters configured")
	}

	runs := r.Runs
	if runs <= 0 {
		runs = 1
	}

	clock := r.Clock
	if clock == nil {
		clock = clockz.RealClock
	}

	results := htstats.NewRunResults()
	records := make([]RunRecord, 0, runs)

	for run := 1; run <= runs; run++ {
		record := RunRecord{
			ID:  ulid.MustNew(ulid.Timestamp(clock.Now()), runIDEntropy).String(),
			Run: run,
		}

		traces, err := r.capture(ctx, clock, &record)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, nil, ctx.Err()
		case err != nil:
			record.Err = err.Error()
			for _, f := range r.Filters {
				results.ObserveError(f.Name)
			}
		default:
			record.Records = len(traces)
			for _, f := range r.Filters {
				f.Apply(traces, results)
			}
		}

		records = append(records, record)
	}

	return results, records, nil
}

// capture executes the command until it produces a parseable capture, or
// the retry budget is exhausted.
func (r *Runner) capture(ctx context.Context, clock clockz.Clock, record *RunRecord) ([]hitrace.Trace, error) {
	wait := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
	}

	var lastErr error
	for attempt := 0; attempt <= r.Retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, clock, wait.Duration()); err != nil {
				return nil, err
			}
		}

		record.Attempts++

		began := clock.Now()
		out, err := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...).Output()
		record.Elapsed = clock.Now().Sub(began)
		if err != nil {
			lastErr = fmt.Errorf("capture command: %w", err)
			continue
		}

		traces, err := htparse.Parse(bytes.NewReader(out))
		if err != nil {
			lastErr = err
			continue
		}

		return traces, nil
	}

	return nil, fmt.Errorf("run %d failed after %d attempts: %w", record.Run, record.Attempts, lastErr)
}

func sleep(ctx context.Context, clock clockz.Clock, d time.Duration) error {
	select {
	case <-clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
