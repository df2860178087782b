package htbench_test

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/Narfinger/hitrace-bench/htbench"
)

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	runner := &htbench.Runner{
		Command: []string{"cat", "testdata/run.txt"},
		Runs:    3,
		Filters: []htbench.Filter{
			{Name: "load", Function: "LoadPage", Kind: htbench.KindSpan},
			{Name: "css", Function: "ParseCss", Kind: htbench.KindSpan},
			{Name: "frames", Function: "FirstFrame", Kind: htbench.KindPoint},
		},
	}

	results, records, err := runner.Run(context.Background())
	AssertNoError(t, err)
	AssertEqual(t, 3, len(records))

	seen := map[string]bool{}
	for _, record := range records {
		AssertEqual(t, 1, record.Attempts)
		AssertEqual(t, 6, record.Records)
		AssertEqual(t, "", record.Err)
		if seen[record.ID] {
			t.Fatalf("duplicate run ID %s", record.ID)
		}
		seen[record.ID] = true
	}

	// One LoadPage span and one ParseCss span per run, two point events.
	AssertEqual(t, 3, len(results.Durations["load"]))
	AssertEqual(t, 500*time.Millisecond, results.Durations["load"][0])
	AssertEqual(t, 3, len(results.Durations["css"]))
	AssertEqual(t, 100*time.Millisecond, results.Durations["css"][0])
	AssertEqual(t, 3, len(results.Points["frames"]))
	AssertEqual(t, uint64(2), results.Points["frames"][0])
}

func TestRunnerCommandFails(t *testing.T) {
	t.Parallel()

	runner := &htbench.Runner{
		Command: []string{"false"},
		Runs:    2,
		Filters: []htbench.Filter{
			{Name: "load", Function: "LoadPage", Kind: htbench.KindSpan},
		},
	}

	results, records, err := runner.Run(context.Background())
	AssertNoError(t, err)
	AssertEqual(t, 2, len(records))
	for _, record := range records {
		if record.Err == "" {
			t.Fatal("want run error")
		}
	}
	AssertEqual(t, 2, results.Errors["load"])
	AssertEqual(t, 0, len(results.Durations["load"]))
}

func TestRunnerRetries(t *testing.T) {
	t.Parallel()

	runner := &htbench.Runner{
		Command: []string{"false"},
		Runs:    1,
		Retries: 2,
		Filters: []htbench.Filter{
			{Name: "load", Function: "LoadPage"},
		},
	}

	_, records, err := runner.Run(context.Background())
	AssertNoError(t, err)
	AssertEqual(t, 1, len(records))
	AssertEqual(t, 3, records[0].Attempts)
}

func TestRunnerFakeClock(t *testing.T) {
	t.Parallel()

	// With a fake clock the measured wall time of a capture is exactly
	// zero, since nothing advances it.
	runner := &htbench.Runner{
		Command: []string{"cat", "testdata/run.txt"},
		Filters: []htbench.Filter{{Name: "load", Function: "LoadPage"}},
		Clock:   clockz.NewFakeClock(),
	}

	_, records, err := runner.Run(context.Background())
	AssertNoError(t, err)
	AssertEqual(t, 1, len(records))
	AssertEqual(t, time.Duration(0), records[0].Elapsed)
}

func TestRunnerRetryBackoffUsesClock(t *testing.T) {
	t.Parallel()

	// Backoff sleeps between retries wait on the injected clock, so a run
	// with retries completes once the fake clock is advanced past the
	// backoff intervals, never by real wall time passing.
	clock := clockz.NewFakeClock()
	runner := &htbench.Runner{
		Command: []string{"false"},
		Runs:    1,
		Retries: 2,
		Filters: []htbench.Filter{{Name: "load", Function: "LoadPage"}},
		Clock:   clock,
	}

	type result struct {
		records []htbench.RunRecord
		err     error
	}
	done := make(chan result, 1)
	go func() {
		_, records, err := runner.Run(context.Background())
		done <- result{records, err}
	}()

	// Backoff intervals are 100ms then 200ms; advance in 100ms steps
	// until the run finishes.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case res := <-done:
			AssertNoError(t, res.err)
			AssertEqual(t, 1, len(res.records))
			AssertEqual(t, 3, res.records[0].Attempts)
			return
		case <-timeout:
			t.Fatal("run did not finish: backoff not driven by the injected clock")
		default:
			clock.Advance(100 * time.Millisecond)
			clock.BlockUntilReady()
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestRunnerUnconfigured(t *testing.T) {
	t.Parallel()

	_, _, err := (&htbench.Runner{}).Run(context.Background())
	AssertError(t, err)

	_, _, err = (&htbench.Runner{Command: []string{"cat"}}).Run(context.Background())
	AssertError(t, err)
}

func TestRunnerCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &htbench.Runner{
		Command: []string{"cat", "testdata/run.txt"},
		Filters: []htbench.Filter{{Name: "load", Function: "LoadPage"}},
	}

	_, _, err := runner.Run(ctx)
	AssertError(t, err)
}
