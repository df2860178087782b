// Package htbench orchestrates benchmark runs: it executes a capture
// command a configured number of times, parses each capture, applies
// duration and point filters, and accumulates the results for
// summarization.
package htbench

import (
	"fmt"

	hitrace "github.com/Narfinger/hitrace-bench"
	"github.com/Narfinger/hitrace-bench/htstats"
)

// FilterKind selects what a filter measures.
type FilterKind string

const (
	// KindSpan measures the duration of every matched span of the
	// function.
	KindSpan FilterKind = "span"

	// KindPoint counts the point events recorded for the function.
	KindPoint FilterKind = "point"
)

// Filter names one measurement taken from every run.
type Filter struct {
	// Name keys the filter's results. Unique within a config.
	Name string `yaml:"name"`

	// Function is the exact function name to match in the capture.
	Function string `yaml:"function"`

	// Kind defaults to KindSpan when empty.
	Kind FilterKind `yaml:"kind"`
}

// Validate normalizes the filter and reports configuration mistakes.
func (f *Filter) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("filter: name is required")
	}
	if f.Function == "" {
		return fmt.Errorf("filter %q: function is required", f.Name)
	}
	switch f.Kind {
	case "":
		f.Kind = KindSpan
	case KindSpan, KindPoint:
		//
	default:
		return fmt.Errorf("filter %q: invalid kind %q", f.Name, f.Kind)
	}
	return nil
}

// Apply evaluates the filter against one parsed run and records the
// outcome. An unterminated span records an error for the filter rather
// than failing the whole run, so a truncated capture at the trace buffer
// boundary costs one measurement, not the benchmark.
func (f Filter) Apply(traces []hitrace.Trace, results *htstats.RunResults) {
	switch f.Kind {
	case KindPoint:
		var n uint64
		for i := range traces {
			if traces[i].Marker == hitrace.Dot && traces[i].Function == f.Function {
				n++
			}
		}
		results.ObservePoint(f.Name, n)

	default:
		spans, err := hitrace.FindAllSpans(f.Function, traces)
		if err != nil {
			results.ObserveError(f.Name)
			return
		}
		for _, s := range spans {
			results.ObserveDuration(f.Name, s.Duration())
		}
	}
}
