package htstats

import (
	"sort"
	"time"
)

// RunResults accumulates per-filter measurements across benchmark runs.
// Keys are filter names. Vectors may have differing lengths, since
// individual runs can fail and failed runs contribute an error count
// instead of a measurement.
type RunResults struct {
	Durations map[string][]time.Duration `json:"durations"`
	Points    map[string][]uint64        `json:"points"`
	Errors    map[string]int             `json:"errors"`
}

// NewRunResults returns an empty, ready-to-use accumulator.
func NewRunResults() *RunResults {
	return &RunResults{
		Durations: map[string][]time.Duration{},
		Points:    map[string][]uint64{},
		Errors:    map[string]int{},
	}
}

// ObserveDuration records one span duration for the named filter.
func (rr *RunResults) ObserveDuration(name string, d time.Duration) {
	rr.Durations[name] = append(rr.Durations[name], d)
}

// ObservePoint records one point measurement for the named filter.
func (rr *RunResults) ObservePoint(name string, v uint64) {
	rr.Points[name] = append(rr.Points[name], v)
}

// ObserveError records one failed run for the named filter.
func (rr *RunResults) ObserveError(name string) {
	rr.Errors[name]++
}

// Merge folds the other results into rr, preserving the order of the other
// run's observations after rr's own.
func (rr *RunResults) Merge(other *RunResults) {
	if other == nil {
		return
	}
	for name, ds := range other.Durations {
		rr.Durations[name] = append(rr.Durations[name], ds...)
	}
	for name, ps := range other.Points {
		rr.Points[name] = append(rr.Points[name], ps...)
	}
	for name, n := range other.Errors {
		rr.Errors[name] += n
	}
}

// FilterReport is the summarized outcome for one filter across all runs.
type FilterReport struct {
	Name      string                  `json:"name"`
	Durations *Summary[time.Duration] `json:"durations,omitempty"`
	Points    *Summary[uint64]        `json:"points,omitempty"`
	Errors    int                     `json:"errors,omitempty"`
}

// Report summarizes every observed filter, sorted by name. Filters whose
// vectors are empty but which recorded errors still appear, so a fully
// failing filter is visible in the output.
func (rr *RunResults) Report() ([]FilterReport, error) {
	names := map[string]bool{}
	for name := range rr.Durations {
		names[name] = true
	}
	for name := range rr.Points {
		names[name] = true
	}
	for name := range rr.Errors {
		names[name] = true
	}

	reports := make([]FilterReport, 0, len(names))
	for name := range names {
		fr := FilterReport{Name: name, Errors: rr.Errors[name]}

		if ds := rr.Durations[name]; len(ds) > 0 {
			summary, err := Summarize(ds)
			if err != nil {
				return nil, err
			}
			fr.Durations = &summary
		}

		if ps := rr.Points[name]; len(ps) > 0 {
			summary, err := Summarize(ps)
			if err != nil {
				return nil, err
			}
			fr.Points = &summary
		}

		reports = append(reports, fr)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Name < reports[j].Name
	})

	return reports, nil
}
