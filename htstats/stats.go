// Package htstats aggregates span and point measurements across benchmark
// runs into min/avg/max summaries.
package htstats

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Summary is the bounded aggregate of a set of comparable, summable
// values. Count is deliberately small: it counts benchmark runs, not trace
// records.
type Summary[T constraints.Integer] struct {
	Avg   T      `json:"avg"`
	Min   T      `json:"min"`
	Max   T      `json:"max"`
	Count uint16 `json:"count"`
}

// ErrNoValues is returned by Summarize for an empty input.
var ErrNoValues = errors.New("no values to summarize")

// Summarize folds values into a Summary. The input order doesn't matter.
// More than 65535 values is an error, as is an empty input.
func Summarize[T constraints.Integer](values []T) (Summary[T], error) {
	if len(values) == 0 {
		return Summary[T]{}, ErrNoValues
	}
	if len(values) > math.MaxUint16 {
		return Summary[T]{}, fmt.Errorf("too many values: %d > %d", len(values), math.MaxUint16)
	}

	var (
		min = values[0]
		max = values[0]
		sum T
	)
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}

	return Summary[T]{
		Avg:   sum / T(len(values)),
		Min:   min,
		Max:   max,
		Count: uint16(len(values)),
	}, nil
}
