package hitrace

import (
	"fmt"
	"time"
)

// Span pairs the trace record that began an invocation of a function with
// the record that ended it. Both fields point into the trace slice the span
// was matched against; a span must not outlive that slice, and holds no
// copy of its data.
type Span struct {
	Start *Trace `json:"start"`
	End   *Trace `json:"end"`
}

// Duration returns the elapsed time between the start and end records.
func (s Span) Duration() time.Duration {
	return s.End.Timestamp.Sub(s.Start.Timestamp)
}

// UnterminatedError is returned by FindAllSpans when a begin record for the
// requested function has no matching end record in the capture. It means
// the capture itself is malformed or truncated, never that matching should
// be retried.
type UnterminatedError struct {
	Function string
	Position int
	Start    Timestamp
}

// Error implements the error interface.
func (e *UnterminatedError) Error() string {
	return fmt.Sprintf("unterminated span: %q begins at record %d (%s) and never ends", e.Function, e.Position, e.Start)
}

// depthDelta returns the effect of a record on the nesting depth opened by
// start. Records from a different (pid, cpu) are invisible, and async
// markers and point events don't participate in synchronous nesting.
func depthDelta(t, start *Trace) int {
	if t.Pid != start.Pid || t.Cpu != start.Cpu {
		return 0
	}
	switch t.Marker {
	case StartSync:
		return +1
	case EndSync:
		return -1
	default:
		return 0
	}
}

// FindEnd scans forward from the record at start, maintaining a nesting
// counter that begins at 1, and returns the index of the first record at
// which the counter returns to zero. Only records with the same (pid, cpu)
// as the start record adjust the counter. The second return value is false
// when the scan exhausts the capture without closing, i.e. the span is
// unterminated.
//
// FindEnd is a pure function of its inputs. It panics if start is out of
// range, which is a caller bug rather than a data condition.
func FindEnd(start int, traces []Trace) (int, bool) {
	st := &traces[start]
	depth := 1
	for i := start + 1; i < len(traces); i++ {
		depth += depthDelta(&traces[i], st)
		if depth == 0 {
			return i, true
		}
	}
	return 0, false
}

// FindAllSpans returns one span for every record whose Function field
// equals function exactly. Matching is case sensitive. Spans are returned
// in the order their begin records appear in the capture, which is
// chronological order of invocation starts.
//
// A function that never appears yields an empty result and a nil error. A
// begin record with no matching end yields a nil result and an
// [*UnterminatedError]; no partial result is returned, and the caller
// decides whether to abort or to skip the function.
func FindAllSpans(function string, traces []Trace) ([]Span, error) {
	var spans []Span
	for i := range traces {
		if traces[i].Function != function {
			continue
		}
		end, ok := FindEnd(i, traces)
		if !ok {
			return nil, &UnterminatedError{
				Function: function,
				Position: i,
				Start:    traces[i].Timestamp,
			}
		}
		spans = append(spans, Span{Start: &traces[i], End: &traces[end]})
	}
	return spans, nil
}
