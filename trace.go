package hitrace

import (
	"fmt"
	"time"
)

// Marker is the event kind tag on a trace record.
type Marker int

const (
	// StartSync marks the begin of a synchronous section (wire symbol "B").
	StartSync Marker = iota

	// EndSync marks the end of the innermost open synchronous section on
	// the same (pid, cpu) (wire symbol "E").
	EndSync

	// StartAsync marks the start of an asynchronous section ("S").
	StartAsync

	// EndAsync marks the finish of an asynchronous section ("F").
	EndAsync

	// Dot is a point event with no duration ("H", also counter writes "C").
	Dot
)

var markerStrings = map[Marker]string{
	StartSync:  "start_sync",
	EndSync:    "end_sync",
	StartAsync: "start_async",
	EndAsync:   "end_async",
	Dot:        "dot",
}

// String returns a stable lower-case name for the marker.
func (m Marker) String() string {
	if s, ok := markerStrings[m]; ok {
		return s
	}
	return fmt.Sprintf("marker(%d)", int(m))
}

// MarshalText implements [encoding.TextMarshaler].
func (m Marker) MarshalText() ([]byte, error) {
	s, ok := markerStrings[m]
	if !ok {
		return nil, fmt.Errorf("invalid marker %d", int(m))
	}
	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *Marker) UnmarshalText(text []byte) error {
	for marker, s := range markerStrings {
		if s == string(text) {
			*m = marker
			return nil
		}
	}
	return fmt.Errorf("invalid marker %q", string(text))
}

// MarkerFromSymbol maps a one-letter trace_marker symbol to its marker
// kind. Counter writes ("C") are treated as point events.
func MarkerFromSymbol(symbol string) (Marker, bool) {
	switch symbol {
	case "B":
		return StartSync, true
	case "E":
		return EndSync, true
	case "S":
		return StartAsync, true
	case "F":
		return EndAsync, true
	case "H", "C":
		return Dot, true
	default:
		return 0, false
	}
}

//
//
//

// Timestamp is the fixed-point capture time of a trace record, as written
// by the kernel: whole seconds plus a microsecond remainder.
type Timestamp struct {
	Seconds uint64 `json:"seconds"`
	Micros  uint64 `json:"micros"`
}

// Duration returns the timestamp as a duration since the zero timestamp.
func (ts Timestamp) Duration() time.Duration {
	return time.Duration(ts.Seconds)*time.Second + time.Duration(ts.Micros)*time.Microsecond
}

// Sub returns the duration between ts and an earlier timestamp.
func (ts Timestamp) Sub(earlier Timestamp) time.Duration {
	return ts.Duration() - earlier.Duration()
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Seconds != other.Seconds {
		return ts.Seconds < other.Seconds
	}
	return ts.Micros < other.Micros
}

// String returns the timestamp as it appears in a capture, "sec.micros".
func (ts Timestamp) String() string {
	return fmt.Sprintf("%d.%06d", ts.Seconds, ts.Micros)
}

//
//
//

// Trace is a single record from a parsed trace capture. Records are
// immutable once parsed: the matcher reads them but never modifies or
// reorders them, and index order is chronological order.
type Trace struct {
	// Name is the raw task name from the capture line. Passthrough only,
	// not used by span matching.
	Name string `json:"name"`

	// Pid is the process that wrote the record.
	Pid uint64 `json:"pid"`

	// Cpu is the processor the record was captured on.
	Cpu uint64 `json:"cpu"`

	// Timestamp is the capture time of the record.
	Timestamp Timestamp `json:"timestamp"`

	// Marker is the event kind of the record.
	Marker Marker `json:"marker"`

	// Function is the function name carried by the marker payload. End
	// records carry no name and leave it empty.
	Function string `json:"function,omitempty"`

	// Line is the line number of the record in the raw capture.
	// Passthrough only.
	Line int `json:"line,omitempty"`

	// Symbol is the shorthand marker symbol as written, e.g. "B".
	// Passthrough only.
	Symbol string `json:"symbol,omitempty"`
}
