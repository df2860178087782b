// Package htparse parses the text form of trace captures, as produced by
// hitrace or by reading the ftrace buffer, into hitrace.Trace records.
package htparse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	hitrace "github.com/Narfinger/hitrace-bench"
)

// A capture line looks like
//
//	task-1234  ( 1234) [002] ....  345.678901: tracing_mark_write: B|1234|FunctionName
//
// where the tgid column and the irq flags column are optional depending on
// the kernel configuration.
var lineRegexp = regexp.MustCompile(`^\s*(.*?)-(\d+)\s+(?:\(\s*[0-9-]+\)\s+)?\[(\d+)\]\s+(?:\S+\s+)?(\d+)\.(\d+):\s+tracing_mark_write:\s*(.+?)\s*$`)

// LineError reports a capture line that carries a trace marker write which
// could not be parsed. Lines that are not marker writes at all are skipped
// silently, not reported.
type LineError struct {
	Line int
	Text string
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

// Unwrap returns the underlying cause.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse reads a capture and returns its marker records in the order they
// appear. Comment lines and lines that are not tracing_mark_write records
// are skipped. A marker write that cannot be parsed aborts with a
// [*LineError].
func Parse(r io.Reader) ([]hitrace.Trace, error) {
	var traces []hitrace.Trace

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var line int
	for scanner.Scan() {
		line++
		text := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(text), "#") {
			continue
		}

		groups := lineRegexp.FindStringSubmatch(text)
		if groups == nil {
			continue
		}

		tr, ok, err := parseLine(groups, line)
		if err != nil {
			return nil, &LineError{Line: line, Text: text, Err: err}
		}
		if !ok {
			continue
		}

		traces = append(traces, tr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}

	return traces, nil
}

// ParseFile opens and parses the capture at path.
func ParseFile(path string) ([]hitrace.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	traces, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return traces, nil
}

// parseLine converts one matched capture line into a record. The ok return
// is false for marker symbols this package doesn't know, which are skipped
// for forward compatibility.
func parseLine(groups []string, line int) (hitrace.Trace, bool, error) {
	var (
		name       = groups[1]
		pidField   = groups[2]
		cpuField   = groups[3]
		secField   = groups[4]
		microField = groups[5]
		payload    = groups[6]
	)

	pid, err := strconv.ParseUint(pidField, 10, 64)
	if err != nil {
		return hitrace.Trace{}, false, fmt.Errorf("pid: %w", err)
	}

	cpu, err := strconv.ParseUint(cpuField, 10, 64)
	if err != nil {
		return hitrace.Trace{}, false, fmt.Errorf("cpu: %w", err)
	}

	seconds, err := strconv.ParseUint(secField, 10, 64)
	if err != nil {
		return hitrace.Trace{}, false, fmt.Errorf("seconds: %w", err)
	}

	// The fractional column is microseconds, written with six digits.
	// Scale anything else, e.g. nanosecond-resolution clocks.
	micros, err := strconv.ParseUint(microField, 10, 64)
	if err != nil {
		return hitrace.Trace{}, false, fmt.Errorf("micros: %w", err)
	}
	for i := len(microField); i < 6; i++ {
		micros *= 10
	}
	for i := len(microField); i > 6; i-- {
		micros /= 10
	}

	fields := strings.Split(payload, "|")
	symbol := fields[0]

	marker, known := hitrace.MarkerFromSymbol(symbol)
	if !known {
		return hitrace.Trace{}, false, nil
	}

	var function string
	switch marker {
	case hitrace.EndSync:
		// "E" or "E|tgid", no name either way.
	default:
		if len(fields) < 3 || fields[2] == "" {
			return hitrace.Trace{}, false, fmt.Errorf("marker %q: missing function name", symbol)
		}
		function = fields[2]
	}

	return hitrace.Trace{
		Name:      name,
		Pid:       pid,
		Cpu:       cpu,
		Timestamp: hitrace.Timestamp{Seconds: seconds, Micros: micros},
		Marker:    marker,
		Function:  function,
		Line:      line,
		Symbol:    symbol,
	}, true, nil
}
