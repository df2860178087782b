package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSpansOutputNDJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := exec(context.Background(), &stdout, &stderr, []string{
		"spans", "--function", "LoadPage", "-o", "ndjson", "-l", "none", "testdata/capture.txt",
	})
	if err != nil {
		t.Fatalf("error %v", err)
	}

	// One JSON object per line, one line per span.
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if want, have := 2, len(lines); want != have {
		t.Fatalf("lines: want %d, have %d\n%s", want, have, stdout.String())
	}
	for i, line := range lines {
		var span struct {
			Start *struct {
				Function string `json:"function"`
			} `json:"start"`
			End *json.RawMessage `json:"end"`
		}
		if err := json.Unmarshal([]byte(line), &span); err != nil {
			t.Fatalf("line %d: %v: %q", i+1, err, line)
		}
		if span.Start == nil || span.End == nil {
			t.Fatalf("line %d: incomplete span: %q", i+1, line)
		}
		if want, have := "LoadPage", span.Start.Function; want != have {
			t.Errorf("line %d: want %q, have %q", i+1, want, have)
		}
	}
}

func TestBenchTraceLogLevel(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bench.yaml")
	config := `runs: 2
command: [cat, testdata/capture.txt]
filters:
  - name: load
    function: LoadPage
`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("error %v", err)
	}

	var stdout, stderr bytes.Buffer
	err := exec(context.Background(), &stdout, &stderr, []string{
		"bench", "--config", configPath, "--log-level", "trace", "-o", "ndjson",
	})
	if err != nil {
		t.Fatalf("error %v", err)
	}

	if !strings.Contains(stderr.String(), "[TRACE] run 1") {
		t.Errorf("want per-run trace detail on stderr, have:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "[TRACE] run 2") {
		t.Errorf("want per-run trace detail on stderr, have:\n%s", stderr.String())
	}

	// One report line for the single filter: 2 runs x 2 spans.
	var report struct {
		Name      string `json:"name"`
		Durations *struct {
			Count uint16 `json:"count"`
		} `json:"durations"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout.String())), &report); err != nil {
		t.Fatalf("error %v: %q", err, stdout.String())
	}
	if want, have := "load", report.Name; want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if report.Durations == nil || report.Durations.Count != 4 {
		t.Errorf("want 4 span durations, have %+v", report.Durations)
	}
}
