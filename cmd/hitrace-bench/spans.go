package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	hitrace "github.com/Narfinger/hitrace-bench"
	"github.com/Narfinger/hitrace-bench/htparse"
	"github.com/Narfinger/hitrace-bench/internal/htutil"
)

type spansConfig struct {
	*rootConfig

	function string
}

func (cfg *spansConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'f',
		LongName:    "function",
		Value:       ffval.NewValue(&cfg.function),
		NoDefault:   true,
		Usage:       "exact function name to match",
		Placeholder: "FUNC",
	})
}

func (cfg *spansConfig) Exec(ctx context.Context, args []string) error {
	if cfg.function == "" {
		return fmt.Errorf("--function is required")
	}
	if len(args) != 1 {
		return fmt.Errorf("exactly one capture file is required")
	}

	traces, err := htparse.ParseFile(args[0])
	if err != nil {
		return err
	}
	cfg.debug.Printf("%s: %d records", args[0], len(traces))

	spans, err := hitrace.FindAllSpans(cfg.function, traces)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	cfg.info.Printf("%s: %d spans of %q", args[0], len(spans), cfg.function)

	switch cfg.output {
	case "ndjson":
		for _, s := range spans {
			if err := cfg.writeJSON(s); err != nil {
				return err
			}
		}
		return nil

	case "prettyjson":
		return cfg.writeJSON(spans)
	}

	tw := tabwriter.NewWriter(cfg.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "PID\tCPU\tSTART\tEND\tDURATION\n")
	for _, s := range spans {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
			s.Start.Pid,
			s.Start.Cpu,
			s.Start.Timestamp,
			s.End.Timestamp,
			htutil.HumanizeDuration(s.Duration()),
		)
	}
	return tw.Flush()
}
