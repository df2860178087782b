package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/Narfinger/hitrace-bench/htstats"
	"github.com/Narfinger/hitrace-bench/internal/htutil"
)

type rootConfig struct {
	stdout io.Writer
	stderr io.Writer

	logLevel string
	output   string

	info, debug, trace *log.Logger
}

func (cfg *rootConfig) registerBaseFlags(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'l',
		LongName:    "log-level",
		Value:       ffval.NewEnum(&cfg.logLevel, "info", "i", "debug", "d", "trace", "t", "none", "n"),
		Usage:       "log level: i/info, d/debug, t/trace, n/none",
		Placeholder: "LEVEL",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'o',
		LongName:    "output",
		Value:       ffval.NewEnum(&cfg.output, "text", "ndjson", "prettyjson"),
		Usage:       "output format: text, ndjson, prettyjson",
		Placeholder: "FORMAT",
	})
}

func (cfg *rootConfig) setup() error {
	var infodst, debugdst, tracedst io.Writer
	switch cfg.logLevel {
	case "n", "none":
		infodst, debugdst, tracedst = io.Discard, io.Discard, io.Discard
	case "i", "info":
		infodst, debugdst, tracedst = cfg.stderr, io.Discard, io.Discard
	case "d", "debug":
		infodst, debugdst, tracedst = cfg.stderr, cfg.stderr, io.Discard
	case "t", "trace":
		infodst, debugdst, tracedst = cfg.stderr, cfg.stderr, cfg.stderr
	default:
		return fmt.Errorf("invalid log level %q", cfg.logLevel)
	}
	cfg.info = log.New(infodst, "", 0)
	cfg.debug = log.New(debugdst, "[DEBUG] ", log.Lmsgprefix)
	cfg.trace = log.New(tracedst, "[TRACE] ", log.Lmsgprefix)
	return nil
}

func (cfg *rootConfig) writeJSON(v any) error {
	enc := json.NewEncoder(cfg.stdout)
	if cfg.output == "prettyjson" {
		enc.SetIndent("", "    ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return nil
}

func (cfg *rootConfig) writeReports(reports []htstats.FilterReport) error {
	switch cfg.output {
	case "ndjson":
		for _, report := range reports {
			if err := cfg.writeJSON(report); err != nil {
				return err
			}
		}
		return nil

	case "prettyjson":
		return cfg.writeJSON(reports)

	default:
		tw := tabwriter.NewWriter(cfg.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "NAME\tCOUNT\tMIN\tAVG\tMAX\tERRORS\n")
		for _, report := range reports {
			switch {
			case report.Durations != nil:
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\n",
					report.Name,
					report.Durations.Count,
					htutil.HumanizeDuration(report.Durations.Min),
					htutil.HumanizeDuration(report.Durations.Avg),
					htutil.HumanizeDuration(report.Durations.Max),
					report.Errors,
				)
			case report.Points != nil:
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n",
					report.Name,
					report.Points.Count,
					report.Points.Min,
					report.Points.Avg,
					report.Points.Max,
					report.Errors,
				)
			default:
				fmt.Fprintf(tw, "%s\t0\t-\t-\t-\t%d\n", report.Name, report.Errors)
			}
		}
		return tw.Flush()
	}
}
