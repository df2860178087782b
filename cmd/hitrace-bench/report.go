package main

import (
	"context"
	"fmt"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/Narfinger/hitrace-bench/htbench"
	"github.com/Narfinger/hitrace-bench/htparse"
	"github.com/Narfinger/hitrace-bench/htstats"
)

type reportConfig struct {
	*rootConfig

	configPath string
	function   string
}

func (cfg *reportConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'c',
		LongName:    "config",
		Value:       ffval.NewValue(&cfg.configPath),
		NoDefault:   true,
		Usage:       "benchmark config with the filters to apply",
		Placeholder: "FILE",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'f',
		LongName:    "function",
		Value:       ffval.NewValue(&cfg.function),
		NoDefault:   true,
		Usage:       "single function to report on, instead of a config",
		Placeholder: "FUNC",
	})
}

func (cfg *reportConfig) filters() ([]htbench.Filter, error) {
	switch {
	case cfg.configPath != "" && cfg.function != "":
		return nil, fmt.Errorf("--config and --function are mutually exclusive")

	case cfg.configPath != "":
		config, err := htbench.LoadConfig(cfg.configPath)
		if err != nil {
			return nil, err
		}
		return config.Filters, nil

	case cfg.function != "":
		return []htbench.Filter{{
			Name:     cfg.function,
			Function: cfg.function,
			Kind:     htbench.KindSpan,
		}}, nil

	default:
		return nil, fmt.Errorf("either --config or --function is required")
	}
}

func (cfg *reportConfig) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one capture file is required")
	}

	filters, err := cfg.filters()
	if err != nil {
		return err
	}
	cfg.debug.Printf("filters: %d", len(filters))

	results := htstats.NewRunResults()
	for _, path := range args {
		traces, err := htparse.ParseFile(path)
		if err != nil {
			return err
		}
		cfg.debug.Printf("%s: %d records", path, len(traces))

		for _, f := range filters {
			f.Apply(traces, results)
		}
	}

	reports, err := results.Report()
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	cfg.info.Printf("%d capture files, %d filters", len(args), len(filters))

	return cfg.writeReports(reports)
}
