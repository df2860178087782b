package main

import (
	"context"
	"fmt"
	"syscall"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/Narfinger/hitrace-bench/htbench"
	"github.com/Narfinger/hitrace-bench/htstats"
)

type benchConfig struct {
	*rootConfig

	configPath string
	runs       int
}

func (cfg *benchConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'c',
		LongName:    "config",
		Value:       ffval.NewValue(&cfg.configPath),
		NoDefault:   true,
		Usage:       "benchmark config (required)",
		Placeholder: "FILE",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName: 'n',
		LongName:  "runs",
		Value:     ffval.NewValue(&cfg.runs),
		NoDefault: true,
		Usage:     "override the configured number of runs",
	})
}

func (cfg *benchConfig) Exec(ctx context.Context, args []string) error {
	if cfg.configPath == "" {
		return fmt.Errorf("--config is required")
	}
	if len(args) > 0 {
		return fmt.Errorf("bench takes no arguments")
	}

	config, err := htbench.LoadConfig(cfg.configPath)
	if err != nil {
		return err
	}
	if len(config.Command) == 0 {
		return fmt.Errorf("%s: a capture command is required to bench", cfg.configPath)
	}
	if cfg.runs > 0 {
		config.Runs = cfg.runs
	}

	runner := &htbench.Runner{
		Command: config.Command,
		Runs:    config.Runs,
		Filters: config.Filters,
		Retries: config.Retries,
	}

	cfg.info.Printf("command: %v", config.Command)
	cfg.info.Printf("runs: %d", config.Runs)
	cfg.debug.Printf("retries: %d", config.Retries)
	cfg.debug.Printf("filters: %d", len(config.Filters))

	var (
		results *htstats.RunResults
		records []htbench.RunRecord
	)

	var g run.Group

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			var err error
			results, records, err = runner.Run(ctx)
			return err
		}, func(error) {
			cancel()
		})
	}

	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}

	if err := g.Run(); err != nil {
		return err
	}

	for _, record := range records {
		switch {
		case record.Err != "":
			cfg.info.Printf("run %d (%s): %s", record.Run, record.ID, record.Err)
		default:
			cfg.trace.Printf("run %d (%s): %d records in %s over %d attempts",
				record.Run, record.ID, record.Records, record.Elapsed, record.Attempts)
		}
	}

	reports, err := results.Report()
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	return cfg.writeReports(reports)
}
