// hitrace-bench matches spans in trace captures and benchmarks function
// durations across runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	var (
		ctx    = context.Background()
		stdout = os.Stdout
		stderr = os.Stderr
		args   = os.Args[1:]
	)
	err := exec(ctx, stdout, stderr, args)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, stdout, stderr io.Writer, args []string) (err error) {
	rootConfig := &rootConfig{
		stdout: stdout,
		stderr: stderr,
	}

	rootFlags := ff.NewFlagSet("base")
	rootConfig.registerBaseFlags(rootFlags)

	rootCommand := &ff.Command{
		Name:      "hitrace-bench",
		ShortHelp: "match spans in trace captures and benchmark function durations",
		Flags:     rootFlags,
	}

	// Config for `hitrace-bench spans`.
	spansConfig := &spansConfig{rootConfig: rootConfig}
	spansFlags := ff.NewFlagSet("spans").SetParent(rootFlags)
	spansConfig.register(spansFlags)
	spansCommand := &ff.Command{
		Name:      "spans",
		Usage:     "spans [FLAGS] FILE",
		ShortHelp: "list every span of a function in a capture",
		LongHelp:  "Parse the capture file and print every matched span of the given function.",
		Flags:     spansFlags,
		Exec:      spansConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, spansCommand)

	// Config for `hitrace-bench report`.
	reportConfig := &reportConfig{rootConfig: rootConfig}
	reportFlags := ff.NewFlagSet("report").SetParent(rootFlags)
	reportConfig.register(reportFlags)
	reportCommand := &ff.Command{
		Name:      "report",
		Usage:     "report [FLAGS] FILE [FILE ...]",
		ShortHelp: "summarize filters over one or more capture files",
		LongHelp:  "Apply the configured filters to every capture file and print per-filter min/avg/max.",
		Flags:     reportFlags,
		Exec:      reportConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, reportCommand)

	// Config for `hitrace-bench bench`.
	benchConfig := &benchConfig{rootConfig: rootConfig}
	benchFlags := ff.NewFlagSet("bench").SetParent(rootFlags)
	benchConfig.register(benchFlags)
	benchCommand := &ff.Command{
		Name:      "bench",
		Usage:     "bench [FLAGS]",
		ShortHelp: "run the capture command repeatedly and summarize",
		LongHelp:  "Execute the configured capture command once per run, apply every filter, and print the aggregated report.",
		Flags:     benchFlags,
		Exec:      benchConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, benchCommand)

	// Print help when appropriate.
	showHelp := true
	defer func() {
		errHelp := errors.Is(err, ff.ErrHelp) || errors.Is(err, ff.ErrNoExec)
		if showHelp || errHelp {
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(rootCommand))
		}
		if errHelp {
			err = nil
		}
	}()

	// Initial parsing.
	if err := rootCommand.Parse(args, ff.WithEnvVarPrefix("HITRACE_BENCH")); err != nil {
		return err
	}

	// Validation and set-up.
	if err := rootConfig.setup(); err != nil {
		return err
	}

	// Run errors shouldn't show help by default.
	showHelp = false

	// Run the selected command.
	return rootCommand.Run(ctx)
}
