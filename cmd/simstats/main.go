// Command simstats aggregates simulation run times across the run_*
// directories of a workspace, and can run submit/collect scripts in each of them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/patrickspencer/simstats/internal/collect"
	"github.com/patrickspencer/simstats/internal/config"
	"github.com/patrickspencer/simstats/internal/logparse"
	"github.com/patrickspencer/simstats/internal/measure"
	"github.com/patrickspencer/simstats/internal/report"
	"github.com/patrickspencer/simstats/internal/runner"
	"github.com/patrickspencer/simstats/internal/scripts"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg := config.Default()
	if opts.configPath != "" {
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "error loading config: %v\n", err)
			return exitFailure
		}
	}

	if err := dispatch(context.Background(), opts, cfg, stdout); err != nil {
		log.Printf("ERROR: %v", err)
		if isUsageError(err) {
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

func dispatch(ctx context.Context, opts *options, cfg *config.Config, stdout io.Writer) error {
	r := runner.NewRunner()
	r.Shell = cfg.Shell
	r.Env = cfg.Env
	batchID := runner.NewBatchID()

	switch opts.action() {
	case actionSubmit:
		return scripts.New(r, cfg, batchID).SubmitAll(ctx, opts.workspace)
	case actionCollect:
		return scripts.New(r, cfg, batchID).CollectAll(ctx, opts.workspace)
	case actionStats:
		timer := collect.New(r, cfg.Collect, batchID)
		m := measure.New(cfg, logparse.New(), timer)
		records, err := m.Workspace(ctx, opts.workspace, opts.collectTime)
		if err != nil {
			return err
		}

		fields := report.Fields(opts.collectTime)
		if opts.csvPath != "" {
			if err := report.WriteCSV(opts.csvPath, records, fields); err != nil {
				return err
			}
			log.Printf("wrote %d record(s) to %s", len(records), opts.csvPath)
			return nil
		}
		return report.WriteText(stdout, records, fields)
	}
	return &usageError{msg: "no option provided"}
}
