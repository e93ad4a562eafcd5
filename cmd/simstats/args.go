package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

type action int

const (
	actionNone action = iota
	actionSubmit
	actionCollect
	actionStats
)

// options holds the parsed command line.
type options struct {
	workspace   string
	csvPath     string
	configPath  string
	submit      bool
	collect     bool
	statistics  bool
	collectTime bool
}

// usageError is returned for invalid command lines.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func (o *options) action() action {
	switch {
	case o.submit:
		return actionSubmit
	case o.collect:
		return actionCollect
	case o.statistics:
		return actionStats
	}
	return actionNone
}

// parseArgs parses args. Flags may appear before or after the workspace.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	var o options

	fs := flag.NewFlagSet("simstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: simstats [flags] <workspace>")
		fmt.Fprintln(fs.Output(), "\nworkspace is a directory with many run_* directories.")
		fmt.Fprintln(fs.Output(), "Exactly one of -submit, -collect or -stats is required.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}

	fs.StringVar(&o.csvPath, "csv", "", "save results to csv `file`")
	fs.StringVar(&o.configPath, "config", "", "optional YAML configuration `file`")
	fs.BoolVar(&o.submit, "submit", false, "process submit script in every run directory")
	fs.BoolVar(&o.submit, "submit_all", false, "alias for -submit")
	fs.BoolVar(&o.collect, "collect", false, "process collect script in every run directory")
	fs.BoolVar(&o.collect, "collect_all", false, "alias for -collect")
	fs.BoolVar(&o.statistics, "stats", false, "compute run time statistics for every run directory")
	fs.BoolVar(&o.statistics, "statistics", false, "alias for -stats")
	fs.BoolVar(&o.collectTime, "ct", false, "with -stats, also measure image collection time")
	fs.BoolVar(&o.collectTime, "collect_time", false, "alias for -ct")

	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	fail := func(msg string) (*options, error) {
		fmt.Fprintf(stderr, "error: %s\n", msg)
		fs.Usage()
		return nil, &usageError{msg: msg}
	}

	switch len(positional) {
	case 0:
		return fail("workspace argument is required")
	case 1:
		o.workspace = positional[0]
	default:
		return fail(fmt.Sprintf("unexpected arguments: %q", positional[1:]))
	}

	n := 0
	for _, set := range []bool{o.submit, o.collect, o.statistics} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return fail("no option provided: use one of -submit, -collect, -stats")
	case n > 1:
		return fail("-submit, -collect and -stats are mutually exclusive")
	}
	if o.collectTime && !o.statistics {
		return fail("-ct requires -stats")
	}
	if o.csvPath != "" && !o.statistics {
		return fail("-csv requires -stats")
	}

	return &o, nil
}

func isUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}
