// Package collect measures the wall-clock time of a run's image conversion.
package collect

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/patrickspencer/simstats/internal/config"
	"github.com/patrickspencer/simstats/internal/runner"
)

var realRegex = regexp.MustCompile(`real\s+(\d+)\.(\d+)`)

// Executor runs a shell command line and waits for it to finish.
type Executor interface {
	Run(ctx context.Context, command string, opts *runner.RunOptions) *runner.Result
}

// CommandError reports a timed command that could not start or exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q failed (exit %d): %v\n%s", e.Command, e.ExitCode, e.Err, e.Output)
	}
	return fmt.Sprintf("command %q failed (exit %d)\n%s", e.Command, e.ExitCode, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// PatternError reports timing output without a recognizable "real" line.
type PatternError struct {
	Output string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("no wall-clock time in command output:\n%s", e.Output)
}

// ParseTimeOutput extracts the "real" seconds reported by time -p.
func ParseTimeOutput(output string) (float64, error) {
	m := realRegex.FindStringSubmatch(output)
	if m == nil {
		return 0, &PatternError{Output: output}
	}
	v, err := strconv.ParseFloat(m[1]+"."+m[2], 64)
	if err != nil {
		return 0, &PatternError{Output: output}
	}
	return v, nil
}

// BuildCommand fills the conversion template for runDir and prefixes the
// timing wrapper.
func BuildCommand(cfg config.CollectConfig, runDir string) string {
	input := filepath.Join(runDir, cfg.Input)
	output := filepath.Join(runDir, cfg.OutputDir)
	if strings.HasSuffix(cfg.OutputDir, "/") {
		output += "/"
	}
	r := strings.NewReplacer("{input}", input, "{output}", output)
	return cfg.TimeCommand + " " + r.Replace(cfg.Command)
}

// Timer runs the timed conversion command for run directories.
type Timer struct {
	exec    Executor
	cfg     config.CollectConfig
	batchID string
}

// New creates a Timer.
func New(exec Executor, cfg config.CollectConfig, batchID string) *Timer {
	return &Timer{exec: exec, cfg: cfg, batchID: batchID}
}

// Measure runs the conversion for runDir and returns its wall-clock seconds.
func (t *Timer) Measure(ctx context.Context, runDir string) (float64, error) {
	command := BuildCommand(t.cfg, runDir)
	log.Printf("Run command: %s", command)

	res := t.exec.Run(ctx, command, &runner.RunOptions{
		Context: runner.Context{
			BatchID: t.batchID,
			RunDir:  runDir,
			Action:  "collect-time",
		},
	})
	if res.Failed() {
		return 0, &CommandError{
			Command:  command,
			ExitCode: res.ExitCode,
			Output:   res.Stderr,
			Err:      res.Error,
		}
	}
	return ParseTimeOutput(res.Stderr)
}
