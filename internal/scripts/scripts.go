// Package scripts runs a fixed script in every run directory of a workspace.
package scripts

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickspencer/simstats/internal/config"
	"github.com/patrickspencer/simstats/internal/runner"
	"github.com/patrickspencer/simstats/internal/workspace"
)

// Executor spawns a program and waits for it to exit.
type Executor interface {
	Exec(ctx context.Context, path string, args []string, opts *runner.RunOptions) *runner.Result
}

// ScriptError reports a script that could not be started or exited non-zero.
type ScriptError struct {
	Script   string
	ExitCode int
	// Stderr is the tail of the script's standard error.
	Stderr string
	Err    error
}

func (e *ScriptError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit %d: %v", e.Script, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s: exit %d: %v\n%s", e.Script, e.ExitCode, e.Err, e.Stderr)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Runner runs submit and collect scripts.
type Runner struct {
	exec    Executor
	cfg     *config.Config
	batchID string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a Runner. Script output is passed through to the process's
// own stdout and stderr.
func New(exec Executor, cfg *config.Config, batchID string) *Runner {
	return &Runner{
		exec:    exec,
		cfg:     cfg,
		batchID: batchID,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// SubmitAll runs the submit script in every run directory.
func (r *Runner) SubmitAll(ctx context.Context, ws string) error {
	return r.RunAll(ctx, ws, "submit", r.cfg.SubmitScript)
}

// CollectAll runs the collect script in every run directory.
func (r *Runner) CollectAll(ctx context.Context, ws string) error {
	return r.RunAll(ctx, ws, "collect", r.cfg.CollectScript)
}

// RunAll runs <run_dir>/<script> for each run directory in listing order,
// one at a time. The first failure stops the loop.
func (r *Runner) RunAll(ctx context.Context, ws, action, script string) error {
	log.Printf("%s: %s", action, ws)

	dirs, err := workspace.RunDirs(ws, r.cfg.RunPrefix)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, script)
		log.Printf("Run command: %s", path)

		res := r.exec.Exec(ctx, path, nil, &runner.RunOptions{
			ExtraStdout: r.stdout,
			ExtraStderr: r.stderr,
			Context: runner.Context{
				BatchID:   r.batchID,
				Workspace: ws,
				RunDir:    dir,
				Action:    action,
			},
		})
		if res.Failed() {
			return &ScriptError{Script: path, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: res.Error}
		}
		log.Printf("%s finished in %s", path, time.Duration(res.DurationMs)*time.Millisecond)
	}
	return nil
}
