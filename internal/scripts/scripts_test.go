package scripts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/patrickspencer/simstats/internal/config"
	"github.com/patrickspencer/simstats/internal/runner"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func newTestRunner(cfg *config.Config) *Runner {
	r := New(runner.NewRunner(), cfg, "batch-1")
	r.stdout = nil
	r.stderr = nil
	return r
}

func TestSubmitAllRunsEachDirectoryOnceInOrder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()

	ws := t.TempDir()
	trace := filepath.Join(ws, "trace.txt")
	for _, name := range []string{"run_c", "run_a", "run_b"} {
		writeScript(t, filepath.Join(ws, name, "submit.sh"),
			"echo \"$(basename \"$SIMSTATS_RUN_DIR\") $SIMSTATS_ACTION $SIMSTATS_BATCH_ID\" >> "+trace+"\n")
	}

	if err := newTestRunner(config.Default()).SubmitAll(context.Background(), ws); err != nil {
		t.Fatalf("SubmitAll: %v", err)
	}

	data, err := os.ReadFile(trace)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	want := "run_a submit batch-1\nrun_b submit batch-1\nrun_c submit batch-1\n"
	if string(data) != want {
		t.Fatalf("expected trace %q, got %q", want, string(data))
	}
}

func TestCollectAllUsesCollectScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()

	ws := t.TempDir()
	marker := filepath.Join(ws, "run_a", "collected")
	writeScript(t, filepath.Join(ws, "run_a", "collect.sh"), "touch "+marker+"\n")
	writeScript(t, filepath.Join(ws, "run_a", "submit.sh"), "exit 1\n")

	if err := newTestRunner(config.Default()).CollectAll(context.Background(), ws); err != nil {
		t.Fatalf("CollectAll: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("expected collect script to run: %v", err)
	}
}

func TestRunAllStopsOnFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()

	ws := t.TempDir()
	trace := filepath.Join(ws, "trace.txt")
	writeScript(t, filepath.Join(ws, "run_a", "submit.sh"), "echo a >> "+trace+"\n")
	writeScript(t, filepath.Join(ws, "run_b", "submit.sh"), "echo queue full 1>&2\nexit 4\n")
	writeScript(t, filepath.Join(ws, "run_c", "submit.sh"), "echo c >> "+trace+"\n")

	err := newTestRunner(config.Default()).SubmitAll(context.Background(), ws)

	var serr *ScriptError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if serr.ExitCode != 4 {
		t.Fatalf("expected exit 4, got %d", serr.ExitCode)
	}
	if serr.Stderr != "queue full\n" {
		t.Fatalf("expected stderr tail attached, got %q", serr.Stderr)
	}
	if !strings.HasSuffix(serr.Script, filepath.Join("run_b", "submit.sh")) {
		t.Fatalf("expected failure in run_b, got %s", serr.Script)
	}

	data, err := os.ReadFile(trace)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if string(data) != "a\n" {
		t.Fatalf("expected run_c to be skipped, trace %q", string(data))
	}
}

func TestRunAllMissingScript(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, "run_a"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err := newTestRunner(config.Default()).SubmitAll(context.Background(), ws)

	var serr *ScriptError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if serr.ExitCode != -1 {
		t.Fatalf("expected spawn failure exit -1, got %d", serr.ExitCode)
	}
}

func TestRunAllMissingWorkspace(t *testing.T) {
	t.Parallel()

	err := newTestRunner(config.Default()).SubmitAll(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
