package runner

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestRingBufferKeepsTail(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8)
	_, _ = rb.Write([]byte("abcdef"))
	_, _ = rb.Write([]byte("ghij"))

	if got, want := rb.String(), "cdefghij"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	big := NewRingBuffer(4)
	_, _ = big.Write([]byte("0123456789"))
	if got, want := big.String(), "6789"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRingBufferPartial(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(16)
	_, _ = rb.Write([]byte("real 1.00\n"))
	if got, want := rb.String(), "real 1.00\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildEnvAddsContext(t *testing.T) {
	t.Parallel()

	env := BuildEnv(map[string]string{"A": "1"}, Context{
		BatchID: "batch",
		RunDir:  "/ws/run_a",
		Action:  "submit",
	})

	joined := "\n" + strings.Join(env, "\n") + "\n"
	for _, want := range []string{"\nA=1\n", "\nSIMSTATS_BATCH_ID=batch\n", "\nSIMSTATS_RUN_DIR=/ws/run_a\n", "\nSIMSTATS_ACTION=submit\n"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected env to contain %q, got %v", strings.TrimSpace(want), env)
		}
	}
	if strings.Contains(joined, "\nSIMSTATS_WORKSPACE=") {
		t.Fatalf("expected empty workspace to be omitted, got %v", env)
	}
}

func TestNewBatchIDIsULID(t *testing.T) {
	t.Parallel()

	id := NewBatchID()
	if _, err := ulid.Parse(id); err != nil {
		t.Fatalf("expected valid ULID, got %q: %v", id, err)
	}
}

func TestRunCapturesStderrAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()

	r := NewRunner()
	res := r.Run(context.Background(), "echo out; echo err 1>&2; exit 3", nil)

	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
	if !res.Failed() {
		t.Fatalf("expected failed result")
	}
	if res.Stderr != "err\n" {
		t.Fatalf("expected stderr %q, got %q", "err\n", res.Stderr)
	}
}

func TestRunPassesOutputThrough(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()

	var stdout, stderr bytes.Buffer
	r := NewRunner()
	r.Env = map[string]string{"SIMSTATS_TEST_VALUE": "from-config"}
	res := r.Run(context.Background(), "echo \"$SIMSTATS_ACTION $SIMSTATS_TEST_VALUE\"; echo warn 1>&2", &RunOptions{
		ExtraStdout: &stdout,
		ExtraStderr: &stderr,
		Context:     Context{Action: "collect"},
	})
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Error)
	}
	if stdout.String() != "collect from-config\n" {
		t.Fatalf("expected stdout %q, got %q", "collect from-config\n", stdout.String())
	}
	if stderr.String() != "warn\n" || res.Stderr != "warn\n" {
		t.Fatalf("expected stderr to be teed and captured, got %q / %q", stderr.String(), res.Stderr)
	}
	if res.DurationMs < 0 {
		t.Fatalf("expected non-negative duration, got %d", res.DurationMs)
	}
}

func TestExecMissingProgram(t *testing.T) {
	t.Parallel()

	r := NewRunner()
	res := r.Exec(context.Background(), filepath.Join(t.TempDir(), "missing.sh"), nil, nil)
	if res.Error == nil {
		t.Fatalf("expected spawn error")
	}
	if res.ExitCode != -1 {
		t.Fatalf("expected exit code -1, got %d", res.ExitCode)
	}
}
