package runner

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

const ringBufSize = 64 * 1024 // 64KB

// RingBuffer is a fixed-size circular buffer that implements io.Writer.
// It retains only the most recent bytes written, up to its capacity.
type RingBuffer struct {
	buf  []byte
	size int
	pos  int
	full bool
}

// NewRingBuffer creates a RingBuffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]byte, size), size: size}
}

// Write implements io.Writer. It writes p into the ring buffer,
// overwriting the oldest data if capacity is exceeded.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= rb.size {
		// Data larger than buffer; keep only the tail.
		copy(rb.buf, p[n-rb.size:])
		rb.pos = 0
		rb.full = true
		return n, nil
	}

	// Copy what fits before wrap-around.
	oldPos := rb.pos
	first := rb.size - rb.pos
	if first >= n {
		copy(rb.buf[rb.pos:], p)
	} else {
		copy(rb.buf[rb.pos:], p[:first])
		copy(rb.buf, p[first:])
	}

	rb.pos = (rb.pos + n) % rb.size
	if !rb.full && rb.pos <= oldPos {
		rb.full = true
	}
	return n, nil
}

// String returns the buffered contents in chronological order.
func (rb *RingBuffer) String() string {
	if !rb.full {
		return string(rb.buf[:rb.pos])
	}
	// Buffer is full: data from pos..end is oldest, then 0..pos is newest.
	out := make([]byte, rb.size)
	n := copy(out, rb.buf[rb.pos:])
	copy(out[n:], rb.buf[:rb.pos])
	return string(out)
}

// Result holds the outcome of a single child process.
type Result struct {
	ExitCode int
	// Stderr is the tail of the process's standard error.
	Stderr     string
	DurationMs int64
	// Error is set when the process could not be started or exited non-zero.
	Error error
}

// Failed reports whether the process failed to start or exited non-zero.
func (r *Result) Failed() bool {
	return r.Error != nil || r.ExitCode != 0
}

// Runner executes child processes synchronously.
type Runner struct {
	// Shell is the interpreter used by Run. Defaults to "sh".
	Shell string
	// Env is overlaid on the current environment of every child.
	Env map[string]string
}

// RunOptions controls where a child's output goes besides the captured
// stderr tail. Stdout is discarded when ExtraStdout is nil.
type RunOptions struct {
	ExtraStdout io.Writer
	ExtraStderr io.Writer
	Context     Context
}

// NewRunner creates a new Runner that uses sh for shell commands.
func NewRunner() *Runner {
	return &Runner{Shell: "sh"}
}

// Run executes the given command line through the runner's shell and
// blocks until it exits.
func (r *Runner) Run(ctx context.Context, command string, opts *RunOptions) *Result {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	return r.run(exec.CommandContext(ctx, shell, "-c", command), opts)
}

// Exec spawns the program at path directly, without a shell, and blocks
// until it exits.
func (r *Runner) Exec(ctx context.Context, path string, args []string, opts *RunOptions) *Result {
	return r.run(exec.CommandContext(ctx, path, args...), opts)
}

func (r *Runner) run(cmd *exec.Cmd, opts *RunOptions) *Result {
	if opts == nil {
		opts = &RunOptions{}
	}
	cmd.Env = BuildEnv(r.Env, opts.Context)

	stderrBuf := NewRingBuffer(ringBufSize)
	if opts.ExtraStdout != nil {
		cmd.Stdout = opts.ExtraStdout
	}
	cmd.Stderr = newTeeWriter(stderrBuf, opts.ExtraStderr)

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stderr:     stderrBuf.String(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	return result
}

// teeWriter copies writes to secondary while reporting only primary's result.
type teeWriter struct {
	primary   io.Writer
	secondary io.Writer
}

func newTeeWriter(primary io.Writer, secondary io.Writer) io.Writer {
	if secondary == nil {
		return primary
	}
	return &teeWriter{
		primary:   primary,
		secondary: secondary,
	}
}

func (t *teeWriter) Write(p []byte) (int, error) {
	n, err := t.primary.Write(p)
	if t.secondary != nil {
		_, _ = t.secondary.Write(p)
	}
	return n, err
}
