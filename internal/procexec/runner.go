package procexec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Runner launches external processes and waits for them. It never retries.
type Runner struct {
	shared io.Writer
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	echo   bool
}

type Option func(*Runner)

// WithSharedSink routes output of every call without an override to w. w is
// wrapped so concurrent processes can share it.
func WithSharedSink(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.shared = Synchronized(w)
		}
	}
}

// WithInherited sets the streams used when no sink applies.
func WithInherited(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEcho logs every command line at debug level before it runs.
func WithEcho(echo bool) Option {
	return func(r *Runner) {
		r.echo = echo
	}
}

func New(opts ...Option) *Runner {
	r := &Runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sink returns the shared sink, or nil when output is inherited.
func (r *Runner) Sink() io.Writer {
	return r.shared
}

type callConfig struct {
	override      io.Writer
	discardStdout bool
}

type CallOption func(*callConfig)

// Override sends this call's output to w instead of the shared sink.
func Override(w io.Writer) CallOption {
	return func(c *callConfig) {
		c.override = w
	}
}

// DiscardStdout drops the process's stdout; stderr still goes to the resolved target.
func DiscardStdout() CallOption {
	return func(c *callConfig) {
		c.discardStdout = true
	}
}

// Resolve reports which target a call with the given override would use and
// the stdout/stderr writers for it.
func (r *Runner) Resolve(override io.Writer) (Target, io.Writer, io.Writer) {
	switch {
	case override != nil:
		return TargetOverride, override, override
	case r.shared != nil:
		return TargetShared, r.shared, r.shared
	default:
		return TargetInherit, r.stdout, r.stderr
	}
}

// Run executes name with args and waits for it to exit.
func (r *Runner) Run(ctx context.Context, name string, args []string, opts ...CallOption) Result {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	_, stdout, stderr := r.Resolve(cfg.override)
	if cfg.discardStdout {
		stdout = io.Discard
	}
	return r.run(ctx, name, args, stdout, stderr)
}

// Output executes name with args and returns its stdout. stderr goes to the
// resolved target.
func (r *Runner) Output(ctx context.Context, name string, args []string, opts ...CallOption) ([]byte, Result) {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	_, _, stderr := r.Resolve(cfg.override)
	var buf bytes.Buffer
	res := r.run(ctx, name, args, &buf, stderr)
	return buf.Bytes(), res
}

func (r *Runner) run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) Result {
	command := append([]string{name}, args...)
	if r.echo {
		r.logger.Debug("exec", "command", CommandLine(command))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{Command: command, Duration: time.Since(start)}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Err = ctxErr
	} else {
		res.Err = err
	}
	res.ExitCode = -1
	return res
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// Synchronized wraps w so that each Write is atomic with respect to other
// writers holding the same wrapper. Wrapping an already synchronized writer
// returns it unchanged.
func Synchronized(w io.Writer) io.Writer {
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
