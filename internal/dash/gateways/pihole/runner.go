package pihole

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/haukened/pihole-dash/internal/dash/common/log"
	"github.com/haukened/pihole-dash/internal/dash/infra/metrics"
)

// waitDelay bounds how long Run waits for output pipes after the process is killed.
const waitDelay = 2 * time.Second

// Result is the raw outcome of one filter binary invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner invokes the filter management binary. A non-zero exit is reported
// through Result.ExitCode, not as an error; errors mean the process could
// not be run to completion (spawn failure, timeout, cancellation).
// Runners never retry.
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

// Options configures an ExecRunner.
type Options struct {
	Command string
	UseSudo bool
	Timeout time.Duration
	Logger  log.Logger
}

// ExecRunner runs the binary as a child process, optionally under sudo.
type ExecRunner struct {
	command string
	useSudo bool
	timeout time.Duration
	logger  log.Logger
}

// NewExecRunner creates a Runner bound to a single binary.
func NewExecRunner(opts Options) *ExecRunner {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ExecRunner{
		command: opts.Command,
		useSudo: opts.UseSudo,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// argv returns the full argument vector, sudo included.
func (r *ExecRunner) argv(args []string) []string {
	out := make([]string, 0, len(args)+2)
	if r.useSudo {
		out = append(out, "sudo", "-n")
	}
	out = append(out, r.command)
	return append(out, args...)
}

// Run executes the binary with args and waits for it, bounded by the
// configured timeout.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	argv := r.argv(args)
	verb := verbOf(args)
	start := time.Now()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherit the output pipes must not outlive the deadline.
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	metrics.CommandDuration.WithLabelValues(verb).Observe(time.Since(start).Seconds())

	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		metrics.CommandsTotal.WithLabelValues(verb, "error").Inc()
		r.logger.Warn(map[string]any{"args": argv, "error": ctxErr.Error()}, "filter command aborted")
		return res, fmt.Errorf("run %s: %w", strings.Join(argv, " "), ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		metrics.CommandsTotal.WithLabelValues(verb, "ok").Inc()
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		metrics.CommandsTotal.WithLabelValues(verb, "failed").Inc()
		r.logger.Debug(map[string]any{
			"args":      argv,
			"exit_code": res.ExitCode,
			"stderr":    res.Stderr,
		}, "filter command exited non-zero")
	default:
		res.ExitCode = -1
		metrics.CommandsTotal.WithLabelValues(verb, "error").Inc()
		return res, fmt.Errorf("run %s: %w", strings.Join(argv, " "), err)
	}
	return res, nil
}

// verbOf reduces an argument vector to a low-cardinality metric label.
func verbOf(args []string) string {
	if len(args) == 0 {
		return "none"
	}
	verb := args[0]
	if len(args) > 1 && args[1] == "-d" {
		verb += " -d"
	}
	return verb
}

var _ Runner = (*ExecRunner)(nil)
