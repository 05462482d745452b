// Package compiler turns a source file into a runnable artifact by invoking
// an external toolchain once per run.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// DefaultTimeout bounds a compilation when the request leaves it at zero.
const DefaultTimeout = 30 * time.Second

// Placeholders recognised in toolchain arguments.
const (
	SourcePlaceholder = "{source}"
	OutputPlaceholder = "{output}"
)

// Request describes one compilation.
type Request struct {
	Source    string
	Output    string
	Toolchain string
	Args      []string
	Timeout   time.Duration
}

// CommandLine returns the argv used for the request. Without placeholders the
// source and "-o output" are appended, the way C and C++ compilers expect.
func (r Request) CommandLine() []string {
	argv := []string{r.Toolchain}
	substituted := false
	for _, a := range r.Args {
		if strings.Contains(a, SourcePlaceholder) || strings.Contains(a, OutputPlaceholder) {
			substituted = true
			a = strings.ReplaceAll(a, SourcePlaceholder, r.Source)
			a = strings.ReplaceAll(a, OutputPlaceholder, r.Output)
		}
		argv = append(argv, a)
	}
	if !substituted {
		argv = append(argv, r.Source, "-o", r.Output)
	}
	return argv
}

// Error carries the diagnostics of a failed compilation.
type Error struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Timeout  time.Duration
	Err      error
}

func (e *Error) Error() string {
	switch {
	case errors.Is(e.Err, casegen.ErrToolchainUnavailable):
		return fmt.Sprintf("%v: %s", e.Err, e.Command)
	case e.TimedOut:
		return fmt.Sprintf("%v: timed out after %s (command: %s)", e.Err, e.Timeout, e.Command)
	default:
		return fmt.Sprintf("%v: exit code %d (command: %s)", e.Err, e.ExitCode, e.Command)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Compiler invokes toolchains.
type Compiler struct {
	log *zap.Logger
}

// New creates a compiler. A nil logger disables logging.
func New(log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{log: log.Named("compiler")}
}

// Compile runs the toolchain and returns nil once the artifact is ready.
// Failures are logged with the full diagnostics and returned as *Error.
func (c *Compiler) Compile(ctx context.Context, req Request) error {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	argv := req.CommandLine()
	cmdline := strings.Join(argv, " ")

	if _, err := exec.LookPath(req.Toolchain); err != nil {
		c.log.Error("Toolchain not found, ensure it is in your PATH",
			zap.String("toolchain", req.Toolchain))
		return &Error{Command: req.Toolchain, ExitCode: -1, Err: casegen.ErrToolchainUnavailable}
	}

	c.log.Debug("Compiling", zap.String("command", cmdline), zap.Duration("timeout", timeout))

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	if err == nil {
		c.log.Debug("Compilation succeeded", zap.Duration("took", time.Since(start)))
		return nil
	}

	cerr := &Error{
		Command:  cmdline,
		ExitCode: -1,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      casegen.ErrCompileFailure,
	}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		cerr.TimedOut = true
		cerr.Timeout = timeout
		c.log.Error("Compilation timed out", zap.String("source", req.Source),
			zap.String("command", cmdline), zap.Duration("timeout", timeout))
		return cerr
	case errors.As(err, &exitErr):
		cerr.ExitCode = exitErr.ExitCode()
	default:
		// Resolved by LookPath but could not start, e.g. permission denied.
		cerr.Stderr = err.Error()
	}

	c.log.Error("Compilation failed",
		zap.String("source", req.Source),
		zap.String("command", cmdline),
		zap.Int("exit_code", cerr.ExitCode),
		zap.String("stdout", cerr.Stdout),
		zap.String("stderr", cerr.Stderr))
	return cerr
}
