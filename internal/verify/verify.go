// Package verify judges a candidate program against a stored suite.
package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"pkg.jsn.cam/casegen/internal/compiler"
	"pkg.jsn.cam/casegen/internal/harness"
	"pkg.jsn.cam/casegen/internal/runner"
	"pkg.jsn.cam/casegen/pkg/casegen"
)

// Status is the overall verdict of a verification.
type Status string

const (
	StatusAccepted          Status = "Accepted"
	StatusCompilationError  Status = "Compilation Error"
	StatusWrongAnswer       Status = "Wrong Answer"
	StatusTimeLimitExceeded Status = "Time Limit Exceeded"
	StatusRuntimeError      Status = "Runtime Error"
)

// Request describes one verification.
type Request struct {
	Source         string
	Toolchain      string
	ToolchainArgs  []string
	CompileTimeout time.Duration
	ExecTimeout    time.Duration
	Suite          casegen.Suite
	TempDir        string
}

// Verdict is the result of a verification. FailedCase is 1-based and zero
// unless a case failed.
type Verdict struct {
	Status     Status
	Message    string
	FailedCase int
	Passed     int
	Total      int
	Expected   string
	Actual     string
	// Outcome of the failing case, or of the last case when accepted.
	Outcome runner.Outcome
	// CompileOutput holds the toolchain diagnostics for a compilation error.
	CompileOutput string
}

// Accepted reports whether every case passed.
func (v *Verdict) Accepted() bool {
	return v.Status == StatusAccepted
}

// Verifier compiles a candidate and runs it against every case in order,
// stopping at the first failure.
type Verifier struct {
	log      *zap.Logger
	compiler harness.Compiler
	executor harness.Executor
}

// Option configures a Verifier
type Option func(*Verifier)

// WithCompiler replaces the default toolchain adapter.
func WithCompiler(c harness.Compiler) Option {
	return func(v *Verifier) { v.compiler = c }
}

// WithExecutor replaces the default subprocess runner.
func WithExecutor(e harness.Executor) Option {
	return func(v *Verifier) { v.executor = e }
}

// New creates a Verifier.
func New(log *zap.Logger, opts ...Option) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Verifier{log: log.Named("verify")}
	for _, opt := range opts {
		opt(v)
	}
	if v.compiler == nil {
		v.compiler = compiler.New(log)
	}
	if v.executor == nil {
		v.executor = runner.New(log)
	}
	return v
}

// Verify judges req.Source. A failing candidate is reported through the
// Verdict; the error is reserved for problems with the environment or the
// request itself.
func (v *Verifier) Verify(ctx context.Context, req Request) (*Verdict, error) {
	if len(req.Suite) == 0 {
		return nil, casegen.ErrSuiteNotFound
	}

	workDir, err := os.MkdirTemp(req.TempDir, "casegen-verify-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	artifact := filepath.Join(workDir, "candidate_exec")
	err = v.compiler.Compile(ctx, compiler.Request{
		Source:    req.Source,
		Output:    artifact,
		Toolchain: req.Toolchain,
		Args:      req.ToolchainArgs,
		Timeout:   req.CompileTimeout,
	})
	if err != nil {
		if errors.Is(err, casegen.ErrToolchainUnavailable) || ctx.Err() != nil {
			return nil, err
		}
		verdict := &Verdict{
			Status:  StatusCompilationError,
			Message: "Code compilation failed.",
			Total:   len(req.Suite),
		}
		var cerr *compiler.Error
		if errors.As(err, &cerr) {
			verdict.CompileOutput = cerr.Stderr
		}
		return verdict, nil
	}

	timeout := req.ExecTimeout
	if timeout <= 0 {
		timeout = runner.DefaultTimeout
	}

	verdict := &Verdict{Total: len(req.Suite)}
	for i, tc := range req.Suite {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("verification interrupted after %d of %d cases: %w", i, len(req.Suite), err)
		}

		index := i + 1
		outcome := v.executor.Execute(ctx, artifact, tc.Input, timeout)
		verdict.Outcome = outcome

		status := judge(outcome, tc.Output)
		if status != StatusAccepted {
			verdict.Status = status
			verdict.Message = fmt.Sprintf("Test case %d failed.", index)
			verdict.FailedCase = index
			verdict.Expected = tc.Output
			verdict.Actual = outcome.Stdout
			v.log.Info("Test case failed",
				zap.Int("case", index),
				zap.String("status", string(status)),
				zap.String("input", harness.Preview(tc.Input)))
			return verdict, nil
		}
		verdict.Passed++
	}

	verdict.Status = StatusAccepted
	verdict.Message = "All test cases passed successfully!"
	v.log.Info("Accepted", zap.Int("cases", verdict.Total))
	return verdict, nil
}

func judge(outcome runner.Outcome, expected string) Status {
	switch outcome.Kind {
	case runner.KindTimeout:
		return StatusTimeLimitExceeded
	case runner.KindNonZeroExit, runner.KindLaunchFailure:
		return StatusRuntimeError
	}
	if outcome.Stdout != strings.TrimSpace(expected) {
		return StatusWrongAnswer
	}
	return StatusAccepted
}
