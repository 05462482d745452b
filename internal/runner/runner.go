// Package runner executes a compiled artifact against one input at a time
// and classifies what happened.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single execution when the caller passes zero.
const DefaultTimeout = 5 * time.Second

// waitDelay bounds how long Wait keeps draining pipes after the process
// group has been killed.
const waitDelay = time.Second

// Runner runs artifacts as subprocesses, one at a time.
type Runner struct {
	log *zap.Logger
}

// New creates a runner. A nil logger disables logging.
func New(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log.Named("runner")}
}

// Execute runs artifact with input on stdin under a wall-clock timeout.
// It never returns an error: every failure is folded into the Outcome.
func (r *Runner) Execute(ctx context.Context, artifact, input string, timeout time.Duration) Outcome {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, artifact)
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	setupProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		r.log.Debug("Launch failed", zap.String("artifact", artifact), zap.Error(err))
		return Outcome{Kind: KindLaunchFailure, Reason: err.Error(), ExitCode: -1}
	}

	err := cmd.Wait()
	elapsed := time.Since(start)
	// Stragglers left in the group must not outlive the item.
	killProcessGroup(cmd)

	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		// Exited cleanly; a background child kept the output pipes open.
		r.log.Debug("Output pipes held open after exit", zap.String("artifact", artifact))
		err = nil
	}

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		r.log.Debug("Execution timed out", zap.Duration("timeout", timeout))
		return Outcome{Kind: KindTimeout, ExitCode: -1, Duration: elapsed}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			o := Outcome{
				Kind:     KindNonZeroExit,
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
				Duration: elapsed,
			}
			if o.ExitCode == -1 {
				// Killed by a signal; keep the signal name for the operator.
				o.Reason = exitErr.String()
			}
			r.log.Debug("Program exited non-zero", zap.Int("code", o.ExitCode), zap.String("stderr", o.Stderr))
			return o
		}
		if errors.Is(execCtx.Err(), context.Canceled) {
			return Outcome{Kind: KindLaunchFailure, Reason: "canceled", ExitCode: -1, Duration: elapsed}
		}
		r.log.Debug("Wait failed", zap.Error(err))
		return Outcome{Kind: KindLaunchFailure, Reason: err.Error(), ExitCode: -1, Duration: elapsed}
	}

	return Outcome{
		Kind:     KindSuccess,
		Stdout:   strings.TrimSpace(stdout.String()),
		Duration: elapsed,
	}
}
