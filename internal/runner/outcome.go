package runner

import (
	"fmt"
	"time"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// Kind classifies a single execution attempt.
type Kind int

const (
	KindSuccess Kind = iota
	KindNonZeroExit
	KindTimeout
	KindLaunchFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNonZeroExit:
		return "non-zero exit"
	case KindTimeout:
		return "timeout"
	case KindLaunchFailure:
		return "launch failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of running the artifact once. Only the fields that
// belong to Kind are set: Stdout for success, ExitCode and Stderr for a
// non-zero exit, Reason for a launch failure.
type Outcome struct {
	Kind     Kind
	Stdout   string
	Stderr   string
	ExitCode int
	Reason   string
	Duration time.Duration
}

// OK reports whether the attempt succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Err returns nil on success and a wrapped sentinel otherwise.
func (o Outcome) Err() error {
	switch o.Kind {
	case KindSuccess:
		return nil
	case KindNonZeroExit:
		return fmt.Errorf("%w: code %d, stderr: %q", casegen.ErrNonZeroExit, o.ExitCode, o.Stderr)
	case KindTimeout:
		return fmt.Errorf("%w after %s", casegen.ErrExecutionTimeout, o.Duration.Round(time.Millisecond))
	default:
		return fmt.Errorf("%w: %s", casegen.ErrLaunchFailure, o.Reason)
	}
}
