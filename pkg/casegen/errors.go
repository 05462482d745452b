package casegen

import "errors"

// Sentinel errors for common error conditions
var (
	// Configuration errors, raised before anything is compiled
	ErrUnknownCategory = errors.New("unknown input category")
	ErrInvalidCount    = errors.New("count must be positive")
	ErrNegativeBound   = errors.New("bounds must be non-negative")
	ErrBoundTooLarge   = errors.New("value bound too large")

	// Toolchain errors (fatal for the run)
	ErrToolchainUnavailable = errors.New("toolchain not found")
	ErrCompileFailure       = errors.New("compilation failed")

	// Per-item execution errors (recoverable, the item is dropped)
	ErrLaunchFailure    = errors.New("program failed to launch")
	ErrExecutionTimeout = errors.New("program timed out")
	ErrNonZeroExit      = errors.New("program exited with non-zero code")

	// Batch errors
	ErrEmptyResultSet = errors.New("no test cases were successfully generated")

	// Persistence errors
	ErrPersistence      = errors.New("could not persist test cases")
	ErrSuiteNotFound    = errors.New("no test cases found for this problem")
	ErrMissingProblemID = errors.New("problem id is required")
)
