// Package harness drives a run: compile once, generate inputs, execute each
// one in order and keep the successful pairs.
package harness

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pkg.jsn.cam/casegen/internal/compiler"
	"pkg.jsn.cam/casegen/internal/runner"
	"pkg.jsn.cam/casegen/pkg/casegen"
	"pkg.jsn.cam/casegen/pkg/generator"
)

// previewLength is how much of an input is echoed in per-item reports.
const previewLength = 70

// Config describes a single harness run.
type Config struct {
	Source         string
	Toolchain      string
	ToolchainArgs  []string
	CompileTimeout time.Duration
	ExecTimeout    time.Duration
	Request        casegen.GenerationRequest
	// Seed feeds the generator; zero picks a random seed, reported in the Result.
	Seed uint64
	// TempDir is the parent of the scoped working directory; empty uses os.TempDir.
	TempDir string
}

// Compiler builds the artifact.
type Compiler interface {
	Compile(ctx context.Context, req compiler.Request) error
}

// Executor runs the artifact against one input.
type Executor interface {
	Execute(ctx context.Context, artifact, input string, timeout time.Duration) runner.Outcome
}

// CaseReport is emitted once per executed item.
type CaseReport struct {
	Index   int // 1-based
	Total   int
	Preview string
	Outcome runner.Outcome
}

// Observer receives a report after each item.
type Observer func(CaseReport)

// ItemWarning records an item that was dropped.
type ItemWarning struct {
	Index   int // 1-based position in the generated sequence
	Preview string
	Outcome runner.Outcome
}

func (w ItemWarning) Error() string {
	return fmt.Sprintf("test case %d (input %q): %v", w.Index, w.Preview, w.Outcome.Err())
}

func (w ItemWarning) Unwrap() error {
	return w.Outcome.Err()
}

// Result is what a run produced. Warnings hold every dropped item; the run
// itself only fails through the error returned by Run.
type Result struct {
	RunID     string
	Seed      uint64
	Category  casegen.Category
	Suite     casegen.Suite
	Warnings  []ItemWarning
	Attempted int
}

// Harness wires the compiler and executor together.
type Harness struct {
	cfg      Config
	log      *zap.Logger
	compiler Compiler
	executor Executor
	observer Observer
}

// Option configures a Harness
type Option func(*Harness)

// WithCompiler replaces the default toolchain adapter.
func WithCompiler(c Compiler) Option {
	return func(h *Harness) { h.compiler = c }
}

// WithExecutor replaces the default subprocess runner.
func WithExecutor(e Executor) Option {
	return func(h *Harness) { h.executor = e }
}

// WithObserver registers a per-item callback.
func WithObserver(o Observer) Option {
	return func(h *Harness) { h.observer = o }
}

// New creates a harness for cfg.
func New(cfg Config, log *zap.Logger, opts ...Option) *Harness {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Harness{
		cfg: cfg,
		log: log.Named("harness"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.compiler == nil {
		h.compiler = compiler.New(log)
	}
	if h.executor == nil {
		h.executor = runner.New(log)
	}
	return h
}

// Run executes the pipeline. It returns a nil error only when at least one
// case was retained.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	req := h.cfg.Request
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation request: %w", err)
	}

	seed := h.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	result := &Result{
		RunID:    uuid.NewString(),
		Seed:     seed,
		Category: req.Category,
	}
	log := h.log.With(zap.String("run_id", result.RunID))

	workDir, err := os.MkdirTemp(h.cfg.TempDir, "casegen-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("Failed to remove working directory", zap.Error(err))
		}
	}()

	artifact := filepath.Join(workDir, artifactName(h.cfg.Source))

	log.Info("Compiling", zap.String("source", h.cfg.Source))
	if err := h.compiler.Compile(ctx, compiler.Request{
		Source:    h.cfg.Source,
		Output:    artifact,
		Toolchain: h.cfg.Toolchain,
		Args:      h.cfg.ToolchainArgs,
		Timeout:   h.cfg.CompileTimeout,
	}); err != nil {
		return nil, err
	}
	log.Info("Compilation successful")

	gen, err := generator.New(req, seed)
	if err != nil {
		return nil, err
	}
	specs := gen.Generate(req.Count)
	log.Info("Generated inputs",
		zap.Int("count", len(specs)),
		zap.String("category", string(req.Category)),
		zap.Uint64("seed", seed))

	timeout := h.cfg.ExecTimeout
	if timeout <= 0 {
		timeout = runner.DefaultTimeout
	}
	log.Info("Running solution", zap.Int("inputs", len(specs)), zap.Duration("timeout", timeout))

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted after %d of %d cases: %w", i, len(specs), err)
		}

		index := i + 1
		preview := Preview(spec.Payload)
		outcome := h.executor.Execute(ctx, artifact, spec.Payload, timeout)
		result.Attempted++

		if outcome.OK() {
			result.Suite = append(result.Suite, casegen.TestCase{
				Input:    spec.Payload,
				Output:   outcome.Stdout,
				IsSample: spec.IsSample,
			})
			log.Info(fmt.Sprintf("Test case %d/%d (Input: \"%s\") OK", index, len(specs), preview))
		} else {
			w := ItemWarning{Index: index, Preview: preview, Outcome: outcome}
			result.Warnings = append(result.Warnings, w)
			log.Warn(fmt.Sprintf("Test case %d/%d (Input: \"%s\") Failed", index, len(specs), preview),
				zap.String("outcome", outcome.Kind.String()),
				zap.Error(outcome.Err()))
		}

		if h.observer != nil {
			h.observer(CaseReport{Index: index, Total: len(specs), Preview: preview, Outcome: outcome})
		}
	}

	if len(result.Suite) == 0 {
		return result, fmt.Errorf("%w: check the program, input type, or increase the timeout", casegen.ErrEmptyResultSet)
	}

	log.Info("Successfully generated test cases",
		zap.Int("retained", len(result.Suite)),
		zap.Int("dropped", len(result.Warnings)))
	return result, nil
}

// Preview shortens an input for display: newlines are escaped and anything
// beyond 70 characters is replaced by "...".
func Preview(input string) string {
	truncated := len(input) > previewLength
	if truncated {
		input = input[:previewLength]
	}
	input = strings.ReplaceAll(input, "\n", `\n`)
	if truncated {
		input += "..."
	}
	return input
}

func artifactName(source string) string {
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_exec"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}
