package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pkg.jsn.cam/casegen/internal/compiler"
	"pkg.jsn.cam/casegen/internal/runner"
	"pkg.jsn.cam/casegen/internal/suite"
	"pkg.jsn.cam/casegen/pkg/casegen"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// copyToolchain "compiles" a shell script by copying it and marking it executable.
var copyToolchain = []string{"-c", `cp "$0" "$1" && chmod +x "$1"`, "{source}", "{output}"}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// scriptConfig writes body as the program source and returns a config that
// builds it with the copy toolchain.
func scriptConfig(t *testing.T, body string, category casegen.Category, count int) Config {
	t.Helper()
	requireShell(t)

	src := filepath.Join(t.TempDir(), "solution.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\n"+body+"\n"), 0o644))

	return Config{
		Source:        src,
		Toolchain:     "sh",
		ToolchainArgs: copyToolchain,
		ExecTimeout:   2 * time.Second,
		Request: casegen.GenerationRequest{
			Category: category,
			Count:    count,
			Bounds:   casegen.DefaultBounds(),
		},
		Seed:    1234,
		TempDir: t.TempDir(),
	}
}

const sumProgram = `read a b; echo $((a + b))`

func TestRunSumProgram(t *testing.T) {
	cfg := scriptConfig(t, sumProgram, casegen.CategoryScalar, 4)

	result, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Suite, 4)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, uint64(1234), result.Seed)
	assert.NotEmpty(t, result.RunID)

	for i, tc := range result.Suite {
		fields := strings.Fields(tc.Input)
		require.Len(t, fields, 2)
		a, _ := strconv.ParseInt(fields[0], 10, 64)
		b, _ := strconv.ParseInt(fields[1], 10, 64)
		assert.Equal(t, strconv.FormatInt(a+b, 10), tc.Output)
		assert.Equal(t, i < 2, tc.IsSample)
	}
}

func TestRunAlwaysFailingProgram(t *testing.T) {
	cfg := scriptConfig(t, `exit 1`, casegen.CategoryArray, 3)

	result, err := New(cfg, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, casegen.ErrEmptyResultSet)
	require.NotNil(t, result)
	assert.Empty(t, result.Suite)
	require.Len(t, result.Warnings, 3)
	for _, w := range result.Warnings {
		assert.Equal(t, runner.KindNonZeroExit, w.Outcome.Kind)
		assert.Equal(t, 1, w.Outcome.ExitCode)
		assert.ErrorIs(t, w, casegen.ErrNonZeroExit)
	}
}

func TestRunTimeoutDropsOnlyThatItem(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "slept")
	body := fmt.Sprintf(`if [ ! -f %q ]; then touch %q; sleep 5; fi
read a b; echo $((a + b))`, marker, marker)
	cfg := scriptConfig(t, body, casegen.CategoryScalar, 4)
	cfg.ExecTimeout = 300 * time.Millisecond

	var reports []CaseReport
	result, err := New(cfg, nil, WithObserver(func(r CaseReport) {
		reports = append(reports, r)
	})).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 1, result.Warnings[0].Index)
	assert.Equal(t, runner.KindTimeout, result.Warnings[0].Outcome.Kind)
	assert.ErrorIs(t, result.Warnings[0], casegen.ErrExecutionTimeout)

	assert.Len(t, result.Suite, 3)
	assert.Equal(t, 4, result.Attempted)
	require.Len(t, reports, 4)
	assert.Equal(t, 4, reports[3].Index)
	assert.Equal(t, 4, reports[3].Total)

	// The surviving second case keeps its sample flag.
	assert.True(t, result.Suite[0].IsSample)
	assert.False(t, result.Suite[1].IsSample)
}

func TestRunIsReproducibleForSeed(t *testing.T) {
	for _, category := range casegen.Categories() {
		t.Run(string(category), func(t *testing.T) {
			cfg := scriptConfig(t, `cat`, category, 6)

			var summaries []string
			for range 2 {
				result, err := New(cfg, nil).Run(context.Background())
				require.NoError(t, err)

				data, err := suite.EncodeSummary(result.Suite)
				require.NoError(t, err)
				summaries = append(summaries, string(data))
			}
			assert.Equal(t, summaries[0], summaries[1])
		})
	}
}

func TestRunCleansWorkingDirectory(t *testing.T) {
	cfg := scriptConfig(t, sumProgram, casegen.CategoryScalar, 2)

	_, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The failure path cleans up as well.
	cfg.ToolchainArgs = []string{"-c", "exit 1"}
	_, err = New(cfg, nil).Run(context.Background())
	require.Error(t, err)

	entries, err = os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeCompiler struct {
	calls int
	err   error
}

func (f *fakeCompiler) Compile(ctx context.Context, req compiler.Request) error {
	f.calls++
	return f.err
}

type fakeExecutor struct {
	inputs []string
	// reply receives the 1-based call number and the input.
	reply func(n int, input string) runner.Outcome
}

func (f *fakeExecutor) Execute(ctx context.Context, artifact, input string, timeout time.Duration) runner.Outcome {
	f.inputs = append(f.inputs, input)
	return f.reply(len(f.inputs), input)
}

func TestRunRejectsInvalidCategoryBeforeCompiling(t *testing.T) {
	fc := &fakeCompiler{}
	cfg := Config{Request: casegen.GenerationRequest{Category: "matrix", Count: 3}}

	_, err := New(cfg, nil, WithCompiler(fc)).Run(context.Background())
	assert.ErrorIs(t, err, casegen.ErrUnknownCategory)
	assert.Zero(t, fc.calls)
}

func TestRunCompileFailureIsFatal(t *testing.T) {
	fc := &fakeCompiler{err: &compiler.Error{Command: "g++ a.cpp", ExitCode: 1, Err: casegen.ErrCompileFailure}}
	fe := &fakeExecutor{reply: func(int, string) runner.Outcome { return runner.Outcome{Kind: runner.KindSuccess} }}
	cfg := Config{
		Source:  "a.cpp",
		Request: casegen.GenerationRequest{Category: casegen.CategoryText, Count: 3, Bounds: casegen.DefaultBounds()},
		TempDir: t.TempDir(),
	}

	result, err := New(cfg, nil, WithCompiler(fc), WithExecutor(fe)).Run(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, casegen.ErrCompileFailure)
	var cerr *compiler.Error
	assert.True(t, errors.As(err, &cerr))
	assert.Empty(t, fe.inputs)
}

func TestRunExecutesInGenerationOrder(t *testing.T) {
	fe := &fakeExecutor{reply: func(n int, input string) runner.Outcome {
		if n%2 == 0 {
			return runner.Outcome{Kind: runner.KindLaunchFailure, Reason: "boom"}
		}
		return runner.Outcome{Kind: runner.KindSuccess, Stdout: strconv.Itoa(len(input))}
	}}
	cfg := Config{
		Request: casegen.GenerationRequest{Category: casegen.CategoryText, Count: 10, Bounds: casegen.DefaultBounds()},
		Seed:    99,
		TempDir: t.TempDir(),
	}

	result, err := New(cfg, nil, WithCompiler(&fakeCompiler{}), WithExecutor(fe)).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, fe.inputs, 10)
	require.Len(t, result.Suite, 5)
	require.Len(t, result.Warnings, 5)

	for k, tc := range result.Suite {
		assert.Equal(t, fe.inputs[2*k], tc.Input)
		assert.Equal(t, strconv.Itoa(len(tc.Input)), tc.Output)
	}
	for k, w := range result.Warnings {
		assert.Equal(t, 2*k+2, w.Index)
		assert.ErrorIs(t, w, casegen.ErrLaunchFailure)
	}
}

func TestRunStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fe := &fakeExecutor{}
	fe.reply = func(int, string) runner.Outcome {
		cancel()
		return runner.Outcome{Kind: runner.KindSuccess, Stdout: "x"}
	}
	cfg := Config{
		Request: casegen.GenerationRequest{Category: casegen.CategoryScalar, Count: 5, Bounds: casegen.DefaultBounds()},
		TempDir: t.TempDir(),
	}

	_, err := New(cfg, nil, WithCompiler(&fakeCompiler{}), WithExecutor(fe)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, fe.inputs, 1)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, `3\n1 2 3`, Preview("3\n1 2 3"))
	assert.Equal(t, strings.Repeat("a", 70), Preview(strings.Repeat("a", 70)))
	assert.Equal(t, strings.Repeat("a", 70)+"...", Preview(strings.Repeat("a", 71)))
	assert.Equal(t, "", Preview(""))
}
