package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pkg.jsn.cam/casegen/internal/suite"
	"pkg.jsn.cam/casegen/internal/verify"
	"pkg.jsn.cam/casegen/pkg/casegen"
)

var verifyFlags struct {
	source      string
	problem     string
	summaryPath string
}

// errRejected makes the process exit non-zero when a candidate fails.
var errRejected = errors.New("solution rejected")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Judge a solution against a stored or written suite",
	Example: `  casegen verify --source attempt.cpp --store suites.db --problem 1234
  casegen verify --source attempt.cpp --suite test_cases/test_cases_summary.json`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.source, "source", "", "Solution source file (required)")
	f.StringVar(&verifyFlags.problem, "problem", "", "Problem id of a stored suite")
	f.StringVar(&verifyFlags.summaryPath, "suite", "", "Path to a "+suite.SummaryFile)
	verifyCmd.MarkFlagRequired("source")
	verifyCmd.MarkFlagsOneRequired("problem", "suite")
	verifyCmd.MarkFlagsMutuallyExclusive("problem", "suite")
}

func loadCases() (casegen.Suite, error) {
	if verifyFlags.summaryPath != "" {
		return suite.ReadSummary(verifyFlags.summaryPath)
	}
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	rec, err := store.Load(verifyFlags.problem)
	if err != nil {
		return nil, err
	}
	return rec.TestCases, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cases, err := loadCases()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verdict, err := verify.New(logger).Verify(ctx, verify.Request{
		Source:         verifyFlags.source,
		Toolchain:      cfg.Toolchain.Compiler,
		ToolchainArgs:  cfg.Toolchain.Args,
		CompileTimeout: cfg.GetCompileTimeout(),
		ExecTimeout:    cfg.GetExecTimeout(),
		Suite:          cases,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", verdict.Status, verdict.Message)
	switch verdict.Status {
	case verify.StatusCompilationError:
		if verdict.CompileOutput != "" {
			fmt.Fprintln(out, verdict.CompileOutput)
		}
	case verify.StatusWrongAnswer:
		fmt.Fprintf(out, "Expected: %q\nGot:      %q\n", verdict.Expected, verdict.Actual)
	}
	if !verdict.Accepted() {
		return errRejected
	}
	fmt.Fprintf(out, "Passed %d/%d\n", verdict.Passed, verdict.Total)
	return nil
}
