package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/casegen/internal/config"
	"pkg.jsn.cam/casegen/internal/harness"
	"pkg.jsn.cam/casegen/internal/suite"
	"pkg.jsn.cam/casegen/pkg/casegen"
	"pkg.jsn.cam/casegen/pkg/generator"
	"pkg.jsn.cam/casegen/pkg/storage"
)

var generateFlags struct {
	source         string
	category       string
	count          int
	output         string
	zip            bool
	compiler       string
	compileArgs    string
	timeout        time.Duration
	compileTimeout time.Duration
	seed           uint64
	problem        string
	progress       bool

	minValue, maxValue int64
	minSize, maxSize   int
	minNodes, maxNodes int
	maxEdges           int
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compile a reference solution and generate a test suite",
	Example: `  casegen generate --source sol.cpp --type array --count 40 --zip
  casegen generate --source sol.cpp --type graph --max-nodes 500 --store suites.db --problem 1234`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.source, "source", "", "Reference solution source file (required)")
	f.StringVar(&generateFlags.category, "type", "", "Input type (required):\n"+typeHelp())
	f.IntVar(&generateFlags.count, "count", 0, "Number of inputs to generate (0 uses the type's default)")
	f.StringVar(&generateFlags.output, "output", "test_cases", "Output directory")
	f.BoolVar(&generateFlags.zip, "zip", false, "Also write <output>.zip")
	f.StringVar(&generateFlags.compiler, "compiler", "g++", "Toolchain executable")
	f.StringVar(&generateFlags.compileArgs, "compile-args", strings.Join(config.DefaultArgs, " "), "Toolchain arguments; {source} and {output} are substituted")
	generateFlags.timeout = 5 * time.Second
	generateFlags.compileTimeout = 30 * time.Second
	f.Var((*timeoutValue)(&generateFlags.timeout), "timeout", "Time limit per test case (seconds, or a duration such as 500ms)")
	f.Var((*timeoutValue)(&generateFlags.compileTimeout), "compile-timeout", "Time limit for compilation (seconds, or a duration)")
	f.Uint64Var(&generateFlags.seed, "seed", 0, "Generator seed (0 picks one at random)")
	f.StringVar(&generateFlags.problem, "problem", "", "Problem id to save the suite under (requires a store)")
	f.BoolVar(&generateFlags.progress, "progress", false, "Show a progress bar")

	defaults := casegen.DefaultBounds()
	f.Int64Var(&generateFlags.minValue, "min-value", defaults.MinValue, "Smallest scalar/array value")
	f.Int64Var(&generateFlags.maxValue, "max-value", defaults.MaxValue, "Largest scalar/array value")
	f.IntVar(&generateFlags.minSize, "min-size", defaults.MinSize, "Smallest array/text length")
	f.IntVar(&generateFlags.maxSize, "max-size", defaults.MaxSize, "Largest array/text length")
	f.IntVar(&generateFlags.minNodes, "min-nodes", defaults.MinNodes, "Smallest graph node count")
	f.IntVar(&generateFlags.maxNodes, "max-nodes", defaults.MaxNodes, "Largest graph node count")
	f.IntVar(&generateFlags.maxEdges, "max-edges", defaults.MaxEdges, "Largest graph edge count")

	generateCmd.MarkFlagRequired("source")
	generateCmd.MarkFlagRequired("type")
}

// typeHelp lists every registered input type with its format.
func typeHelp() string {
	var sb strings.Builder
	for _, c := range generator.List() {
		g, err := generator.Get(c, casegen.DefaultBounds())
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "  %-7s %s\n", c, g.Description())
	}
	return strings.TrimRight(sb.String(), "\n")
}

// timeoutValue is a duration flag that also accepts whole seconds.
type timeoutValue time.Duration

func (v *timeoutValue) Set(s string) error {
	d, err := config.ParseTimeout(s)
	if err != nil {
		return err
	}
	*v = timeoutValue(d)
	return nil
}

func (v *timeoutValue) String() string { return time.Duration(*v).String() }

func (v *timeoutValue) Type() string { return "duration" }

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(changed func(name string) bool, c *config.Config) {
	if changed("type") {
		c.Generate.Category = generateFlags.category
	}
	if changed("count") {
		c.Generate.Count = generateFlags.count
	}
	if changed("output") {
		c.Output.Dir = generateFlags.output
	}
	if changed("zip") {
		c.Output.Zip = generateFlags.zip
	}
	if changed("compiler") {
		c.Toolchain.Compiler = generateFlags.compiler
	}
	if changed("compile-args") {
		c.Toolchain.Args = strings.Fields(generateFlags.compileArgs)
	}
	if changed("timeout") {
		c.Toolchain.ExecTimeout = generateFlags.timeout.String()
	}
	if changed("compile-timeout") {
		c.Toolchain.CompileTimeout = generateFlags.compileTimeout.String()
	}
	if changed("seed") {
		c.Generate.Seed = generateFlags.seed
	}

	b := &c.Generate.Bounds
	if changed("min-value") {
		b.MinValue = generateFlags.minValue
	}
	if changed("max-value") {
		b.MaxValue = generateFlags.maxValue
	}
	if changed("min-size") {
		b.MinSize = generateFlags.minSize
	}
	if changed("max-size") {
		b.MaxSize = generateFlags.maxSize
	}
	if changed("min-nodes") {
		b.MinNodes = generateFlags.minNodes
	}
	if changed("max-nodes") {
		b.MaxNodes = generateFlags.maxNodes
	}
	if changed("max-edges") {
		b.MaxEdges = generateFlags.maxEdges
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyGenerateFlags(cmd.Flags().Changed, cfg)
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, casegen.ErrUnknownCategory) {
			return fmt.Errorf("invalid configuration: %w\navailable types:\n%s", err, typeHelp())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	req, err := cfg.Request()
	if err != nil {
		return err
	}
	if generateFlags.problem != "" && cfg.Store.Path == "" {
		return fmt.Errorf("--problem needs a suite store (--store or CASEGEN_STORE)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []harness.Option
	var bar *progressbar.ProgressBar
	if generateFlags.progress {
		bar = progressbar.NewOptions(req.Count,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Running test cases"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts = append(opts, harness.WithObserver(func(r harness.CaseReport) {
			_ = bar.Add(1)
		}))
	}

	h := harness.New(harness.Config{
		Source:         generateFlags.source,
		Toolchain:      cfg.Toolchain.Compiler,
		ToolchainArgs:  cfg.Toolchain.Args,
		CompileTimeout: cfg.GetCompileTimeout(),
		ExecTimeout:    cfg.GetExecTimeout(),
		Request:        req,
		Seed:           cfg.Generate.Seed,
	}, logger, opts...)

	result, err := h.Run(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	writer := suite.NewWriter(cfg.Output.Dir, logger)
	report, err := writer.Write(result.Suite)
	if err != nil {
		return err
	}
	for _, w := range report.Warnings {
		logger.Warn("Failed to write test file", zap.Error(w))
	}

	if cfg.Output.Zip {
		path, err := writer.Archive()
		if err != nil {
			logger.Error("Failed to create zip archive", zap.Error(err))
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Archive: %s\n", path)
		}
	}

	if generateFlags.problem != "" {
		if err := saveSuite(result); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d of %d test cases in %s (seed %d)\n",
		len(result.Suite), result.Attempted, report.Dir, result.Seed)
	return nil
}

func saveSuite(result *harness.Result) error {
	store, err := storage.OpenSuiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Save(storage.Record{
		ProblemID: generateFlags.problem,
		RunID:     result.RunID,
		Category:  result.Category,
		Seed:      result.Seed,
		TestCases: result.Suite,
	})
	if err != nil {
		return err
	}
	logger.Info("Saved suite",
		zap.String("problem", rec.ProblemID),
		zap.String("run_id", rec.RunID),
		zap.Int("cases", len(rec.TestCases)))
	return nil
}
