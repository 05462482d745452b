package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pkg.jsn.cam/casegen/internal/config"
	"pkg.jsn.cam/casegen/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	storePath  string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "casegen",
	Short: "Generate test cases by running a reference solution",
	Long: `casegen compiles a reference solution, feeds it generated inputs of
increasing complexity and records every (input, output) pair it answers
within the time limit.

Suites can be written to disk, zipped, kept in a local store per problem
and replayed against other solutions with "casegen verify".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Path = storePath
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(logging.Options{Level: level, Development: cfg.Logging.Development})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "casegen.yaml", "Config file (YAML); missing file means defaults")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Suite store database (or set CASEGEN_STORE)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(suitesCmd)
	rootCmd.AddCommand(verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
