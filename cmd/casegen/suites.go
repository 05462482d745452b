package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pkg.jsn.cam/casegen/internal/harness"
	"pkg.jsn.cam/casegen/pkg/storage"
)

var suitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "Manage stored suites",
}

var suitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored suites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored suites")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PROBLEM\tTYPE\tCASES\tSEED\tCREATED")
		for _, rec := range records {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
				rec.ProblemID, rec.Category, len(rec.TestCases), rec.Seed, humanize.Time(rec.CreatedAt))
		}
		return tw.Flush()
	},
}

var suitesShowCmd = &cobra.Command{
	Use:   "show <problem>",
	Short: "Show the cases stored for a problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Load(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Problem:  %s\n", rec.ProblemID)
		fmt.Fprintf(out, "Run:      %s\n", rec.RunID)
		fmt.Fprintf(out, "Type:     %s\n", rec.Category)
		fmt.Fprintf(out, "Seed:     %d\n", rec.Seed)
		fmt.Fprintf(out, "Created:  %s (%s)\n", rec.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(rec.CreatedAt))
		fmt.Fprintf(out, "Cases:    %d (%d samples)\n", len(rec.TestCases), len(rec.TestCases.Samples()))
		for i, tc := range rec.TestCases {
			marker := ""
			if tc.IsSample {
				marker = " (sample)"
			}
			fmt.Fprintf(out, "  %d%s: %s -> %s\n", i+1, marker, harness.Preview(tc.Input), harness.Preview(tc.Output))
		}
		return nil
	},
}

var suitesDeleteCmd = &cobra.Command{
	Use:   "delete <problem>",
	Short: "Delete the cases stored for a problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Test cases deleted successfully for %s\n", args[0])
		return nil
	},
}

var suitesPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every stored suite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Purge()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d stored suites\n", n)
		return nil
	},
}

func init() {
	suitesCmd.AddCommand(suitesListCmd)
	suitesCmd.AddCommand(suitesPurgeCmd)
	suitesCmd.AddCommand(suitesShowCmd)
	suitesCmd.AddCommand(suitesDeleteCmd)
}

func openStore() (*storage.SuiteStore, error) {
	if cfg.Store.Path == "" {
		return nil, fmt.Errorf("no suite store configured (use --store or CASEGEN_STORE)")
	}
	return storage.OpenSuiteStore(cfg.Store.Path)
}
