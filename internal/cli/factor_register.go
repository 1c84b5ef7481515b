package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonledger/internal/ingest"
)

func newFactorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factor",
		Short: "Manage emission factors",
	}
	cmd.AddCommand(newFactorRegisterCmd())
	return cmd
}

// newFactorRegisterCmd creates the "factor register" subcommand. It
// reads factor rows from a CSV file and registers them one by one;
// rows that fail (duplicates, malformed values) are skipped and
// reported without aborting the batch.
func newFactorRegisterCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register emission factors from a CSV file",
		Long: `Register emission factors from a CSV file.

Expected columns: Activity, Lookup identifiers, Unit, CO2e, Scope, Category.
Category may be empty. A factor already registered for the same
(activity, lookup identifier) pair is rejected and left unchanged.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := ingest.ReadRowsFile(csvPath)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			result := a.computer.RegisterFactorRows(cmd.Context(), rows)
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %d factor(s), %d failed\n",
				result.Processed, result.Failed)
			if !result.Success {
				return fmt.Errorf("%d of %d factor rows failed", result.Failed, len(rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the factors CSV file")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
