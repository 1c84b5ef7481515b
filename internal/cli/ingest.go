package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carbonledger/internal/ingest"
)

// newIngestCmd creates the "ingest" command. Records that fail are
// skipped; earlier records stay committed, so a failing run leaves
// partial, durable state.
func newIngestCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest raw activity records from a CSV file",
		Long: `Ingest raw activity records from a CSV file.

Each row names an activity (air travel, electricity, or purchased goods
and services) with its activity-specific columns. Every valid row
becomes one emission fact in the ledger.`,
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

			result := a.computer.IngestRows(cmd.Context(), rows)
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d record(s), %d failed\n",
				result.Processed, result.Failed)
			if !result.Success {
				return fmt.Errorf("%d of %d records failed", result.Failed, len(rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the records CSV file")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
