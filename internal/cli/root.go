// Package cli implements the carbonledger command tree.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/carbonledger/internal/config"
	"github.com/rshade/carbonledger/internal/logging"
)

// Package-level state shared by subcommands, set by the root
// PersistentPreRunE.
//
//nolint:gochecknoglobals // Required for zerolog/config integration across subcommands.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

// NewRootCmd creates the root Cobra command for the carbonledger CLI.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "carbonledger",
		Short:   "Carbon emission ledger",
		Long:    "carbonledger: convert activity usage into CO2e emission facts and query the ledger",
		Version: ver,
		Example: `  # Register emission factors from a CSV file
  carbonledger factor register --csv factors.csv

  # Ingest raw activity records
  carbonledger ingest --csv records.csv

  # Query the ledger
  carbonledger emissions list --scope 3 --sort desc --grouped

  # Run the HTTP API
  carbonledger serve --listen 127.0.0.1:8090`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded

			if db, _ := cmd.Flags().GetString("db"); db != "" {
				cfg.Storage.Path = db
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Logging.Level = "debug"
				cfg.Logging.Format = "console"
			}

			base := logging.New(cfg.LoggerConfig())
			logger = logging.ComponentLogger(base, "cli")
			cmd.SetContext(logging.WithContext(cmd.Context(), base))

			logger.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "path to config file")
	cmd.PersistentFlags().String("db", "", "path to the ledger database (overrides config)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newFactorCmd(),
		newIngestCmd(),
		newEmissionsCmd(),
		newServeCmd(),
	)

	return cmd
}
