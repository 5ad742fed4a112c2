// Package cli implements the ledgerlite command tree.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ledgerlite/ledgerlite/internal/config"
	"github.com/ledgerlite/ledgerlite/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the ledgerlite CLI.
// It wires up logging and the backup, get, export, status, tui, and
// config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ledgerlite",
		Short:   "Offline-first personal finance tracker",
		Long:    "ledgerlite: track expenses, income, and cards with a local backup that keeps working when the cloud does not",
		Version: ver,
		Example: rootCmdExample,
		// Runtime errors are reported once by main; a usage dump on a
		// failed live query would bury the actual message.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			loggingCfg := cfg.Logging
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				loggingCfg.Level = "debug"
				loggingCfg.Format = "console"
				loggingCfg.File = ""
			}
			if initErr := config.InitLogger(loggingCfg); initErr != nil {
				cmd.PrintErrf("Warning: log file unavailable, logging to stderr: %v\n", initErr)
			}
			logger = logging.ComponentLogger(config.GetLogger(), "cli")

			cmd.SetContext(logging.WithContext(cmd.Context(), config.GetLogger()))
			setConfig(cmd, cfg)

			logger.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file path (default ~/.ledgerlite/config.yaml)")
	cmd.PersistentFlags().StringP("user", "u", "", "user id the command operates on")

	cmd.AddCommand(
		newBackupCmd(), newGetCmd(), newExportCmd(),
		newStatusCmd(), newTUICmd(), newConfigCmd(),
	)
	return cmd
}

const rootCmdExample = `  # Save a full local backup of your data while online
  ledgerlite backup save --user u123

  # Inspect the stored backup
  ledgerlite backup status --user u123

  # Read your expenses, falling back to the backup when offline
  ledgerlite get expenses --user u123

  # Export everything to JSON with provenance
  ledgerlite export --user u123 --format json --out ledger.json

  # Watch connectivity and session state live
  ledgerlite tui --user u123`
