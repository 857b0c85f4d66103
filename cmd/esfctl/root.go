package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"esfhub/internal/config"
	"esfhub/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "esfctl",
	Short: "Operations CLI for the ESF service",
	Long: `esfctl runs maintenance tasks against the ESF database and the GNS gateway:
schema migrations, pulling and synchronizing invoices, and spreadsheet export.

Configuration is read from ESF_* environment variables and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.Setup(loaded.Log); err != nil {
			return fmt.Errorf("failed to set up logger: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("esfctl")
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd, syncCmd, exportCmd)
}
