// Package cmd provides the ledgerctl administration commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/database"
	"ledger/internal/logger"
)

var env string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Administer the ledger database",
	Long: `ledgerctl manages the ledger store outside the HTTP API.

Database settings come from the same DB_* environment variables (or .env)
the API server reads.

Example:
  ledgerctl migrate up
  ledgerctl seed --file seed.yaml
  ledgerctl token --user user-1 --role admin`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(env)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "logger mode: development or production")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tokenCmd)
}

// openManager connects to the configured database.
func openManager() (*database.Manager, error) {
	dbConfig, err := database.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	return dbManager, nil
}
