package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"ledger/internal/database"
	"ledger/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage schema migrations",
	Long: `Apply or roll back the versioned SQL migrations (postgres), or
auto-migrate the schema for mysql and sqlite.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbManager, err := openManager()
		if err != nil {
			return err
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			return err
		}
		logger.Get().Info("Migrations applied successfully")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [N]",
	Short: "Roll back N migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			steps = n
		}

		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration down failed: %w", err)
			}
			logger.Get().Infof("Rolled back %d migration(s)", steps)
			return nil
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

// withMigrator runs fn against a golang-migrate instance for the configured database.
func withMigrator(fn func(*migrate.Migrate) error) error {
	dbManager, err := openManager()
	if err != nil {
		return err
	}
	defer dbManager.Close()

	m, err := dbManager.NewMigrator()
	if err != nil {
		return err
	}
	defer database.CloseMigrator(m)

	return fn(m)
}
