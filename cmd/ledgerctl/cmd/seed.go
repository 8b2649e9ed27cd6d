package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ledger/internal/seed"
	"ledger/internal/services"
	"ledger/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create balances and categories from a YAML file",
	Long: `Create a user's starting balances and categories from a YAML file.
See seed.example.yaml for the format.

Example:
  ledgerctl seed --file seed.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fh, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer fh.Close()

		f, err := seed.Load(fh)
		if err != nil {
			return err
		}

		dbManager, err := openManager()
		if err != nil {
			return err
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			return err
		}

		ledger := store.New(dbManager.DB())
		res, err := seed.Apply(cmd.Context(), f, services.NewBalanceService(ledger), services.NewCategoryService(ledger))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d balance(s) and %d categories for %s\n", res.Balances, res.Categories, f.User)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seed.yaml", "seed file path")
}
