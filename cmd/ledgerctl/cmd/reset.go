package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every ledger table and recreate the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return fmt.Errorf("reset deletes all ledger data; rerun with --yes to confirm")
		}

		dbManager, err := openManager()
		if err != nil {
			return err
		}
		defer dbManager.Close()

		if err := dbManager.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")
}
