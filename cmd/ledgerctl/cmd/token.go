package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/middleware"
)

var (
	tokenUser string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for a user",
	Long: `Issue a signed access token using JWT_SECRET and JWT_EXPIRES_IN.

Example:
  ledgerctl token --user user-1 --role admin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUser == "" {
			return fmt.Errorf("--user is required")
		}
		if tokenRole != middleware.RoleUser && tokenRole != middleware.RoleAdmin {
			return fmt.Errorf("--role must be %q or %q", middleware.RoleUser, middleware.RoleAdmin)
		}

		tok, err := middleware.GenerateAccessToken(tokenUser, tokenRole)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user ID to place in the token subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", middleware.RoleUser, "role claim: user or admin")
}
