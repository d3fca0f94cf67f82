package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect the active account",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balance",
		Short: "Show the active account's NEAR balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext()
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			account := a.Auth.Account()
			if account == nil {
				return fmt.Errorf("no active account; set NEAR_ACCOUNT_ID")
			}

			fmt.Printf("%s: %sN\n", account.ID, account.BalanceInNear())
			return nil
		},
	})
	return cmd
}
