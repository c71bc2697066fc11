package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

func newBootstrapCmd(a *app) *cobra.Command {
	var (
		p        user.Profile
		password string
	)

	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create or promote the first super admin",
		Long: `Creates a super admin account, or promotes the account with the given
email when it already exists. Without --password the configured default
password is set and must be changed at first sign-in.`,
		Example: `  invoicectl bootstrap-admin --email root@example.com --first-name Root --last-name Admin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.users.Bootstrap(cmd.Context(), p, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.FullName(), u.Email, u.Role.Label())

			if u.ForcePasswordChange {
				fmt.Fprintln(cmd.OutOrStdout(), "Sign in with the default password to set a new one.")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&p.Email, "email", "", "account email")
	cmd.Flags().StringVar(&p.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&p.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&p.Department, "department", "", "department")
	cmd.Flags().StringVar(&p.Designation, "designation", "", "designation")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
