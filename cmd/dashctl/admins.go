package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

func adminsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage administrator accounts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List administrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			admins, err := a.admins.List(cmd.Context(), a.session)
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			printAdmins(out(cmd), admins)
			return nil
		},
	}

	var createInput model.AdminInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.admins.Create(cmd.Context(), a.session, createInput)
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			fmt.Fprintf(out(cmd), "Created administrator %s (%s)\n", admin.Username, admin.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&createInput.Username, "username", "", "Username")
	createCmd.Flags().StringVar(&createInput.Password, "password", "", "Password")

	var updateInput model.AdminInput
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename an administrator or reset the password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.admins.Update(cmd.Context(), a.session, model.ID(args[0]), updateInput)
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			fmt.Fprintf(out(cmd), "Updated administrator %s\n", admin.ID)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&updateInput.Username, "username", "", "Username")
	updateCmd.Flags().StringVar(&updateInput.Password, "password", "", "New password (unchanged when empty)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.admins.Delete(cmd.Context(), a.session, model.ID(args[0])); err != nil {
				return a.check(cmd.Context(), err)
			}
			fmt.Fprintf(out(cmd), "Deleted administrator %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}
