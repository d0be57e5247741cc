package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

func patientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Manage patients",
	}

	var search string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patients, optionally filtered by name or phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, err := a.patients.List(cmd.Context(), a.session, search)
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			printPatients(out(cmd), patients)
			return nil
		},
	}
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Name or phone fragment")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, err := a.patients.Get(cmd.Context(), a.session, model.ID(args[0]))
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			printPatients(out(cmd), []model.Patient{*patient})
			return nil
		},
	}

	var createInput model.PatientInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, err := a.patients.Create(cmd.Context(), a.session, createInput)
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			fmt.Fprintf(out(cmd), "Created patient %s\n", patient.ID)
			return nil
		},
	}
	patientFlags(createCmd, &createInput)

	var updateInput model.PatientInput
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a patient's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, err := a.patients.Update(cmd.Context(), a.session, model.ID(args[0]), updateInput)
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			fmt.Fprintf(out(cmd), "Updated patient %s\n", patient.ID)
			return nil
		},
	}
	patientFlags(updateCmd, &updateInput)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.patients.Delete(cmd.Context(), a.session, model.ID(args[0])); err != nil {
				return a.check(cmd.Context(), err)
			}
			fmt.Fprintf(out(cmd), "Deleted patient %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}

func patientFlags(cmd *cobra.Command, input *model.PatientInput) {
	cmd.Flags().StringVar(&input.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&input.Gender, "gender", "", "Gender")
	cmd.Flags().IntVar(&input.Age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "Phone number")
}
