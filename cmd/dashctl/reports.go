package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

func reportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and export health reports",
	}

	var listFlags windowFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the reports of the stored window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.workspace(ctx)
			if err != nil {
				return a.check(ctx, err)
			}
			if err := listFlags.apply(ctx, ws, a.loc); err != nil {
				return a.check(ctx, err)
			}

			overview, err := a.reports.Overview(ctx, a.session, ws)
			if err != nil {
				return a.check(ctx, err)
			}
			printOverview(out(cmd), overview)
			return nil
		},
	}
	listFlags.register(listCmd)

	var (
		exportFlags windowFlags
		dir         string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the reports of the window to an xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.workspace(ctx)
			if err != nil {
				return a.check(ctx, err)
			}

			// Explicit dates export that range without moving the stored window
			w := ws.Window()
			if exportFlags.start != "" || exportFlags.end != "" {
				start, end := exportFlags.start, exportFlags.end
				if start == "" {
					start = w.StartParam()
				}
				if end == "" {
					end = w.EndParam()
				}
				w, err = window.Parse(start, end, a.loc)
				if err != nil {
					return a.check(ctx, err)
				}
			}

			result, err := a.reports.Export(ctx, a.session, w)
			if err != nil {
				return a.check(ctx, err)
			}

			path := filepath.Join(dir, result.File.Name)
			if err := os.WriteFile(path, result.File.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(out(cmd), "Wrote %d rows to %s\n", result.File.Rows, path)
			return nil
		},
	}
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the file to")

	patientCmd := &cobra.Command{
		Use:   "patient <patient-id>",
		Short: "List every report of one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reports, err := a.reports.PatientReports(ctx, a.session, model.ID(args[0]))
			if err != nil {
				return a.check(ctx, err)
			}
			printReports(out(cmd), reports)
			return nil
		},
	}

	cmd.AddCommand(listCmd, exportCmd, patientCmd)
	return cmd
}
