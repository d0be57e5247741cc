package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/health-dashboard/internal/view"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
)

// windowFlags are the --start and --end flags shared by window-scoped commands
type windowFlags struct {
	start string
	end   string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Window start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "Window end date (YYYY-MM-DD)")
}

// apply moves the stored window when either flag is set
func (f *windowFlags) apply(ctx context.Context, ws *view.Workspace, loc *time.Location) error {
	start, err := parseFlagDate(f.start, "startDate", loc)
	if err != nil {
		return err
	}
	end, err := parseFlagDate(f.end, "endDate", loc)
	if err != nil {
		return err
	}
	_, err = ws.Update(ctx, start, end)
	return err
}

func parseFlagDate(value, field string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(window.DateLayout, value, loc)
	if err != nil {
		return nil, &window.ValidationError{Field: field, Message: window.MessageInvalidDate}
	}
	return &t, nil
}

func dashboardCmd(a *app) *cobra.Command {
	var flags windowFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for the stored window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.workspace(ctx)
			if err != nil {
				return a.check(ctx, err)
			}
			if err := flags.apply(ctx, ws, a.loc); err != nil {
				return a.check(ctx, err)
			}

			dashboard, err := a.dashboard.Load(ctx, a.session, ws)
			if err != nil {
				return a.check(ctx, err)
			}

			printDashboard(out(cmd), dashboard, a.loc)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func windowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Show or change the stored date window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd.Context())
			if err != nil {
				return a.check(cmd.Context(), err)
			}
			printWindow(out(cmd), ws.Window())
			return nil
		},
	}

	var flags windowFlags
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Move one or both window boundaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if flags.start == "" && flags.end == "" {
				return fmt.Errorf("set --start, --end or both")
			}
			ws, err := a.workspace(ctx)
			if err != nil {
				return a.check(ctx, err)
			}
			if err := flags.apply(ctx, ws, a.loc); err != nil {
				return a.check(ctx, err)
			}
			printWindow(out(cmd), ws.Window())
			return nil
		},
	}
	flags.register(setCmd)

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default seven day window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.workspace(ctx)
			if err != nil {
				return a.check(ctx, err)
			}
			w, err := ws.Reset(ctx, a.registry.Today())
			if err != nil {
				return a.check(ctx, err)
			}
			printWindow(out(cmd), w)
			return nil
		},
	}

	cmd.AddCommand(setCmd, resetCmd)
	return cmd
}
