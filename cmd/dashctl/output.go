package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/vcscsvcscs/health-dashboard/internal/export"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/internal/stats"
	"github.com/vcscsvcscs/health-dashboard/internal/window"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// count renders a dashboard figure; zero shows as "-"
func count(n int) string {
	if n == 0 {
		return export.Missing
	}
	return strconv.Itoa(n)
}

func printWindow(w io.Writer, win window.Window) {
	fmt.Fprintf(w, "Window:\t%s to %s\n", win.StartParam(), win.EndParam())
}

func printDashboard(w io.Writer, d *service.Dashboard, loc *time.Location) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Window:\t%s to %s\n", d.Window.StartDate, d.Window.EndDate)
	if d.Summary != nil {
		fmt.Fprintf(tw, "High sugar today:\t%s\n", count(d.Summary.HighSugarToday))
		fmt.Fprintf(tw, "Low sugar today:\t%s\n", count(d.Summary.LowSugarToday))
		fmt.Fprintf(tw, "High pressure today:\t%s\n", count(d.Summary.HighPressureToday))
		fmt.Fprintf(tw, "Low pressure today:\t%s\n", count(d.Summary.LowPressureToday))
	}
	fmt.Fprintf(tw, "Critical patients:\t%s\n", count(d.CriticalPatients))
	fmt.Fprintf(tw, "Critical sugar:\t%s\n", count(d.CriticalSugar))
	fmt.Fprintf(tw, "Critical pressure:\t%s\n", count(d.CriticalPressure))
	fmt.Fprintf(tw, "Patients reporting:\t%s\n", count(d.UniquePatients))
	fmt.Fprintf(tw, "Reports:\t%s\n", count(d.TotalReports))
	tw.Flush()

	if len(d.FlaggedReports) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flagged reports:")
		printRows(w, export.BuildRows(d.FlaggedReports, loc))
	}
}

func printOverview(w io.Writer, o *service.ReportOverview) {
	if o.Empty {
		fmt.Fprintln(w, o.Message)
		return
	}

	printRows(w, o.Rows)
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintf(tw, "Sugar (critical/high/low):\t%d/%d/%d\n", o.Counts.CriticalSugar, o.Counts.HighSugar, o.Counts.LowSugar)
	fmt.Fprintf(tw, "Pressure (critical/high/low):\t%d/%d/%d\n", o.Counts.CriticalPressure, o.Counts.HighPressure, o.Counts.LowPressure)
	fmt.Fprintf(tw, "Patients:\t%d\n", o.UniquePatients)
	fmt.Fprintf(tw, "Critical patients:\t%d\n", o.CriticalPatients)
	tw.Flush()
}

func printRows(w io.Writer, rows []export.Row) {
	tw := newTable(w)
	for i, h := range export.Header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.PatientName, r.BloodSugar, r.BloodSugarStatus, r.Pressure, r.PressureStatus, r.MealTime, r.RecordedAt)
	}
	tw.Flush()
}

func printReports(w io.Writer, reports []model.Report) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSUGAR\tSUGAR STATUS\tPRESSURE\tPRESSURE STATUS\tRECORDED AT")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			export.FormatNumber(r.BloodSugar),
			stats.DisplayStatus(r.BloodSugarStatus),
			export.FormatPressure(r.Systolic, r.Diastolic),
			stats.DisplayStatus(r.SystolicStatus),
			r.RecordedAt,
		)
	}
	tw.Flush()
}

func printPatients(w io.Writer, patients []model.Patient) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tGENDER\tAGE\tPHONE")
	for _, p := range patients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Gender, p.Age, p.Phone)
	}
	tw.Flush()
}

func printAdmins(w io.Writer, admins []model.AdminAccount) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tUSERNAME")
	for _, a := range admins {
		fmt.Fprintf(tw, "%s\t%s\n", a.ID, a.Username)
	}
	tw.Flush()
}
