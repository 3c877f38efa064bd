package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/export"
	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

var (
	reportDepartment string
	reportJSON       bool
	reportXLSX       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise document counts and retention status",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		rep, err := engine.Report(cmd.Context(), reportDepartment)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if reportXLSX != "" {
			recs, err := engine.ExpiringSoon(cmd.Context(), cfg.Alerts.AlertDaysBeforeDelete, reportDepartment)
			if err != nil {
				return err
			}
			if err := export.WriteReport(reportXLSX, rep, recs); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Report written to %s\n", reportXLSX)
			return nil
		}
		if reportJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		printReport(out, rep)
		return nil
	},
}

func printReport(out io.Writer, rep *retention.Report) {
	fmt.Fprintln(out, titleStyle.Render("Retention report "+shortTime(rep.GeneratedAt)))
	fmt.Fprintf(out, "Policy: archive after %d days, delete after %d days\n", rep.Policy.ArchiveAfterDays, rep.Policy.DeleteAfterDays)

	depts := make([]string, 0, len(rep.Departments))
	for d := range rep.Departments {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	for _, d := range depts {
		r := rep.Departments[d]
		fmt.Fprintln(out, headingStyle.Render(d))
		fmt.Fprintf(out, "  Working: %s files, %s", count(r.Working.Count), humanBytes(r.Working.TotalSize))
		if r.Working.OldFiles > 0 {
			fmt.Fprint(out, warnStyle.Render(fmt.Sprintf("  (%s due for archive)", count(r.Working.OldFiles))))
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Archive: %s files, %s", count(r.Archive.Count), humanBytes(r.Archive.TotalSize))
		if r.Archive.Expiring > 0 {
			fmt.Fprint(out, urgentStyle.Render(fmt.Sprintf("  (%s expiring within 7 days)", count(r.Archive.Expiring))))
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Final:   %s files, %s\n", count(r.Final.Count), humanBytes(r.Final.TotalSize))
	}
	if rep.Errors > 0 {
		fmt.Fprintf(out, "⚠ %s file(s) could not be read\n", count(rep.Errors))
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportDepartment, "department", "d", "", "only report one department")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "write the report to an Excel workbook")
}
