package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

var alertsDays int

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show deletion alerts grouped by department",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		days := cfg.Alerts.AlertDaysBeforeDelete
		if cmd.Flags().Changed("days") {
			days = alertsDays
		}
		recs, err := engine.ExpiringSoon(cmd.Context(), days, "")
		if err != nil {
			return err
		}
		renderAlerts(cmd.OutOrStdout(), recs, days)
		return nil
	},
}

// renderAlerts prints one box per department listing its expiring files.
func renderAlerts(out io.Writer, recs []retention.ExpiringRecord, days int) {
	if len(recs) == 0 {
		fmt.Fprintf(out, "✓ No files expiring within %d days\n", days)
		return
	}
	title := fmt.Sprintf("Retention alert: %s file(s) will be deleted within %d days", count(len(recs)), days)
	if cfg != nil && cfg.ClientName != "" {
		title = cfg.ClientName + " | " + title
	}
	fmt.Fprintln(out, titleStyle.Render(title))

	grouped := retention.GroupByDepartment(recs)
	depts := make([]string, 0, len(grouped))
	for d := range grouped {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	for _, d := range depts {
		var b strings.Builder
		b.WriteString(headingStyle.Render(d))
		for _, r := range grouped[d] {
			fmt.Fprintf(&b, "\n%s  %s", r.Name, daysLeft(r.DaysUntilDeletion))
		}
		fmt.Fprintln(out, boxStyle.Render(b.String()))
	}
	fmt.Fprintln(out, mutedStyle.Render("Run `docuflow keep <file>` to retain a file past its deletion date."))
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.Flags().IntVar(&alertsDays, "days", 7, "alert window in days (default alerts.alert_days_before_delete)")
}
