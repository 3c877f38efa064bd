package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	expiringDays       int
	expiringDepartment string
	expiringJSON       bool
)

var expiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List archived files that will be deleted soon",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		days := cfg.Alerts.AlertDaysBeforeDelete
		if cmd.Flags().Changed("days") {
			days = expiringDays
		}
		recs, err := engine.ExpiringSoon(cmd.Context(), days, expiringDepartment)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if expiringJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}
		if len(recs) == 0 {
			fmt.Fprintf(out, "✓ No files expiring within %d days\n", days)
			return nil
		}
		fmt.Fprintf(out, "⚠ %s file(s) expiring within %d days\n", count(len(recs)), days)
		for _, r := range recs {
			fmt.Fprintf(out, "  - %s/%s  %s  (last modified %s)\n", r.Department, r.Name, daysLeft(r.DaysUntilDeletion), shortTime(r.ModifiedAt))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expiringCmd)
	expiringCmd.Flags().IntVar(&expiringDays, "days", 7, "alert window in days (default alerts.alert_days_before_delete)")
	expiringCmd.Flags().StringVarP(&expiringDepartment, "department", "d", "", "only scan one department")
	expiringCmd.Flags().BoolVar(&expiringJSON, "json", false, "print records as JSON")
}
