package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRun   string
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past enforcement runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openAudit()
		if err != nil {
			return err
		}
		if db == nil {
			return errors.New("audit history is disabled (audit.db_path is empty)")
		}
		defer db.Close()
		out := cmd.OutOrStdout()

		if historyRun != "" {
			actions, err := db.Actions(cmd.Context(), historyRun)
			if err != nil {
				return err
			}
			if historyJSON {
				return json.NewEncoder(out).Encode(actions)
			}
			if len(actions) == 0 {
				fmt.Fprintln(out, "(no actions)")
			}
			for _, a := range actions {
				fmt.Fprintf(out, "- %-7s %s %s\n", a.Kind, a.Source, a.Destination)
			}
			return nil
		}

		runs, err := db.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintf(out, "(no runs recorded in %s)\n", db.Path())
			return nil
		}
		for _, r := range runs {
			mode := "live"
			if r.DryRun {
				mode = "dry-run"
			}
			scope := r.Department
			if scope == "" {
				scope = "all"
			}
			fmt.Fprintf(out, "- %s  %s  %-7s %-10s archived=%d deleted=%d scanned=%d errors=%d  %s\n",
				shortTime(r.StartedAt), r.Trigger, mode, scope, r.Archived, r.Deleted, r.Scanned, r.Errors, mutedStyle.Render(r.ID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "show the actions of one run")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
}
