package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

var (
	enforceDepartment string
	enforceDryRun     bool
	enforceYes        bool
	enforceJSON       bool
	enforceVerbose    bool
)

var enforceCmd = &cobra.Command{
	Use:   "enforce",
	Short: "Archive stale working files and delete expired archived files",
	Long: `Applies the retention policy to one or all departments.

Working files older than retention_policy.archive_after_days move to Archive.
Archive files older than retention_policy.delete_after_days are permanently deleted.
Files matching exclusions.files or carrying a .keep marker are never touched.

Use --dry-run to see what would happen without changing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if !enforceDryRun && !enforceYes {
			ok, err := confirm(cmd.InOrStdin(), out, "This will move and permanently delete files. Continue? [y/N] ")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Aborted")
				return nil
			}
		}

		stats, err := engine.Enforce(cmd.Context(), enforceDepartment, enforceDryRun)
		recordRun(cmd, stats, enforceDepartment, "cli")
		if err != nil {
			return fmt.Errorf("enforce retention: %w", err)
		}

		if enforceJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}
		printStats(out, stats, enforceVerbose || enforceDryRun)
		return nil
	},
}

func printStats(out io.Writer, stats *retention.Stats, withActions bool) {
	mode := "Retention enforced"
	if stats.DryRun {
		mode = "Dry run (no changes made)"
	}
	fmt.Fprintln(out, titleStyle.Render(mode))
	if withActions {
		for _, a := range stats.Actions {
			switch a.Kind {
			case retention.ActionArchive:
				fmt.Fprintf(out, "  archive  %s -> %s\n", a.Source, a.Destination)
			case retention.ActionDelete:
				fmt.Fprintf(out, "  delete   %s\n", a.Source)
			}
		}
	}
	fmt.Fprintf(out, "✓ Archived: %s  Deleted: %s  Scanned: %s\n", count(stats.Archived), count(stats.Deleted), count(stats.Scanned))
	if stats.Errors > 0 {
		fmt.Fprintf(out, "⚠ %s file(s) could not be processed; see log output\n", count(stats.Errors))
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func init() {
	rootCmd.AddCommand(enforceCmd)
	enforceCmd.Flags().StringVarP(&enforceDepartment, "department", "d", "", "only enforce one department")
	enforceCmd.Flags().BoolVar(&enforceDryRun, "dry-run", false, "report what would change without touching files")
	enforceCmd.Flags().BoolVarP(&enforceYes, "yes", "y", false, "skip the confirmation prompt for live runs")
	enforceCmd.Flags().BoolVar(&enforceJSON, "json", false, "print run statistics as JSON")
	enforceCmd.Flags().BoolVarP(&enforceVerbose, "verbose", "v", false, "list every action of a live run")
}
