package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

var keepReason string

var keepCmd = &cobra.Command{
	Use:   "keep <file>",
	Short: "Mark a file so retention never archives or deletes it",
	Long:  "Writes <file>.keep next to the file. Remove the marker to put the file back under the retention policy.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		author := retention.CurrentUser()
		if cfg != nil && cfg.VersionControl.Author != "" {
			author = cfg.VersionControl.Author
		}
		path, err := retention.MarkForRetention(args[0], retention.Marker{
			MarkedBy: author,
			MarkedAt: now.Now(),
			Reason:   keepReason,
		})
		if err != nil {
			return err
		}
		_ = retentionLog().Appendf("Marked for retention: %s (%s)", args[0], keepReason)
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Retention marker written: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keepCmd)
	keepCmd.Flags().StringVarP(&keepReason, "reason", "r", retention.DefaultMarkerReason, "why the file must be kept")
}
