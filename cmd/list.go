package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list <department>",
	Short: "List documents in a department",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		categories := retention.Categories
		if listCategory != "" {
			categories = []string{listCategory}
		}
		for _, cat := range categories {
			docs, err := engine.ListDocuments(args[0], cat)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("%s/%s", args[0], cat)))
			if len(docs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("  (no documents)"))
				continue
			}
			for _, d := range docs {
				marker := ""
				if retention.IsMarked(d.Path) {
					marker = " [keep]"
				}
				fmt.Fprintf(out, "  - %s  %s  %s%s\n", d.Name, humanBytes(d.SizeBytes), shortTime(d.ModifiedAt), marker)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only list one category (Working, Archive, Final)")
}
