package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchDepartment string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find documents by name across departments",
	Long:  "Lists every document whose name contains <query>, ignoring case, in all category folders.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		results, err := engine.Search(cmd.Context(), args[0], searchDepartment)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Search results for %q: %s found", args[0], count(len(results)))))
		for _, r := range results {
			fmt.Fprintf(out, "  %s/%s/%s  %s  %s\n", r.Department, r.Category, r.Name, humanBytes(r.SizeBytes), shortTime(r.ModifiedAt))
			fmt.Fprintln(out, mutedStyle.Render("    "+r.Path))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchDepartment, "department", "d", "", "only search one department")
}
