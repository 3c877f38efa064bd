package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

var initCmd = &cobra.Command{
	Use:   "init [department]",
	Short: "Create the category folders for one or all departments",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireConfig(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		policy := cfg.Policy()
		depts := policy.Departments
		if len(args) == 1 {
			if err := retention.ValidateDepartment(args[0]); err != nil {
				return err
			}
			depts = []string{args[0]}
		}
		categories := cfg.Categories
		if len(categories) == 0 {
			categories = retention.Categories
		}
		events := organizationLog()

		created := 0
		for _, dept := range depts {
			for _, cat := range categories {
				dir := policy.FolderPath(dept, cat)
				if info, err := os.Stat(dir); err == nil && info.IsDir() {
					continue
				}
				if err := utils.EnsureDir(dir); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
				_ = events.Appendf("Created folder: %s", dir)
				created++
			}
		}
		fmt.Fprintf(out, "✓ Folder structure ready under %s (%d created)\n", policy.BasePath, created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
