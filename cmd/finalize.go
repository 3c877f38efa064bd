package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize <file> <department>",
	Short: "Move a document into the department's Final folder",
	Long: `Moves <file> (normally from the Working folder) into {base}/{department}/Final.
An existing file of the same name is kept; the moved file is renamed with a _final_YYYYMMDD suffix.
Final documents are never archived or deleted by retention.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		dest, err := engine.Finalize(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved to Final: %s\n", dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(finalizeCmd)
}
