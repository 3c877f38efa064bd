package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/utils"
	"github.com/KaramelBytes/docuflow-cli/internal/version"
)

var (
	versionComment   string
	versionRestoreTo string
	versionLimit     int
	versionDebounce  time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Snapshot, list, compare and restore file versions",
}

var versionCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Store a snapshot of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		v, err := store.CreateVersion(args[0], versionComment)
		if v == nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Version created: %s (%s)\n", v.Filename, humanBytes(v.SizeBytes))
		if err != nil {
			// the snapshot is stored; only trimming older versions failed
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
		}
		return nil
	},
}

var versionListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List stored versions of a file, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		versions, err := store.ListVersions(filepath.Base(args[0]))
		if err != nil {
			return err
		}
		printVersions(cmd.OutOrStdout(), versions)
		return nil
	},
}

var versionHistoryCmd = &cobra.Command{
	Use:   "history <file>",
	Short: "Show the most recent versions of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		versions, err := store.History(filepath.Base(args[0]), versionLimit)
		if err != nil {
			return err
		}
		printVersions(cmd.OutOrStdout(), versions)
		return nil
	},
}

var versionRestoreCmd = &cobra.Command{
	Use:   "restore <version>",
	Short: "Restore a version over its original file (or --to another path)",
	Long: `Restores the given version. When the destination already exists its current
content is saved as a new version first, so a restore can itself be undone.

<version> is a path or a filename inside the version directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		src := resolveVersionPath(store, args[0])
		dest := versionRestoreTo
		if dest == "" {
			meta, err := store.Metadata(src)
			if err != nil {
				return err
			}
			if meta == nil || meta.OriginalPath == "" {
				return errors.New("version has no recorded original path; use --to")
			}
			dest = meta.OriginalPath
		}
		out, err := store.RestoreVersion(src, dest)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %s to %s\n", filepath.Base(src), out)
		return nil
	},
}

var versionCompareCmd = &cobra.Command{
	Use:   "compare <version-a> <version-b>",
	Short: "Compare two versions by size and content hash",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		c, err := store.CompareVersions(resolveVersionPath(store, args[0]), resolveVersionPath(store, args[1]))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "A: %s (%s)\n", filepath.Base(c.A), humanBytes(c.SizeA))
		fmt.Fprintf(out, "B: %s (%s)\n", filepath.Base(c.B), humanBytes(c.SizeB))
		fmt.Fprintf(out, "Size difference: %+d bytes\n", c.SizeDiff)
		if c.Identical {
			fmt.Fprintln(out, "✓ Content identical")
		} else {
			fmt.Fprintln(out, "⚠ Content differs")
		}
		return nil
	},
}

var versionWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Snapshot a file automatically every time it is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", args[0])
		return store.Watch(ctx, args[0], version.WatchOptions{
			Debounce: versionDebounce,
			OnVersion: func(v *version.Info) {
				fmt.Fprintf(out, "✓ %s  %s\n", v.Filename, humanBytes(v.SizeBytes))
			},
		})
	},
}

// resolveVersionPath accepts either a path or a bare version filename.
func resolveVersionPath(store *version.Store, arg string) string {
	if utils.Exists(arg) {
		return arg
	}
	return filepath.Join(store.Dir(), arg)
}

func printVersions(out io.Writer, versions []version.Info) {
	if len(versions) == 0 {
		fmt.Fprintln(out, "(no versions)")
		return
	}
	for _, v := range versions {
		line := fmt.Sprintf("- %s  %s  %s", v.Filename, shortTime(v.CreatedAt), humanBytes(v.SizeBytes))
		if v.Metadata != nil && v.Metadata.Comment != "" {
			line += "  " + mutedStyle.Render(v.Metadata.Comment)
		}
		fmt.Fprintln(out, line)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.AddCommand(versionCreateCmd, versionListCmd, versionHistoryCmd, versionRestoreCmd, versionCompareCmd, versionWatchCmd)
	versionCreateCmd.Flags().StringVarP(&versionComment, "message", "m", "", "comment stored with the version")
	versionRestoreCmd.Flags().StringVar(&versionRestoreTo, "to", "", "restore to this path instead of the original location")
	versionHistoryCmd.Flags().IntVarP(&versionLimit, "limit", "n", 10, "number of versions to show (0 for all)")
	versionWatchCmd.Flags().DurationVar(&versionDebounce, "debounce", 500*time.Millisecond, "quiet period after a change before snapshotting")
}

