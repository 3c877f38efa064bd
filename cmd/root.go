package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/audit"
	"github.com/KaramelBytes/docuflow-cli/internal/clock"
	cfgpkg "github.com/KaramelBytes/docuflow-cli/internal/config"
	"github.com/KaramelBytes/docuflow-cli/internal/eventlog"
	"github.com/KaramelBytes/docuflow-cli/internal/logging"
	"github.com/KaramelBytes/docuflow-cli/internal/retention"
	"github.com/KaramelBytes/docuflow-cli/internal/version"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	// Diagnostic logger, rebuilt on every invocation
	logger = logging.Discard()

	// now is the time source for every command; tests replace it.
	now clock.Clock = clock.Real{}
)

var rootCmd = &cobra.Command{
	Use:   "docuflow",
	Short: "DocuFlow CLI: retention enforcement and versioning for department document trees",
	Long: `DocuFlow keeps a department document tree ({base}/{department}/{Working|Archive|Final})
under a retention policy: stale working files are archived, expired archived files are deleted,
and any file can be snapshotted into a bounded version history.

Only one docuflow process may operate on a tree at a time; runs are not locked against each other.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.docuflow/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	level := cfg.Logs.Level
	if debug {
		level = "debug"
	}
	logger = logging.New(cmd.ErrOrStderr(), level)
	slog.SetDefault(logger)
	return nil
}

// requireConfig fails when the policy settings are incomplete.
func requireConfig() error {
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}
	return cfg.Validate()
}

func newEngine() (*retention.Engine, error) {
	if err := requireConfig(); err != nil {
		return nil, err
	}
	return retention.NewEngine(cfg.Policy(),
		retention.WithClock(now),
		retention.WithLogger(logger.With("component", "retention")),
		retention.WithEventLog(retentionLog()),
		retention.WithOrganizationLog(organizationLog()),
	), nil
}

func newStore() (*version.Store, error) {
	if err := requireConfig(); err != nil {
		return nil, err
	}
	return version.NewStore(cfg.VersionOptions(),
		version.WithClock(now),
		version.WithLogger(logger.With("component", "version")),
	)
}

// openAudit opens the run history database, or returns nil when auditing is
// disabled by an empty audit.db_path.
func openAudit() (*audit.Store, error) {
	if cfg == nil || cfg.Audit.DBPath == "" {
		return nil, nil
	}
	return audit.Open(cfg.Audit.DBPath)
}

// recordRun stores stats in the audit database. Failures are reported but
// never undo a run that already happened.
func recordRun(cmd *cobra.Command, stats *retention.Stats, department, trigger string) {
	if stats == nil {
		return
	}
	db, err := openAudit()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: audit store unavailable: %v\n", err)
		return
	}
	if db == nil {
		return
	}
	defer db.Close()
	if err := db.RecordRun(cmd.Context(), stats, department, trigger); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to record run: %v\n", err)
	}
}

func organizationLog() *eventlog.Log {
	if cfg == nil {
		return nil
	}
	return eventlog.New(cfg.Logs.OrganizationFile, now)
}

func retentionLog() *eventlog.Log {
	if cfg == nil {
		return nil
	}
	return eventlog.New(cfg.Logs.RetentionFile, now)
}
