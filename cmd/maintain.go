package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/docuflow-cli/internal/metrics"
	"github.com/KaramelBytes/docuflow-cli/internal/retention"
	"github.com/KaramelBytes/docuflow-cli/internal/schedule"
)

var (
	maintainSchedule    string
	maintainDaemon      bool
	maintainMetricsAddr string
	maintainNow         bool
)

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run daily maintenance: enforce retention and report deletion alerts",
	Long: `Runs a live retention pass over every department followed by the deletion alerts.

With --schedule (or --daemon, which uses maintenance.schedule) the pass repeats on a cron
schedule until interrupted; a pass still running when the next one is due is skipped.
--now runs one pass immediately before the schedule starts.
Never run two maintain processes against the same tree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		spec := maintainSchedule
		if spec == "" && maintainDaemon {
			spec = cfg.Maintenance.Schedule
		}
		addr := maintainMetricsAddr
		if addr == "" {
			addr = cfg.Maintenance.MetricsAddr
		}

		m := metrics.NewRetentionMetrics(cfg.ClientName)
		trigger := "maintain"
		if spec != "" {
			trigger = "schedule"
		}
		job := maintenanceJob(cmd, engine, m, trigger)

		if spec == "" {
			return job(cmd.Context())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		s, err := schedule.New(spec, job, logger.With("component", "schedule"))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if maintainNow {
			if err := s.RunNow(ctx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: immediate maintenance run failed: %v\n", err)
			}
		}
		if err := s.Start(ctx); err != nil {
			return err
		}
		if next := s.NextRun(); next != nil {
			fmt.Fprintf(out, "✓ Maintenance scheduled (%s), next run %s\n", spec, shortTime(*next))
		}

		var srv *http.Server
		if addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", "addr", addr, "error", err)
				}
			}()
			fmt.Fprintf(out, "✓ Metrics on http://%s/metrics\n", addr)
		}

		<-ctx.Done()
		s.Stop()
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}
		fmt.Fprintln(out, "Maintenance stopped")
		return nil
	},
}

func maintenanceJob(cmd *cobra.Command, engine *retention.Engine, m *metrics.RetentionMetrics, trigger string) schedule.Job {
	return func(ctx context.Context) error {
		out := cmd.OutOrStdout()
		stats, err := engine.Enforce(ctx, "", false)
		m.ObserveRun(stats, err)
		recordRun(cmd, stats, "", trigger)
		if err != nil {
			return fmt.Errorf("enforce retention: %w", err)
		}
		printStats(out, stats, false)

		days := cfg.Alerts.AlertDaysBeforeDelete
		recs, err := engine.ExpiringSoon(ctx, days, "")
		if err != nil {
			return fmt.Errorf("scan expiring files: %w", err)
		}
		m.SetExpiring(engine.Policy().Departments, recs)
		renderAlerts(out, recs, days)
		if len(recs) > 0 {
			_ = retentionLog().Appendf("Alert: %d file(s) expiring within %d days", len(recs), days)
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(maintainCmd)
	maintainCmd.Flags().StringVar(&maintainSchedule, "schedule", "", "cron expression to repeat maintenance on (e.g. \"0 2 * * *\")")
	maintainCmd.Flags().BoolVar(&maintainDaemon, "daemon", false, "repeat on maintenance.schedule until interrupted")
	maintainCmd.Flags().BoolVar(&maintainNow, "now", false, "with --schedule or --daemon, run one pass before waiting for the schedule")
	maintainCmd.Flags().StringVar(&maintainMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while scheduled")
}
