package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

type RetentionMetrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	filesTotal    *prometheus.CounterVec
	scannedTotal  prometheus.Counter
	errorsTotal   prometheus.Counter
	runDuration   prometheus.Histogram
	lastRun       prometheus.Gauge
	expiringFiles *prometheus.GaugeVec
}

func NewRetentionMetrics(client string) *RetentionMetrics {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"client": client}

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docuflow",
			Subsystem:   "retention",
			Name:        "runs_total",
			Help:        "Enforcement runs by mode and outcome.",
			ConstLabels: labels,
		},
		[]string{"mode", "status"},
	)
	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "docuflow",
			Subsystem:   "retention",
			Name:        "files_total",
			Help:        "Documents archived or deleted by live runs.",
			ConstLabels: labels,
		},
		[]string{"action"},
	)
	scannedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "docuflow",
			Subsystem:   "retention",
			Name:        "scanned_total",
			Help:        "Documents examined by enforcement runs.",
			ConstLabels: labels,
		},
	)
	errorsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "docuflow",
			Subsystem:   "retention",
			Name:        "file_errors_total",
			Help:        "Per-file failures tallied during enforcement runs.",
			ConstLabels: labels,
		},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "docuflow",
			Subsystem:   "retention",
			Name:        "run_duration_seconds",
			Help:        "Wall time of enforcement runs.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			ConstLabels: labels,
		},
	)
	lastRun := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "docuflow",
			Subsystem:   "retention",
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last enforcement run finished.",
			ConstLabels: labels,
		},
	)
	expiringFiles := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   "docuflow",
			Subsystem:   "retention",
			Name:        "expiring_files",
			Help:        "Archived documents inside the alert window, by department.",
			ConstLabels: labels,
		},
		[]string{"department"},
	)

	registry.MustRegister(runsTotal, filesTotal, scannedTotal, errorsTotal, runDuration, lastRun, expiringFiles)

	return &RetentionMetrics{
		registry:      registry,
		runsTotal:     runsTotal,
		filesTotal:    filesTotal,
		scannedTotal:  scannedTotal,
		errorsTotal:   errorsTotal,
		runDuration:   runDuration,
		lastRun:       lastRun,
		expiringFiles: expiringFiles,
	}
}

func (m *RetentionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one Enforce call. stats may be nil when the run failed
// before scanning.
func (m *RetentionMetrics) ObserveRun(stats *retention.Stats, err error) {
	mode := "live"
	if stats != nil && stats.DryRun {
		mode = "dry_run"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(mode, status).Inc()
	if stats == nil {
		return
	}

	m.scannedTotal.Add(float64(stats.Scanned))
	m.errorsTotal.Add(float64(stats.Errors))
	if !stats.DryRun {
		m.filesTotal.WithLabelValues("archived").Add(float64(stats.Archived))
		m.filesTotal.WithLabelValues("deleted").Add(float64(stats.Deleted))
	}
	if !stats.FinishedAt.IsZero() {
		m.runDuration.Observe(stats.FinishedAt.Sub(stats.StartedAt).Seconds())
		m.lastRun.Set(float64(stats.FinishedAt.Unix()))
	}
}

// SetExpiring replaces the expiring-files gauge with the given records.
// Departments listed in departments but absent from records are reported as 0.
func (m *RetentionMetrics) SetExpiring(departments []string, records []retention.ExpiringRecord) {
	m.expiringFiles.Reset()
	for _, d := range departments {
		m.expiringFiles.WithLabelValues(d).Set(0)
	}
	for _, r := range records {
		m.expiringFiles.WithLabelValues(r.Department).Inc()
	}
}
