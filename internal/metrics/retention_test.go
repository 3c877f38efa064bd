package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

func TestObserveRun(t *testing.T) {
	m := NewRetentionMetrics("acme")
	start := time.Unix(1_700_000_000, 0)

	m.ObserveRun(&retention.Stats{
		StartedAt: start, FinishedAt: start.Add(2 * time.Second),
		Archived: 3, Deleted: 1, Scanned: 10, Errors: 2,
	}, nil)
	m.ObserveRun(&retention.Stats{DryRun: true, Archived: 5, Scanned: 4}, nil)
	m.ObserveRun(nil, errors.New("base path unreachable"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("live", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("dry_run", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("live", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.filesTotal.WithLabelValues("archived")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesTotal.WithLabelValues("deleted")))
	assert.Equal(t, 14.0, testutil.ToFloat64(m.scannedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.errorsTotal))
	assert.Equal(t, float64(start.Add(2*time.Second).Unix()), testutil.ToFloat64(m.lastRun))
}

func TestSetExpiring(t *testing.T) {
	m := NewRetentionMetrics("acme")
	m.SetExpiring([]string{"Finance", "Legal"}, []retention.ExpiringRecord{
		{Department: "Finance"}, {Department: "Finance"},
	})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.expiringFiles.WithLabelValues("Finance")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.expiringFiles.WithLabelValues("Legal")))

	m.SetExpiring([]string{"Finance"}, nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.expiringFiles.WithLabelValues("Finance")))
}

func TestHandler(t *testing.T) {
	m := NewRetentionMetrics("acme")
	m.ObserveRun(&retention.Stats{Scanned: 1}, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `docuflow_retention_scanned_total{client="acme"} 1`))
}
