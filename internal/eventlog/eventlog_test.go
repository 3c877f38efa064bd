package eventlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
	"github.com/KaramelBytes/docuflow-cli/internal/eventlog"
)

func TestAppendWritesTimestampedLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "retention_log.txt")
	now := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	l := eventlog.New(p, clock.NewMock(now))

	require.NoError(t, l.Append("Retention DRY RUN: Archived=1, Deleted=0"))
	require.NoError(t, l.Appendf("Deleted (retention expired): %s", "a\nb.txt"))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-05-02T08:30:00Z | Retention DRY RUN: Archived=1, Deleted=0", lines[0])
	assert.Equal(t, "2024-05-02T08:30:00Z | Deleted (retention expired): a b.txt", lines[1])
}

func TestNilLogDiscards(t *testing.T) {
	var l *eventlog.Log
	assert.NoError(t, l.Append("ignored"))
	assert.Nil(t, eventlog.New("", nil))
}
