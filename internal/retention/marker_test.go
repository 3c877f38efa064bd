package retention

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher(t *testing.T) {
	m := NewMatcher([]string{"", ".tmp", "desktop.ini"})
	assert.True(t, m.Excluded("x.tmp"))
	assert.True(t, m.Excluded("desktop.ini"))
	assert.True(t, m.Excluded("old-desktop.ini"))
	assert.False(t, m.Excluded("x.tmp.pdf"))
	assert.False(t, m.Excluded("report.pdf"))
	assert.False(t, NewMatcher(nil).Excluded("anything"))
}

func TestMarkForRetention(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "contract.pdf")
	writeDoc(t, doc, "x", 0)
	assert.False(t, IsMarked(doc))

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	path, err := MarkForRetention(doc, Marker{MarkedBy: "alice", MarkedAt: at})
	require.NoError(t, err)
	assert.Equal(t, doc+".keep", path)
	assert.True(t, IsMarked(doc))
	assert.True(t, IsMarkerFile(path))

	m, err := ReadMarker(doc)
	require.NoError(t, err)
	assert.Equal(t, "alice", m.MarkedBy)
	assert.Equal(t, DefaultMarkerReason, m.Reason)
	assert.True(t, at.Equal(m.MarkedAt))

	_, err = MarkForRetention(filepath.Join(dir, "missing.pdf"), Marker{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ReadMarker(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsMarkerFile_RequiresSiblingDocument(t *testing.T) {
	dir := t.TempDir()
	orphan := filepath.Join(dir, "notes.keep")
	writeDoc(t, orphan, "plain text", 0)
	assert.False(t, IsMarkerFile(orphan))

	writeDoc(t, filepath.Join(dir, "notes"), "doc", 0)
	assert.True(t, IsMarkerFile(orphan))
}

func TestEnforce_OrphanKeepFileIsADocument(t *testing.T) {
	base := t.TempDir()
	orphan := filepath.Join(base, "Finance", Working, "budget.keep")
	writeDoc(t, orphan, "not a marker", day(31))

	stats, err := newTestEngine(t, base).Enforce(context.Background(), "Finance", false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 1, stats.Archived)
	assert.FileExists(t, filepath.Join(base, "Finance", Archive, "budget.keep"))
}
