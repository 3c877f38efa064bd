package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiringSoon_Window(t *testing.T) {
	base := t.TempDir()
	fin := filepath.Join(base, "Finance", Archive)
	legal := filepath.Join(base, "Legal", Archive)
	writeDoc(t, filepath.Join(fin, "five.pdf"), "x", day(85))
	writeDoc(t, filepath.Join(fin, "edge-seven.pdf"), "x", day(83))
	writeDoc(t, filepath.Join(fin, "too-young.pdf"), "x", day(82))
	writeDoc(t, filepath.Join(fin, "due-now.pdf"), "x", day(90))
	writeDoc(t, filepath.Join(fin, "overdue.pdf"), "x", day(91))
	writeDoc(t, filepath.Join(fin, "scratch.tmp"), "x", day(85))
	writeDoc(t, filepath.Join(legal, "half.pdf"), "x", day(88)+12*time.Hour)
	writeDoc(t, filepath.Join(legal, "five.pdf"), "x", day(85))
	held := filepath.Join(legal, "held.pdf")
	writeDoc(t, held, "x", day(86))
	_, err := MarkForRetention(held, Marker{MarkedBy: "tester"})
	require.NoError(t, err)

	recs, err := newTestEngine(t, base).ExpiringSoon(context.Background(), 7, "")
	require.NoError(t, err)

	type row struct {
		dept, name string
		days       int
	}
	var got []row
	for _, r := range recs {
		got = append(got, row{r.Department, r.Name, r.DaysUntilDeletion})
	}
	assert.Equal(t, []row{
		{"Finance", "due-now.pdf", 0},
		{"Legal", "half.pdf", 1},
		{"Finance", "five.pdf", 5},
		{"Legal", "five.pdf", 5},
		{"Finance", "edge-seven.pdf", 7},
	}, got)
}

func TestExpiringSoon_DepartmentFilterAndErrors(t *testing.T) {
	base := t.TempDir()
	writeDoc(t, filepath.Join(base, "Finance", Archive, "a.pdf"), "x", day(88))
	writeDoc(t, filepath.Join(base, "Legal", Archive, "b.pdf"), "x", day(88))
	e := newTestEngine(t, base)

	recs, err := e.ExpiringSoon(context.Background(), 7, "Legal")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "b.pdf", recs[0].Name)

	recs, err = e.ExpiringSoon(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = e.ExpiringSoon(context.Background(), -1, "")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	// an unreadable archive folder is skipped and the other departments still report
	require.NoError(t, os.RemoveAll(filepath.Join(base, "Finance", Archive)))
	writeDoc(t, filepath.Join(base, "Finance", Archive), "not a folder", 0)
	recs, err = e.ExpiringSoon(context.Background(), 7, "")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Legal", recs[0].Department)

	grouped := GroupByDepartment([]ExpiringRecord{{Department: "A", Name: "1"}, {Department: "B"}, {Department: "A", Name: "2"}})
	assert.Len(t, grouped["A"], 2)
	assert.Equal(t, "2", grouped["A"][1].Name)
}
