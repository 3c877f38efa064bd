package version

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
	"github.com/KaramelBytes/docuflow-cli/internal/logging"
)

var testNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, max int, track bool) (*Store, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock(testNow)
	s, err := NewStore(Options{
		Dir:           filepath.Join(t.TempDir(), "versions"),
		MaxVersions:   max,
		TrackMetadata: track,
		Author:        "tester",
	}, WithClock(mock), WithLogger(logging.Discard()))
	require.NoError(t, err)
	return s, mock
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(Options{MaxVersions: 3})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = NewStore(Options{Dir: t.TempDir(), MaxVersions: 0})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestCreateVersion_NamingAndSidecar(t *testing.T) {
	s, _ := newTestStore(t, 5, true)
	src := filepath.Join(t.TempDir(), "budget.xlsx")
	writeFile(t, src, "q1 numbers")

	v, err := s.CreateVersion(src, "before review")
	require.NoError(t, err)
	assert.Equal(t, "budget.xlsx."+testNow.Local().Format("20060102_150405"), v.Filename)
	assert.Equal(t, "q1 numbers", readFile(t, v.Path))
	assert.True(t, testNow.Equal(v.CreatedAt))

	require.NotNil(t, v.Metadata)
	assert.Equal(t, sum("q1 numbers"), v.Metadata.FileHash)
	assert.Equal(t, int64(10), v.Metadata.SizeBytes)
	assert.Equal(t, "budget.xlsx", v.Metadata.OriginalFile)
	assert.Equal(t, "before review", v.Metadata.Comment)
	assert.Equal(t, "tester", v.Metadata.Author)
	assert.NotEmpty(t, v.Metadata.ID)

	onDisk, err := readMetadata(v.Path)
	require.NoError(t, err)
	assert.Equal(t, sum(readFile(t, v.Path)), onDisk.FileHash)

	_, err = s.CreateVersion(filepath.Join(t.TempDir(), "nope.txt"), "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.CreateVersion(t.TempDir(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateVersion_WithoutMetadata(t *testing.T) {
	s, _ := newTestStore(t, 5, false)
	src := filepath.Join(t.TempDir(), "memo.txt")
	writeFile(t, src, "hello")

	v, err := s.CreateVersion(src, "")
	require.NoError(t, err)
	assert.Nil(t, v.Metadata)
	assert.NoFileExists(t, v.Path+".json")
}

func TestCreateVersion_EvictionFailureStillReturnsVersion(t *testing.T) {
	s, _ := newTestStore(t, 1, true)
	old := filepath.Join(s.Dir(), "memo.txt.20200101_000000")
	writeFile(t, old, "old")
	// a sidecar path that cannot be removed
	writeFile(t, filepath.Join(old+".json", "stuck"), "x")
	src := filepath.Join(t.TempDir(), "memo.txt")
	writeFile(t, src, "new")

	v, err := s.CreateVersion(src, "")
	require.Error(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "new", readFile(t, v.Path))
	assert.NoFileExists(t, old)
}

func TestCreateVersion_KeepsMostRecent(t *testing.T) {
	s, mock := newTestStore(t, 3, true)
	src := filepath.Join(t.TempDir(), "plan.docx")

	var created []string
	for i := 0; i < 5; i++ {
		writeFile(t, src, strings.Repeat("x", i+1))
		v, err := s.CreateVersion(src, "")
		require.NoError(t, err)
		created = append(created, v.Filename)
		mock.Advance(time.Second)
	}

	versions, err := s.ListVersions("plan.docx")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, []string{created[4], created[3], created[2]},
		[]string{versions[0].Filename, versions[1].Filename, versions[2].Filename})

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 6)
	assert.NoFileExists(t, filepath.Join(s.Dir(), created[0]+".json"))
}

func TestCreateVersion_SameSecondOverwrites(t *testing.T) {
	s, _ := newTestStore(t, 5, true)
	src := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, src, "one")
	_, err := s.CreateVersion(src, "")
	require.NoError(t, err)
	writeFile(t, src, "two")
	v, err := s.CreateVersion(src, "")
	require.NoError(t, err)

	versions, err := s.ListVersions("a.txt")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "two", readFile(t, v.Path))
	assert.Equal(t, sum("two"), versions[0].Metadata.FileHash)
}

func TestListVersions_ExactBaseName(t *testing.T) {
	s, mock := newTestStore(t, 5, false)
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "data.a.txt", "a.txt.bak"} {
		writeFile(t, filepath.Join(dir, name), name)
		_, err := s.CreateVersion(filepath.Join(dir, name), "")
		require.NoError(t, err)
		mock.Advance(time.Second)
	}
	writeFile(t, filepath.Join(s.Dir(), "a.txt.notastamp"), "junk")

	versions, err := s.ListVersions("a.txt")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "a.txt", versions[0].BaseName)

	none, err := s.ListVersions("missing.txt")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistory_Limit(t *testing.T) {
	s, mock := newTestStore(t, 10, false)
	src := filepath.Join(t.TempDir(), "f.txt")
	writeFile(t, src, "x")
	for i := 0; i < 4; i++ {
		_, err := s.CreateVersion(src, "")
		require.NoError(t, err)
		mock.Advance(time.Minute)
	}

	all, err := s.History("f.txt", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	two, err := s.History("f.txt", 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, all[0].Filename, two[0].Filename)

	latest, err := s.Latest("f.txt")
	require.NoError(t, err)
	assert.Equal(t, all[0].Filename, latest.Filename)
	_, err = s.Latest("other.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreVersion_RoundTrip(t *testing.T) {
	s, mock := newTestStore(t, 5, true)
	src := filepath.Join(t.TempDir(), "contract.md")
	writeFile(t, src, "original terms")

	v1, err := s.CreateVersion(src, "c1")
	require.NoError(t, err)
	mock.Advance(time.Second)
	writeFile(t, src, "tampered terms")

	out, err := s.RestoreVersion(v1.Path, src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.Equal(t, sum("original terms"), sum(readFile(t, src)))

	versions, err := s.ListVersions("contract.md")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	backup := versions[0]
	assert.Equal(t, "tampered terms", readFile(t, backup.Path))
	require.NotNil(t, backup.Metadata)
	assert.Equal(t, "Auto-backup before restoring "+v1.Filename, backup.Metadata.Comment)
}

func TestRestoreVersion_SurvivesEvictionOfSource(t *testing.T) {
	s, mock := newTestStore(t, 1, true)
	src := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, src, "v1")
	v1, err := s.CreateVersion(src, "")
	require.NoError(t, err)
	mock.Advance(time.Second)
	writeFile(t, src, "v2")

	_, err = s.RestoreVersion(v1.Path, src)
	require.NoError(t, err)
	assert.Equal(t, "v1", readFile(t, src))
	assert.NoFileExists(t, v1.Path)

	versions, err := s.ListVersions("doc.txt")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "v2", readFile(t, versions[0].Path))
}

func TestRestoreVersion_ProceedsWhenBackupEvictionFails(t *testing.T) {
	s, mock := newTestStore(t, 1, true)
	src := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, src, "v1")
	v1, err := s.CreateVersion(src, "")
	require.NoError(t, err)
	require.NoError(t, os.Remove(v1.Path+".json"))
	writeFile(t, filepath.Join(v1.Path+".json", "stuck"), "x")
	mock.Advance(time.Second)
	writeFile(t, src, "v2")

	_, err = s.RestoreVersion(v1.Path, src)
	require.NoError(t, err)
	assert.Equal(t, "v1", readFile(t, src))

	latest, err := s.Latest("doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "v2", readFile(t, latest.Path))
}

func TestRestoreVersion_NewDestinationAndMissing(t *testing.T) {
	s, _ := newTestStore(t, 5, false)
	src := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, src, "content")
	v, err := s.CreateVersion(src, "")
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "nested", "restored.txt")
	_, err = s.RestoreVersion(v.Path, dest)
	require.NoError(t, err)
	assert.Equal(t, "content", readFile(t, dest))

	_, err = s.RestoreVersion(filepath.Join(s.Dir(), "a.txt.20000101_000000"), dest)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompareVersions(t *testing.T) {
	s, mock := newTestStore(t, 5, true)
	dir := t.TempDir()
	one := filepath.Join(dir, "one.txt")
	two := filepath.Join(dir, "two.txt")
	writeFile(t, one, "same bytes")
	writeFile(t, two, "same bytes")
	va, err := s.CreateVersion(one, "")
	require.NoError(t, err)
	mock.Advance(time.Second)
	vb, err := s.CreateVersion(two, "")
	require.NoError(t, err)

	self, err := s.CompareVersions(va.Path, va.Path)
	require.NoError(t, err)
	assert.True(t, self.Identical)
	assert.Zero(t, self.SizeDiff)

	cross, err := s.CompareVersions(va.Path, vb.Path)
	require.NoError(t, err)
	assert.True(t, cross.Identical)
	require.NotNil(t, cross.MetaA)
	assert.Equal(t, "one.txt", cross.MetaA.OriginalFile)

	mock.Advance(time.Second)
	writeFile(t, two, "same bytes, longer")
	vc, err := s.CreateVersion(two, "")
	require.NoError(t, err)
	diff, err := s.CompareVersions(vb.Path, vc.Path)
	require.NoError(t, err)
	assert.False(t, diff.Identical)
	assert.Equal(t, int64(8), diff.SizeDiff)

	_, err = s.CompareVersions(va.Path, filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWatch_SnapshotsOnChange(t *testing.T) {
	s, err := NewStore(Options{
		Dir:           filepath.Join(t.TempDir(), "versions"),
		MaxVersions:   5,
		TrackMetadata: true,
	}, WithLogger(logging.Discard()))
	require.NoError(t, err)
	src := filepath.Join(t.TempDir(), "live.txt")
	writeFile(t, src, "start")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *Info, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, src, WatchOptions{
			Debounce:  50 * time.Millisecond,
			OnVersion: func(v *Info) { got <- v },
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	writeFile(t, src, "edited")

	select {
	case v := <-got:
		assert.Equal(t, "edited", readFile(t, v.Path))
		assert.Equal(t, AutoVersionComment, v.Metadata.Comment)
	case <-time.After(5 * time.Second):
		t.Fatal("no version created after change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
