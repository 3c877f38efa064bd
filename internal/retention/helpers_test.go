package retention

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
	"github.com/KaramelBytes/docuflow-cli/internal/logging"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func day(n int) time.Duration { return time.Duration(n) * clock.Day }

// writeDoc creates a file whose mtime lies age before testNow.
func writeDoc(t *testing.T, path, content string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	backdate(t, path, age)
}

func backdate(t *testing.T, path string, age time.Duration) {
	t.Helper()
	mt := testNow.Add(-age)
	require.NoError(t, os.Chtimes(path, mt, mt))
}

func testPolicy(base string) Policy {
	return Policy{
		BasePath:          base,
		ArchiveAfterDays:  30,
		DeleteAfterDays:   90,
		Departments:       []string{"Finance", "Legal"},
		ExclusionPatterns: []string{".tmp", "README.txt"},
	}
}

func newTestEngine(t *testing.T, base string) *Engine {
	t.Helper()
	return NewEngine(testPolicy(base),
		WithClock(clock.NewMock(testNow)),
		WithLogger(logging.Discard()),
	)
}

// treeHash digests every path, mode, mtime and content under root.
func treeHash(t *testing.T, root string) string {
	t.Helper()
	h := sha256.New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		h.Write([]byte(rel))
		h.Write([]byte(info.Mode().String()))
		h.Write([]byte(info.ModTime().UTC().String()))
		if d.Type().IsRegular() {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			h.Write(b)
		}
		return nil
	})
	require.NoError(t, err)
	return hex.EncodeToString(h.Sum(nil))
}
