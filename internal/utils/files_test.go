package utils_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

func TestCopyFileHashesWrittenBytes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	content := []byte("quarterly numbers")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	n, sum, err := utils.CopyFile(src, dst)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != int64(len(content)) {
		t.Fatalf("copied %d bytes, want %d", n, len(content))
	}
	want := sha256.Sum256(content)
	if sum != hex.EncodeToString(want[:]) {
		t.Fatalf("hash mismatch: %s", sum)
	}
	got, err := utils.HashFile(dst)
	if err != nil {
		t.Fatalf("hash dst: %v", err)
	}
	if got != sum {
		t.Fatalf("destination hash %s != copy hash %s", got, sum)
	}
}

func TestMoveFilePreservesModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	dst := filepath.Join(dir, "b.pdf")
	if err := os.WriteFile(src, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	mod := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	if err := os.Chtimes(src, mod, mod); err != nil {
		t.Fatal(err)
	}
	if err := utils.MoveFile(src, dst); err != nil {
		t.Fatalf("move: %v", err)
	}
	if utils.Exists(src) {
		t.Fatalf("source still present after move")
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if !info.ModTime().Equal(mod) {
		t.Fatalf("mod time changed: %v != %v", info.ModTime(), mod)
	}
}

func TestSplitExt(t *testing.T) {
	cases := []struct{ in, stem, ext string }{
		{"report.pdf", "report", ".pdf"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
	}
	for _, c := range cases {
		stem, ext := utils.SplitExt(c.in)
		if stem != c.stem || ext != c.ext {
			t.Errorf("%s: got (%q,%q) want (%q,%q)", c.in, stem, ext, c.stem, c.ext)
		}
	}
}

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.json")
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := utils.SafeWriteFile(p, b); err != nil {
		t.Fatalf("write: %v", err)
	}
	if utils.Exists(p + ".tmp") {
		t.Fatalf("temp file left behind")
	}
}
