package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
)

// Document is a regular file found in a category folder. Its category is
// implied by the folder it was listed from.
type Document struct {
	Path       string
	Name       string
	SizeBytes  int64
	ModifiedAt time.Time
}

// listDocuments returns the regular files directly inside dir, sorted by
// name. A missing dir yields no documents and no failures. Entries that
// cannot be stat'ed are counted in failed and left out.
func listDocuments(dir string) (docs []Document, failed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read folder %s: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(dir, name)
		if e.IsDir() || IsMarkerFile(path) {
			continue
		}
		info, statErr := os.Stat(path)
		if statErr != nil {
			failed++
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		docs = append(docs, Document{
			Path:       path,
			Name:       name,
			SizeBytes:  info.Size(),
			ModifiedAt: clock.ModTime(info),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, failed, nil
}

// ListDocuments lists the documents of one category folder of a department.
func (e *Engine) ListDocuments(department, category string) ([]Document, error) {
	if err := ValidateDepartment(department); err != nil {
		return nil, err
	}
	docs, _, err := listDocuments(e.policy.FolderPath(department, category))
	return docs, err
}

func (e *Engine) checkBase() error {
	info, err := os.Stat(e.policy.BasePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBaseUnreachable, e.policy.BasePath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrBaseUnreachable, e.policy.BasePath)
	}
	return nil
}

// exempt reports whether a document is protected by an exclusion pattern or
// a retention marker.
func (e *Engine) exempt(d Document) bool {
	return e.matcher.Excluded(d.Name) || IsMarked(d.Path)
}
