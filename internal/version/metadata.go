package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

// metadataSuffix is appended to a version filename to form its sidecar.
const metadataSuffix = ".json"

// Metadata is the sidecar record stored next to a version.
type Metadata struct {
	ID           string    `json:"id"`
	OriginalFile string    `json:"original_file"`
	OriginalPath string    `json:"original_path"`
	CreatedAt    time.Time `json:"created_at"`
	SizeBytes    int64     `json:"size_bytes"`
	FileHash     string    `json:"file_hash"`
	Comment      string    `json:"comment"`
	Author       string    `json:"author"`
}

func sidecarPath(versionPath string) string {
	return versionPath + metadataSuffix
}

func writeMetadata(versionPath string, m *Metadata) error {
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(sidecarPath(versionPath), data)
}

// readMetadata loads the sidecar of versionPath. A missing sidecar returns nil, nil.
func readMetadata(versionPath string) (*Metadata, error) {
	b, err := os.ReadFile(sidecarPath(versionPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &m, nil
}

// Metadata returns the sidecar of a version, or nil when it has none.
func (s *Store) Metadata(versionPath string) (*Metadata, error) {
	if !utils.IsRegular(versionPath) {
		return nil, fmt.Errorf("metadata of %s: %w", versionPath, ErrNotFound)
	}
	return readMetadata(versionPath)
}
