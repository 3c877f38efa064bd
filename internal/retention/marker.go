package retention

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

// MarkerSuffix is appended to a document path to form its retention marker.
const MarkerSuffix = ".keep"

// DefaultMarkerReason is recorded when no reason is supplied.
const DefaultMarkerReason = "Manual retention"

// Marker is the persisted record of a manual retention request.
type Marker struct {
	MarkedBy string    `json:"marked_by"`
	MarkedAt time.Time `json:"marked_at"`
	Reason   string    `json:"reason"`
}

// MarkerPath returns the marker location for a document.
func MarkerPath(docPath string) string {
	return docPath + MarkerSuffix
}

// IsMarkerFile reports whether path is the retention marker of a document in
// the same folder. A ".keep" file with no such document is an ordinary file.
func IsMarkerFile(path string) bool {
	doc, ok := strings.CutSuffix(path, MarkerSuffix)
	return ok && utils.IsRegular(doc)
}

// IsMarked reports whether docPath carries a retention marker.
func IsMarked(docPath string) bool {
	return utils.Exists(MarkerPath(docPath))
}

// MarkForRetention writes a marker next to docPath. Marked documents are
// skipped by both archiving and deletion until the marker is removed.
func MarkForRetention(docPath string, m Marker) (string, error) {
	info, err := os.Stat(docPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("mark %s: %w", docPath, ErrNotFound)
		}
		return "", fmt.Errorf("stat document: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("mark %s: %w", docPath, ErrNotFound)
	}
	if m.Reason == "" {
		m.Reason = DefaultMarkerReason
	}
	if m.MarkedBy == "" {
		m.MarkedBy = CurrentUser()
	}
	if m.MarkedAt.IsZero() {
		m.MarkedAt = time.Now()
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return "", err
	}
	path := MarkerPath(docPath)
	if err := utils.SafeWriteFile(path, data); err != nil {
		return "", fmt.Errorf("write marker: %w", err)
	}
	return path, nil
}

// ReadMarker loads the marker for docPath.
func ReadMarker(docPath string) (*Marker, error) {
	b, err := os.ReadFile(MarkerPath(docPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("marker for %s: %w", docPath, ErrNotFound)
		}
		return nil, fmt.Errorf("read marker: %w", err)
	}
	var m Marker
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse marker: %w", err)
	}
	return &m, nil
}

// CurrentUser returns $USER, or "unknown".
func CurrentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
