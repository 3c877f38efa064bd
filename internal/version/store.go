// Package version keeps a bounded, flat history of file snapshots.
//
// A version of report.pdf taken at 2024-03-05 14:30:00 local time is stored
// as {dir}/report.pdf.20240305_143000, optionally with a JSON sidecar at
// {dir}/report.pdf.20240305_143000.json. Timestamps have one-second
// resolution: two snapshots of the same file within one second share a name
// and the later one replaces the earlier.
package version

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

const timestampLayout = "20060102_150405"

var versionName = regexp.MustCompile(`^(.+)\.(\d{8}_\d{6})$`)

// Options configures a Store.
type Options struct {
	Dir           string
	MaxVersions   int
	TrackMetadata bool
	Author        string
}

// Info describes one stored version.
type Info struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	BaseName  string    `json:"base_name"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// Comparison is the result of CompareVersions.
type Comparison struct {
	A         string    `json:"a"`
	B         string    `json:"b"`
	SizeA     int64     `json:"size_a"`
	SizeB     int64     `json:"size_b"`
	SizeDiff  int64     `json:"size_diff"`
	HashA     string    `json:"hash_a"`
	HashB     string    `json:"hash_b"`
	Identical bool      `json:"identical"`
	MetaA     *Metadata `json:"metadata_a,omitempty"`
	MetaB     *Metadata `json:"metadata_b,omitempty"`
}

// Store manages the version directory.
type Store struct {
	opts   Options
	clock  clock.Clock
	logger *slog.Logger
	newID  func() string
}

// Option configures a Store.
type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore validates opts and returns a Store. The directory is created on
// the first snapshot.
func NewStore(opts Options, o ...Option) (*Store, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("%w: version directory is required", ErrInvalidOptions)
	}
	if opts.MaxVersions < 1 {
		return nil, fmt.Errorf("%w: max versions must be at least 1, got %d", ErrInvalidOptions, opts.MaxVersions)
	}
	if opts.Author == "" {
		opts.Author = "unknown"
	}
	s := &Store{opts: opts, clock: clock.Real{}, newID: uuid.NewString}
	for _, fn := range o {
		fn(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "version")
	}
	return s, nil
}

// Dir returns the version directory.
func (s *Store) Dir() string { return s.opts.Dir }

// CreateVersion snapshots the file at path and trims its lineage to
// MaxVersions, evicting the oldest versions. If eviction fails the new
// version is still returned together with the error.
func (s *Store) CreateVersion(path, comment string) (*Info, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("create version of %s: %w", path, ErrNotFound)
	}
	if err := utils.EnsureDir(s.opts.Dir); err != nil {
		return nil, fmt.Errorf("create version dir: %w", err)
	}

	now := s.clock.Now()
	base := filepath.Base(path)
	name := base + "." + now.Local().Format(timestampLayout)
	dst := filepath.Join(s.opts.Dir, name)

	size, hash, err := utils.CopyFile(path, dst)
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("copy version: %w", err)
	}

	v := &Info{
		Filename:  name,
		Path:      dst,
		BaseName:  base,
		CreatedAt: parseStamp(now.Local().Format(timestampLayout)),
		SizeBytes: size,
	}
	if s.opts.TrackMetadata {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		meta := &Metadata{
			ID:           s.newID(),
			OriginalFile: base,
			OriginalPath: abs,
			CreatedAt:    now,
			SizeBytes:    size,
			FileHash:     hash,
			Comment:      comment,
			Author:       s.opts.Author,
		}
		if err := writeMetadata(dst, meta); err != nil {
			_ = os.Remove(dst)
			return nil, fmt.Errorf("write version metadata: %w", err)
		}
		v.Metadata = meta
	} else {
		// a same-second predecessor may have left a sidecar describing other bytes
		_ = os.Remove(sidecarPath(dst))
	}

	s.logger.Debug("version created", "file", path, "version", name, "size", size)
	if err := s.prune(base); err != nil {
		return v, err
	}
	return v, nil
}

func (s *Store) prune(base string) error {
	versions, err := s.ListVersions(base)
	if err != nil {
		return err
	}
	if len(versions) <= s.opts.MaxVersions {
		return nil
	}
	var errs []error
	for _, old := range versions[s.opts.MaxVersions:] {
		if err := os.Remove(old.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("evict %s: %w", old.Filename, err))
			continue
		}
		if err := os.Remove(sidecarPath(old.Path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("evict metadata of %s: %w", old.Filename, err))
		}
		s.logger.Debug("version evicted", "version", old.Filename)
	}
	return errors.Join(errs...)
}

// ListVersions returns every version of baseName, newest first.
func (s *Store) ListVersions(baseName string) ([]Info, error) {
	entries, err := os.ReadDir(s.opts.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read version dir: %w", err)
	}

	var out []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, metadataSuffix) {
			continue
		}
		m := versionName.FindStringSubmatch(name)
		if m == nil || m[1] != baseName {
			continue
		}
		created := parseStamp(m[2])
		if created.IsZero() {
			continue
		}
		path := filepath.Join(s.opts.Dir, name)
		fi, err := e.Info()
		if err != nil {
			continue
		}
		v := Info{Filename: name, Path: path, BaseName: baseName, CreatedAt: created, SizeBytes: fi.Size()}
		meta, err := readMetadata(path)
		if err != nil {
			s.logger.Warn("ignoring unreadable version metadata", "version", name, "err", err)
		}
		v.Metadata = meta
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Filename > out[j].Filename
	})
	return out, nil
}

// History is ListVersions truncated to the limit most recent entries. A
// limit of zero or less returns everything.
func (s *Store) History(baseName string, limit int) ([]Info, error) {
	versions, err := s.ListVersions(baseName)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}
	return versions, nil
}

// Latest returns the newest version of baseName.
func (s *Store) Latest(baseName string) (*Info, error) {
	versions, err := s.History(baseName, 1)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no versions of %s: %w", baseName, ErrNotFound)
	}
	return &versions[0], nil
}

// RestoreVersion copies versionPath over destination. When destination
// already exists its current content is first saved as a new version, so
// every restore can itself be undone.
func (s *Store) RestoreVersion(versionPath, destination string) (string, error) {
	if !utils.IsRegular(versionPath) {
		return "", fmt.Errorf("restore %s: %w", versionPath, ErrNotFound)
	}
	dir := filepath.Dir(destination)
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}

	// Stage first: the backup below may evict versionPath from the lineage.
	tmp, err := os.CreateTemp(dir, ".docuflow-restore-*")
	if err != nil {
		return "", fmt.Errorf("stage restore: %w", err)
	}
	staged := tmp.Name()
	tmp.Close()
	if _, _, err := utils.CopyFile(versionPath, staged); err != nil {
		_ = os.Remove(staged)
		return "", fmt.Errorf("stage restore: %w", err)
	}

	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(destination); err == nil && fi.Mode().IsRegular() {
		mode = fi.Mode().Perm()
		comment := "Auto-backup before restoring " + filepath.Base(versionPath)
		backup, err := s.CreateVersion(destination, comment)
		if backup == nil {
			_ = os.Remove(staged)
			return "", fmt.Errorf("back up current content: %w", err)
		}
		if err != nil {
			s.logger.Warn("backup stored but older versions were not evicted", "backup", backup.Filename, "err", err)
		}
	}
	_ = os.Chmod(staged, mode)

	if err := os.Rename(staged, destination); err != nil {
		_ = os.Remove(staged)
		return "", fmt.Errorf("replace destination: %w", err)
	}
	s.logger.Info("version restored", "version", filepath.Base(versionPath), "destination", destination)
	return destination, nil
}

// CompareVersions reports the size difference (b minus a) and whether both
// files have the same SHA-256 digest.
func (s *Store) CompareVersions(a, b string) (*Comparison, error) {
	fa, err := os.Stat(a)
	if err != nil || !fa.Mode().IsRegular() {
		return nil, fmt.Errorf("compare %s: %w", a, ErrNotFound)
	}
	fb, err := os.Stat(b)
	if err != nil || !fb.Mode().IsRegular() {
		return nil, fmt.Errorf("compare %s: %w", b, ErrNotFound)
	}
	ha, err := utils.HashFile(a)
	if err != nil {
		return nil, err
	}
	hb, err := utils.HashFile(b)
	if err != nil {
		return nil, err
	}
	c := &Comparison{
		A:         a,
		B:         b,
		SizeA:     fa.Size(),
		SizeB:     fb.Size(),
		SizeDiff:  fb.Size() - fa.Size(),
		HashA:     ha,
		HashB:     hb,
		Identical: ha == hb,
	}
	c.MetaA, _ = readMetadata(a)
	c.MetaB, _ = readMetadata(b)
	return c, nil
}

func parseStamp(stamp string) time.Time {
	t, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
