package version

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

// AutoVersionComment tags versions taken by Watch.
const AutoVersionComment = "Auto-version on change"

// WatchOptions tunes Watch.
type WatchOptions struct {
	// Debounce is the quiet period after the last change before a snapshot
	// is taken (default 500ms).
	Debounce time.Duration

	// OnVersion, if set, is called after each snapshot.
	OnVersion func(*Info)
}

// Watch snapshots path every time it settles after a change, until ctx is
// cancelled. The parent directory is watched so that editors which save by
// writing a new file and renaming it over the old one are still seen.
// Content identical to the latest version is not snapshotted again.
func (s *Store) Watch(ctx context.Context, path string, opts WatchOptions) error {
	if !utils.IsRegular(path) {
		return fmt.Errorf("watch %s: %w", path, ErrNotFound)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	s.logger.Info("watching file", "path", abs, "debounce_ms", opts.Debounce.Milliseconds())

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(opts.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			s.logger.Warn("watcher error", "err", err)

		case <-timer.C:
			v, err := s.snapshotIfChanged(abs)
			if err != nil {
				s.logger.Warn("auto-version failed", "path", abs, "err", err)
			}
			if v != nil && opts.OnVersion != nil {
				opts.OnVersion(v)
			}
		}
	}
}

func (s *Store) snapshotIfChanged(path string) (*Info, error) {
	if !utils.IsRegular(path) {
		return nil, nil
	}
	latest, err := s.Latest(filepath.Base(path))
	if err == nil {
		cur, err := utils.HashFile(path)
		if err != nil {
			return nil, err
		}
		prev, err := utils.HashFile(latest.Path)
		if err == nil && prev == cur {
			return nil, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.CreateVersion(path, AutoVersionComment)
}
