package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
	"github.com/KaramelBytes/docuflow-cli/internal/eventlog"
	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

// ActionKind names a lifecycle transition.
type ActionKind string

const (
	ActionArchive ActionKind = "archive"
	ActionDelete  ActionKind = "delete"
)

// Action is one transition a run performed, or would perform in dry-run mode.
type Action struct {
	Kind        ActionKind `json:"kind"`
	Department  string     `json:"department"`
	Source      string     `json:"source"`
	Destination string     `json:"destination,omitempty"`
}

// Stats summarises an enforcement run.
type Stats struct {
	RunID      string    `json:"run_id"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Archived   int       `json:"archived"`
	Deleted    int       `json:"deleted"`
	Scanned    int       `json:"scanned"`
	Errors     int       `json:"errors"`
	Actions    []Action  `json:"actions,omitempty"`
}

// Summary renders the line written to the retention log after a run.
func (s *Stats) Summary() string {
	mode := "ENFORCED"
	if s.DryRun {
		mode = "DRY RUN"
	}
	return fmt.Sprintf("Retention %s: Archived=%d, Deleted=%d, Scanned=%d, Errors=%d",
		mode, s.Archived, s.Deleted, s.Scanned, s.Errors)
}

// Engine applies a Policy to the department tree.
type Engine struct {
	policy  Policy
	matcher Matcher
	clock   clock.Clock
	logger  *slog.Logger
	events  *eventlog.Log
	org     *eventlog.Log
	newID   func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEventLog sets the retention event log.
func WithEventLog(l *eventlog.Log) Option {
	return func(e *Engine) { e.events = l }
}

// WithOrganizationLog sets the log that records Final transitions.
func WithOrganizationLog(l *eventlog.Log) Option {
	return func(e *Engine) { e.org = l }
}

// NewEngine returns an engine bound to a private copy of policy.
func NewEngine(policy Policy, opts ...Option) *Engine {
	p := policy.clone()
	e := &Engine{
		policy:  p,
		matcher: NewMatcher(p.ExclusionPatterns),
		clock:   clock.Real{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default().With("component", "retention")
	}
	return e
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy.clone()
}

// Enforce archives stale Working documents and deletes expired Archive
// documents for one department, or for all configured departments when
// department is empty. With dryRun set nothing is moved or removed but the
// returned counts are the ones a live run would produce.
//
// Per-file failures are counted in Stats.Errors and do not stop the run. An
// unreachable base path or a cancelled ctx returns an error.
func (e *Engine) Enforce(ctx context.Context, department string, dryRun bool) (*Stats, error) {
	if err := e.checkBase(); err != nil {
		return nil, err
	}
	depts, err := e.policy.targets(department)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	stats := &Stats{RunID: e.newID(), DryRun: dryRun, StartedAt: now}
	archiveBefore := clock.Threshold(now, e.policy.ArchiveAfterDays)
	deleteBefore := clock.Threshold(now, e.policy.DeleteAfterDays)

	for _, dept := range depts {
		if err := e.enforceDepartment(ctx, dept, dryRun, archiveBefore, deleteBefore, stats); err != nil {
			stats.FinishedAt = e.clock.Now()
			e.logger.Warn("retention run interrupted", "run_id", stats.RunID, "err", err)
			_ = e.events.Append(stats.Summary() + " (interrupted)")
			return stats, err
		}
	}

	stats.FinishedAt = e.clock.Now()
	e.logger.Info("retention run complete",
		"run_id", stats.RunID,
		"dry_run", dryRun,
		"archived", stats.Archived,
		"deleted", stats.Deleted,
		"scanned", stats.Scanned,
		"errors", stats.Errors)
	if err := e.events.Append(stats.Summary()); err != nil {
		e.logger.Warn("write retention log", "err", err)
	}
	return stats, nil
}

func (e *Engine) enforceDepartment(ctx context.Context, dept string, dryRun bool, archiveBefore, deleteBefore time.Time, stats *Stats) error {
	workingDir := e.policy.FolderPath(dept, Working)
	archiveDir := e.policy.FolderPath(dept, Archive)

	// Archive is listed before anything moves into it so that a file is
	// archived and deleted in separate runs.
	archived, failed, err := listDocuments(archiveDir)
	stats.Errors += failed
	if err != nil {
		stats.Errors++
		e.logger.Warn("list archive folder", "department", dept, "err", err)
	}
	working, failed, err := listDocuments(workingDir)
	stats.Errors += failed
	if err != nil {
		stats.Errors++
		e.logger.Warn("list working folder", "department", dept, "err", err)
	}

	for _, doc := range working {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if e.exempt(doc) || !doc.ModifiedAt.Before(archiveBefore) {
			continue
		}
		dest, err := e.archiveDestination(archiveDir, doc.Name)
		if err != nil {
			stats.Errors++
			e.logger.Warn("resolve archive destination", "file", doc.Path, "err", err)
			continue
		}
		if !dryRun {
			if err := e.archive(doc, archiveDir, dest); err != nil {
				stats.Errors++
				e.logger.Warn("archive file", "file", doc.Path, "err", err)
				_ = e.events.Appendf("Failed to archive %s: %v", doc.Path, err)
				continue
			}
			_ = e.events.Appendf("Archived: %s -> %s", doc.Path, dest)
		}
		stats.Archived++
		stats.Actions = append(stats.Actions, Action{Kind: ActionArchive, Department: dept, Source: doc.Path, Destination: dest})
	}

	for _, doc := range archived {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if e.exempt(doc) || !doc.ModifiedAt.Before(deleteBefore) {
			continue
		}
		if !dryRun {
			if err := os.Remove(doc.Path); err != nil {
				stats.Errors++
				e.logger.Warn("delete file", "file", doc.Path, "err", err)
				_ = e.events.Appendf("Failed to delete %s: %v", doc.Path, err)
				continue
			}
			_ = e.events.Appendf("Deleted: %s", doc.Path)
		}
		stats.Deleted++
		stats.Actions = append(stats.Actions, Action{Kind: ActionDelete, Department: dept, Source: doc.Path})
	}
	return nil
}

func (e *Engine) archive(doc Document, archiveDir, dest string) error {
	if err := utils.EnsureDir(archiveDir); err != nil {
		return fmt.Errorf("create archive folder: %w", err)
	}
	return utils.MoveFile(doc.Path, dest)
}

// archiveDestination picks a path in archiveDir for name that does not
// clobber an existing archived file: the plain name when free, otherwise
// stem_archived_YYYYMMDD.ext, then stem_archived_YYYYMMDD_2.ext and so on.
func (e *Engine) archiveDestination(archiveDir, name string) (string, error) {
	return e.freeDestination(archiveDir, name, "archived")
}

func (e *Engine) freeDestination(dir, name, tag string) (string, error) {
	dest := filepath.Join(dir, name)
	if !utils.Exists(dest) {
		return dest, nil
	}
	stem, ext := utils.SplitExt(name)
	stamp := e.clock.Now().Format("20060102")
	base := fmt.Sprintf("%s_%s_%s", stem, tag, stamp)
	dest = filepath.Join(dir, base+ext)
	for n := 2; utils.Exists(dest); n++ {
		if n > 10000 {
			return "", fmt.Errorf("no free name for %s in %s", name, dir)
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
	e.logger.Info("name collision", "file", name, "destination", filepath.Base(dest))
	return dest, nil
}
