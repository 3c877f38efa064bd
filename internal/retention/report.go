package retention

import (
	"context"
	"time"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
)

// reportLookaheadDays is how far ahead Report flags archived documents as expiring.
const reportLookaheadDays = 7

// FolderSummary aggregates one category folder.
type FolderSummary struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"total_size"`
}

type WorkingSummary struct {
	FolderSummary
	OldFiles int `json:"old_files"`
}

type ArchiveSummary struct {
	FolderSummary
	Expiring int `json:"expiring"`
}

// DepartmentReport holds the per-category numbers for one department.
type DepartmentReport struct {
	Working WorkingSummary `json:"working"`
	Archive ArchiveSummary `json:"archive"`
	Final   FolderSummary  `json:"final"`
}

// PolicySummary echoes the thresholds a report was computed with.
type PolicySummary struct {
	ArchiveAfterDays int `json:"archive_after_days"`
	DeleteAfterDays  int `json:"delete_after_days"`
}

// Report is a read-only snapshot of the tree against the policy.
type Report struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Policy      PolicySummary                `json:"policy"`
	Departments map[string]*DepartmentReport `json:"departments"`
	Errors      int                          `json:"errors,omitempty"`
}

// Report counts documents per category and flags Working documents due for
// archiving and Archive documents within a week of deletion. It never
// modifies the tree.
func (e *Engine) Report(ctx context.Context, department string) (*Report, error) {
	if err := e.checkBase(); err != nil {
		return nil, err
	}
	depts, err := e.policy.targets(department)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	archiveBefore := clock.Threshold(now, e.policy.ArchiveAfterDays)
	expiringBefore := clock.Threshold(now, e.policy.DeleteAfterDays-reportLookaheadDays)

	rep := &Report{
		GeneratedAt: now,
		Policy: PolicySummary{
			ArchiveAfterDays: e.policy.ArchiveAfterDays,
			DeleteAfterDays:  e.policy.DeleteAfterDays,
		},
		Departments: make(map[string]*DepartmentReport, len(depts)),
	}

	for _, dept := range depts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dr := &DepartmentReport{}
		for _, category := range Categories {
			docs, failed, err := listDocuments(e.policy.FolderPath(dept, category))
			rep.Errors += failed
			if err != nil {
				rep.Errors++
				e.logger.Warn("list folder", "department", dept, "category", category, "err", err)
				continue
			}
			for _, doc := range docs {
				switch category {
				case Working:
					dr.Working.add(doc)
					if doc.ModifiedAt.Before(archiveBefore) && !e.exempt(doc) {
						dr.Working.OldFiles++
					}
				case Archive:
					dr.Archive.add(doc)
					if doc.ModifiedAt.Before(expiringBefore) && !e.exempt(doc) {
						dr.Archive.Expiring++
					}
				case Final:
					dr.Final.add(doc)
				}
			}
		}
		rep.Departments[dept] = dr
	}
	return rep, nil
}

func (s *FolderSummary) add(d Document) {
	s.Count++
	s.TotalSize += d.SizeBytes
}

// Totals sums every department of the report.
func (r *Report) Totals() DepartmentReport {
	var t DepartmentReport
	for _, d := range r.Departments {
		t.Working.Count += d.Working.Count
		t.Working.TotalSize += d.Working.TotalSize
		t.Working.OldFiles += d.Working.OldFiles
		t.Archive.Count += d.Archive.Count
		t.Archive.TotalSize += d.Archive.TotalSize
		t.Archive.Expiring += d.Archive.Expiring
		t.Final.Count += d.Final.Count
		t.Final.TotalSize += d.Final.TotalSize
	}
	return t
}
