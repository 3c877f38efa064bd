package retention

import (
	"context"
	"sort"
	"time"

	"github.com/KaramelBytes/docuflow-cli/internal/clock"
)

// ExpiringRecord is an archived document that will become eligible for
// deletion within the alert window.
type ExpiringRecord struct {
	Path              string    `json:"path"`
	Name              string    `json:"name"`
	Department        string    `json:"department"`
	ModifiedAt        time.Time `json:"modified_at"`
	DaysUntilDeletion int       `json:"days_until_deletion"`
}

// ExpiringSoon lists archived documents whose age lies in
// [DeleteAfterDays-window, DeleteAfterDays], i.e. those not yet eligible for
// deletion that will be within window days. Already overdue documents are
// left to Enforce. Records are ordered by days remaining, then department,
// then name.
func (e *Engine) ExpiringSoon(ctx context.Context, window int, department string) ([]ExpiringRecord, error) {
	if window < 0 {
		return nil, ErrInvalidWindow
	}
	if err := e.checkBase(); err != nil {
		return nil, err
	}
	depts, err := e.policy.targets(department)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	deleteAt := clock.Threshold(now, e.policy.DeleteAfterDays)
	warnAt := clock.Threshold(now, e.policy.DeleteAfterDays-window)

	var out []ExpiringRecord
	for _, dept := range depts {
		docs, _, err := listDocuments(e.policy.FolderPath(dept, Archive))
		if err != nil {
			e.logger.Warn("list archive folder", "department", dept, "err", err)
			continue
		}
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if e.exempt(doc) {
				continue
			}
			if doc.ModifiedAt.Before(deleteAt) || doc.ModifiedAt.After(warnAt) {
				continue
			}
			out = append(out, ExpiringRecord{
				Path:              doc.Path,
				Name:              doc.Name,
				Department:        dept,
				ModifiedAt:        doc.ModifiedAt,
				DaysUntilDeletion: int(doc.ModifiedAt.Sub(deleteAt) / clock.Day),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DaysUntilDeletion != b.DaysUntilDeletion {
			return a.DaysUntilDeletion < b.DaysUntilDeletion
		}
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		return a.Name < b.Name
	})
	return out, nil
}

// GroupByDepartment buckets records per department, preserving their order.
func GroupByDepartment(records []ExpiringRecord) map[string][]ExpiringRecord {
	grouped := make(map[string][]ExpiringRecord)
	for _, r := range records {
		grouped[r.Department] = append(grouped[r.Department], r)
	}
	return grouped
}
