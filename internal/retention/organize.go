package retention

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/docuflow-cli/internal/utils"
)

// Finalize moves a document into the department's Final folder and returns
// its new path. The Final folder is created when missing. An existing file of
// the same name is never replaced; the moved file gets a
// stem_final_YYYYMMDD.ext name instead. A retention marker moves with its
// document.
func (e *Engine) Finalize(path, department string) (string, error) {
	if err := ValidateDepartment(department); err != nil {
		return "", err
	}
	if err := e.checkBase(); err != nil {
		return "", err
	}
	if !utils.IsRegular(path) {
		return "", fmt.Errorf("finalize %s: %w", path, ErrNotFound)
	}
	finalDir := e.policy.FolderPath(department, Final)
	if abs, err := filepath.Abs(path); err == nil {
		if absFinal, err := filepath.Abs(finalDir); err == nil && filepath.Dir(abs) == absFinal {
			return "", fmt.Errorf("%s is already in %s", path, finalDir)
		}
	}
	if err := utils.EnsureDir(finalDir); err != nil {
		return "", fmt.Errorf("create final folder: %w", err)
	}
	dest, err := e.freeDestination(finalDir, filepath.Base(path), "final")
	if err != nil {
		return "", err
	}
	if err := utils.MoveFile(path, dest); err != nil {
		return "", fmt.Errorf("finalize %s: %w", path, err)
	}
	if IsMarked(path) {
		if err := utils.MoveFile(MarkerPath(path), MarkerPath(dest)); err != nil {
			e.logger.Warn("move retention marker", "file", path, "err", err)
		}
	}
	e.logger.Info("document finalized", "department", department, "file", path, "destination", dest)
	if err := e.org.Appendf("Finalized: %s -> %s", path, dest); err != nil {
		e.logger.Warn("write organization log", "err", err)
	}
	return dest, nil
}

// SearchResult is a document whose name matched a search.
type SearchResult struct {
	Department string
	Category   string
	Document
}

// Search finds documents whose name contains query, ignoring case, in every
// category folder of one department or of all configured departments.
// Results are ordered by department, category and name.
func (e *Engine) Search(ctx context.Context, query, department string) ([]SearchResult, error) {
	if err := e.checkBase(); err != nil {
		return nil, err
	}
	depts, err := e.policy.targets(department)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)

	var out []SearchResult
	for _, dept := range depts {
		for _, cat := range Categories {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			docs, _, err := listDocuments(e.policy.FolderPath(dept, cat))
			if err != nil {
				e.logger.Warn("list folder", "department", dept, "category", cat, "err", err)
				continue
			}
			for _, doc := range docs {
				if strings.Contains(strings.ToLower(doc.Name), needle) {
					out = append(out, SearchResult{Department: dept, Category: cat, Document: doc})
				}
			}
		}
	}
	return out, nil
}
