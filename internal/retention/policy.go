package retention

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category folder names inside a department.
const (
	Working = "Working"
	Archive = "Archive"
	Final   = "Final"
)

// Categories lists the category folders in scan order.
var Categories = []string{Working, Archive, Final}

// Policy holds the retention parameters. It is built once at startup and
// copied into every engine; the engine never re-reads configuration.
type Policy struct {
	BasePath          string
	ArchiveAfterDays  int
	DeleteAfterDays   int
	Departments       []string
	ExclusionPatterns []string
}

func (p Policy) clone() Policy {
	p.Departments = append([]string(nil), p.Departments...)
	p.ExclusionPatterns = append([]string(nil), p.ExclusionPatterns...)
	return p
}

// FolderPath returns {base}/{department}/{category}.
func (p Policy) FolderPath(department, category string) string {
	return filepath.Join(p.BasePath, department, category)
}

// targets resolves the department set for a call: the named department, or
// every configured department when name is empty.
func (p Policy) targets(department string) ([]string, error) {
	if department == "" {
		return append([]string(nil), p.Departments...), nil
	}
	if err := ValidateDepartment(department); err != nil {
		return nil, err
	}
	return []string{department}, nil
}

// ValidateDepartment rejects names that would resolve outside the base path.
func ValidateDepartment(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidDepartment, name)
	}
	return nil
}
