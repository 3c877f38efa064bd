// Package export writes retention reports as spreadsheets.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

const (
	summarySheet  = "Summary"
	expiringSheet = "Expiring"
)

var summaryHeader = []interface{}{
	"Department",
	"Working files", "Working bytes", "Due for archive",
	"Archive files", "Archive bytes", "Expiring within 7 days",
	"Final files", "Final bytes",
}

var expiringHeader = []interface{}{"Department", "File", "Last modified", "Days until deletion"}

// WriteReport saves rep, and the expiring records if any, to an .xlsx file.
func WriteReport(path string, rep *retention.Report, expiring []retention.ExpiringRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}
	depts := make([]string, 0, len(rep.Departments))
	for d := range rep.Departments {
		depts = append(depts, d)
	}
	sort.Strings(depts)
	row := 2
	for _, d := range depts {
		if err := writeRow(f, summarySheet, row, departmentRow(d, rep.Departments[d])); err != nil {
			return err
		}
		row++
	}
	totals := rep.Totals()
	if err := writeRow(f, summarySheet, row, departmentRow("Total", &totals)); err != nil {
		return err
	}
	row += 2
	meta := [][]interface{}{
		{"Generated", rep.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Archive after (days)", rep.Policy.ArchiveAfterDays},
		{"Delete after (days)", rep.Policy.DeleteAfterDays},
	}
	for _, m := range meta {
		if err := writeRow(f, summarySheet, row, m); err != nil {
			return err
		}
		row++
	}
	_ = f.SetCellStyle(summarySheet, "A1", "I1", bold)
	_ = f.SetColWidth(summarySheet, "A", "A", 18)
	_ = f.SetColWidth(summarySheet, "B", "I", 16)

	if len(expiring) > 0 {
		if _, err := f.NewSheet(expiringSheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if err := writeRow(f, expiringSheet, 1, expiringHeader); err != nil {
			return err
		}
		for i, r := range expiring {
			vals := []interface{}{r.Department, r.Name, r.ModifiedAt.Format("2006-01-02 15:04"), r.DaysUntilDeletion}
			if err := writeRow(f, expiringSheet, i+2, vals); err != nil {
				return err
			}
		}
		_ = f.SetCellStyle(expiringSheet, "A1", "D1", bold)
		_ = f.SetColWidth(expiringSheet, "A", "C", 20)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

func departmentRow(name string, d *retention.DepartmentReport) []interface{} {
	return []interface{}{
		name,
		d.Working.Count, d.Working.TotalSize, d.Working.OldFiles,
		d.Archive.Count, d.Archive.TotalSize, d.Archive.Expiring,
		d.Final.Count, d.Final.TotalSize,
	}
}

func writeRow(f *excelize.File, sheet string, row int, vals []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
