/*
Package report renders a session as an XLSX workbook.

SHEETS:
  Structure: company header, one row per grade, signatories
  Jobs:      one row per job with its score or rank and grade
  Warnings:  structure diagnostics (only when there are any)

Amounts are written as numbers with a thousands format so the workbook
stays usable for further calculation.
*/
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/warp/pay-structure/engine"
	"github.com/warp/pay-structure/grading"
	"github.com/xuri/excelize/v2"
)

const (
	SheetStructure = "Structure"
	SheetJobs      = "Jobs"
	SheetWarnings  = "Warnings"

	// gradeHeaderRow is where the grade table starts on the structure sheet.
	gradeHeaderRow = 6
)

// Built-in excelize number formats.
const (
	numFmtThousands = 3 // #,##0
	numFmtDecimal   = 2 // 0.00
)

type styles struct {
	title   int
	header  int
	money   int
	percent int
}

// WriteXLSX writes the session workbook to w.
func WriteXLSX(w io.Writer, s *engine.Session) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// Build creates the workbook in memory. The caller closes it.
func Build(s *engine.Session) (*excelize.File, error) {
	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	steps := []func(*excelize.File, *engine.Session, styles) error{
		writeStructure,
		writeJobs,
		writeWarnings,
	}
	for _, step := range steps {
		if err := step(f, s, st); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return st, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	}); err != nil {
		return st, err
	}
	if st.money, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousands}); err != nil {
		return st, err
	}
	st.percent, err = f.NewStyle(&excelize.Style{NumFmt: numFmtDecimal})
	return st, err
}

// =============================================================================
// STRUCTURE SHEET
// =============================================================================

func writeStructure(f *excelize.File, s *engine.Session, st styles) error {
	if err := f.SetSheetName("Sheet1", SheetStructure); err != nil {
		return err
	}
	sh := SheetStructure

	company := s.Config.CompanyName
	if company == "" {
		company = "-"
	}
	header := [][]any{
		{"Pay Structure", company},
		{"Method", string(s.Method)},
		{"Parameter", s.Param},
		{"Base wage", s.Config.BaseWage},
	}
	for i, row := range header {
		if err := setRow(f, sh, 1, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sh, "A1", "B1", st.title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sh, "B4", "B4", st.money); err != nil {
		return err
	}

	columns := []any{"Grade", "Name", "Score range", "Spread %", "Minimum", "Midpoint", "Maximum", "Overlap %", "Jobs"}
	if err := setRow(f, sh, 1, gradeHeaderRow, columns); err != nil {
		return err
	}
	if err := styleRow(f, sh, gradeHeaderRow, len(columns), st.header); err != nil {
		return err
	}

	row := gradeHeaderRow
	for _, g := range s.Grades {
		row++
		overlap, _ := g.Overlap.Float64()
		values := []any{g.ID, g.Name, g.RangeLabel, g.Spread, g.Min, g.Mid, g.Max, overlap, strings.Join(g.JobTitles, ", ")}
		if err := setRow(f, sh, 1, row, values); err != nil {
			return err
		}
	}
	if row > gradeHeaderRow {
		if err := f.SetCellStyle(sh, cell(5, gradeHeaderRow+1), cell(7, row), st.money); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell(8, gradeHeaderRow+1), cell(8, row), st.percent); err != nil {
			return err
		}
	}

	row += 2
	signatures := [][]any{
		{"Prepared by", s.Config.Creator.Name, s.Config.Creator.Title},
		{"Approved by", s.Config.Approver.Name, s.Config.Approver.Title},
	}
	for i, r := range signatures {
		if err := setRow(f, sh, 1, row+i, r); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sh, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "B", "H", 14); err != nil {
		return err
	}
	return f.SetColWidth(sh, "I", "I", 60)
}

// =============================================================================
// JOBS SHEET
// =============================================================================

func writeJobs(f *excelize.File, s *engine.Session, st styles) error {
	if _, err := f.NewSheet(SheetJobs); err != nil {
		return err
	}
	sh := SheetJobs

	scoreLabel := "Points"
	var factorKeys []string
	if s.Method == grading.MethodRanking {
		scoreLabel = "Rank"
	} else {
		factorKeys = s.Factors.Keys()
	}

	columns := []any{"ID", "Title", scoreLabel, "Grade"}
	for _, k := range factorKeys {
		columns = append(columns, s.Factors.Factors[k].Label)
	}
	columns = append(columns, "Note")
	if err := setRow(f, sh, 1, 1, columns); err != nil {
		return err
	}
	if err := styleRow(f, sh, 1, len(columns), st.header); err != nil {
		return err
	}

	assigned := s.Assignments()
	for i, j := range s.Jobs {
		var grade any = ""
		if id, ok := assigned[j.ID]; ok {
			grade = id
		}
		values := []any{j.ID, j.Title, j.Score, grade}
		for _, k := range factorKeys {
			values = append(values, optionLabel(s, k, j.Factors[k]))
		}
		values = append(values, j.Note)
		if err := setRow(f, sh, 1, i+2, values); err != nil {
			return err
		}
	}
	return f.SetColWidth(sh, "B", "B", 32)
}

func optionLabel(s *engine.Session, factorID string, value int) string {
	opt, ok := s.Factors.Factors[factorID].Option(value)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s (%d)", opt.Label, opt.Score)
}

// =============================================================================
// WARNINGS SHEET
// =============================================================================

func writeWarnings(f *excelize.File, s *engine.Session, st styles) error {
	warnings := s.Diagnostics()
	if len(warnings) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetWarnings); err != nil {
		return err
	}
	sh := SheetWarnings
	if err := setRow(f, sh, 1, 1, []any{"Grade", "Code", "Message"}); err != nil {
		return err
	}
	if err := styleRow(f, sh, 1, 3, st.header); err != nil {
		return err
	}
	for i, w := range warnings {
		if err := setRow(f, sh, 1, i+2, []any{w.GradeID, string(w.Code), w.Message}); err != nil {
			return err
		}
	}
	return f.SetColWidth(sh, "C", "C", 70)
}

// =============================================================================
// HELPERS
// =============================================================================

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setRow(f *excelize.File, sheet string, col, row int, values []any) error {
	return f.SetSheetRow(sheet, cell(col, row), &values)
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	return f.SetCellStyle(sheet, cell(1, row), cell(width, row), style)
}
