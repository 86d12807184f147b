package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"sewernet/internal/design"
	"sewernet/internal/domain"
)

// DefaultSheetName is the workbook sheet the design table is written
// to when the caller does not override it via config.ReportConfig.
const DefaultSheetName = "Design"

// LayoutsSheetName is the overview sheet ranking every enumerated
// layout by cumulative flow and final sizing cost (spec.md §6.3.1).
const LayoutsSheetName = "Layouts"

// LayoutColumns is the ordered column list for LayoutsSheetName.
var LayoutColumns = []string{"rank", "tree_signature", "cq", "total_cost", "algorithm"}

// LayoutSummary is one enumerated candidate's ranking-sheet row.
type LayoutSummary struct {
	Rank          int
	TreeSignature string
	CQ            float64
	TotalCost     float64
	Algorithm     string
}

// LayoutRow renders a LayoutSummary into LayoutColumns' ordered string
// values. TotalCost is blank when the candidate was never sized (no
// feasible design found for it).
func LayoutRow(s LayoutSummary) []string {
	cost := ""
	if s.TotalCost > 0 {
		cost = formatFloat(s.TotalCost, 2)
	}
	return []string{
		fmt.Sprintf("%d", s.Rank),
		s.TreeSignature,
		formatFloat(s.CQ, 3),
		cost,
		s.Algorithm,
	}
}

// WriteWorkbook writes details to path as a single-sheet .xlsx
// workbook: a bold header row followed by one row per arc, in the
// same order and with the same formatting as WriteCSV (spec.md
// §6.3.1). sheet may be empty, in which case DefaultSheetName is used.
func WriteWorkbook(path string, details []design.LinkDetail, g *domain.Graph, sheet string) error {
	return WriteWorkbookWithLayouts(path, details, g, sheet, nil)
}

// WriteWorkbookWithLayouts writes the winning design sheet plus, when
// layouts is non-empty, a LayoutsSheetName overview ranking every
// enumerated candidate by CQ and by the cost its sizer run reached
// (spec.md §6.3.1's layout-comparison sheet).
func WriteWorkbookWithLayouts(path string, details []design.LinkDetail, g *domain.Graph, sheet string, layouts []LayoutSummary) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("report: build header style: %w", err)
	}

	writeSheetTable(f, sheet, Columns, headerStyle, len(details), func(r int) []string {
		return Row(details[r], g)
	})

	if len(layouts) > 0 {
		f.NewSheet(LayoutsSheetName)
		writeSheetTable(f, LayoutsSheetName, LayoutColumns, headerStyle, len(layouts), func(r int) []string {
			return LayoutRow(layouts[r])
		})
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save workbook %s: %w", path, err)
	}
	return nil
}

// writeSheetTable renders a bold header row followed by n data rows,
// each built by rowAt, into sheet.
func writeSheetTable(f *excelize.File, sheet string, columns []string, headerStyle int, n int, rowAt func(int) []string) {
	for i, h := range columns {
		f.SetCellValue(sheet, cellAddr(i, 1), h)
	}
	lastCol := cellAddr(len(columns)-1, 1)
	f.SetCellStyle(sheet, cellAddr(0, 1), lastCol, headerStyle)

	for r := 0; r < n; r++ {
		row := r + 2
		for c, v := range rowAt(r) {
			f.SetCellStr(sheet, cellAddr(c, row), v)
		}
	}

	f.SetColWidth(sheet, "A", columnLetter(len(columns)-1), 14)
}

// cellAddr builds a cell reference from a zero-based column index and
// a one-based row number.
func cellAddr(col, row int) string {
	return fmt.Sprintf("%s%d", columnLetter(col), row)
}

// columnLetter converts a zero-based column index to its spreadsheet
// letter(s) (0 -> "A", 25 -> "Z", 26 -> "AA", ...).
func columnLetter(col int) string {
	var s string
	for col >= 0 {
		s = string(rune('A'+col%26)) + s
		col = col/26 - 1
	}
	return s
}
