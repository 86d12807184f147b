// Package report exports a sized layout's per-arc details to CSV and
// to an Excel workbook (spec.md §6.3). Grounded on
// original_source/sewer_opt/io_helpers.py's
// save_results_with_input_details, with the numeric formatting
// spec.md §6 states explicitly (length 2 d.p., velocity/d_D/d 3 d.p.,
// flow 3 d.p.) taking precedence over the source's own rounding where
// the two disagree.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"sewernet/internal/design"
	"sewernet/internal/domain"
)

// Columns is the exact, ordered CSV/workbook column list (spec.md §6.3).
var Columns = []string{
	"link", "from_node", "to_node", "length", "diameter", "slope", "slope_ratio",
	"flow_lps", "velocity", "d_D", "d", "status", "max_preceding_diameter",
	"input_flow_lps", "x", "y", "z",
}

// Row renders one design.LinkDetail, joined against its upstream
// node's coordinates and declared inflow, into the ordered string
// values of Columns.
func Row(detail design.LinkDetail, g *domain.Graph) []string {
	var inputFlow, x, y, z string
	if n, ok := g.GetNode(detail.From); ok {
		inputFlow = formatFloat(n.Q, 3)
		x = formatFloat(n.X, 2)
		y = formatFloat(n.Y, 2)
		z = formatFloat(n.Z, 2)
	}

	maxPreceding := ""
	if detail.HasMaxPreceding {
		maxPreceding = formatFloat(detail.MaxPrecedingDiameter, 2)
	}

	return []string{
		fmt.Sprintf("%d", detail.Link),
		fmt.Sprintf("%d", detail.From),
		fmt.Sprintf("%d", detail.To),
		formatFloat(detail.Length, 2),
		formatFloat(detail.Diameter, 2),
		formatFloat(detail.Slope, 4),
		detail.SlopeRatio,
		formatFloat(detail.FlowLPS, 3),
		formatFloat(detail.Velocity, 3),
		formatFloat(detail.DepthRatio, 3),
		formatFloat(detail.Depth, 3),
		detail.Status,
		maxPreceding,
		inputFlow,
		x, y, z,
	}
}

func formatFloat(v float64, decimals int) string {
	return fmt.Sprintf("%.*f", decimals, v)
}

// WriteCSV writes details to path as a header row plus one row per
// arc, in topological order as produced by design.Evaluator.Evaluate.
func WriteCSV(path string, details []design.LinkDetail, g *domain.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, detail := range details {
		if err := w.Write(Row(detail, g)); err != nil {
			return fmt.Errorf("report: write row for link %d: %w", detail.Link, err)
		}
	}
	return w.Error()
}
