package main

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"sewernet/internal/config"
	"sewernet/internal/design"
	"sewernet/internal/domain"
	"sewernet/internal/flow"
	"sewernet/internal/history"
	"sewernet/internal/logger"
	"sewernet/internal/metrics"
	"sewernet/internal/report"
	"sewernet/internal/sizer"
)

// layoutCandidate is one enumerated spanning tree, directed from the
// outlet and ranked by its cumulative flow (spec.md §4.2).
type layoutCandidate struct {
	tree *domain.Tree
	dt   *flow.DirectedTree
	cq   float64
}

// rankByCQ directs every tree from g's outlet and sorts the result
// ascending by CQ — lower is preferred, spec.md §4.2.
func rankByCQ(g *domain.Graph, trees []*domain.Tree) []*layoutCandidate {
	candidates := make([]*layoutCandidate, 0, len(trees))
	for _, t := range trees {
		dt := flow.Direct(t, g.OutletID)
		discharges := dt.Discharges(g)
		candidates = append(candidates, &layoutCandidate{
			tree: t,
			dt:   dt,
			cq:   flow.CQ(dt, discharges),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].cq < candidates[j].cq
	})
	return candidates
}

// sizedCandidate pairs a layout with the best sizer result found for
// it.
type sizedCandidate struct {
	candidate *layoutCandidate
	result    *sizer.Result
	seed      int64
}

// bestOf returns the sized candidate with the lowest BestCost, or nil
// if every candidate failed to size.
func bestOf(sized []*sizedCandidate) *sizedCandidate {
	var winner *sizedCandidate
	for _, s := range sized {
		if s == nil || s.result == nil {
			continue
		}
		if winner == nil || s.result.BestCost < winner.result.BestCost {
			winner = s
		}
	}
	return winner
}

// costFuncFor closes a design.Evaluator over one candidate's directed
// tree (spec.md §4.6: the sizer never touches internal/design
// directly, only through this one-argument contract).
func costFuncFor(ctx context.Context, e *design.Evaluator, dt *flow.DirectedTree, g *domain.Graph) sizer.CostFunc {
	return func(x []float64) float64 {
		cost, _ := e.Evaluate(ctx, dt, g, x)
		return cost
	}
}

// exportReport writes the winning design to CSV and/or an Excel
// workbook per cfg.Report, best-effort — SPEC_FULL §6.3.1 requires
// neither export to fail the run. The workbook additionally gets a
// "Layouts" sheet ranking every sized candidate by CQ, when sized is
// non-empty.
func exportReport(ctx context.Context, cfg *config.Config, details []design.LinkDetail, g *domain.Graph, sized []*sizedCandidate) error {
	log := logger.WithContext(ctx, "stage", "report")
	timer := metrics.Get().StartStageTimer("report")
	defer timer.ObserveDuration()
	dir := cfg.Report.OutputDir
	if dir == "" {
		dir = "."
	}

	var firstErr error
	if cfg.Report.WriteCSV {
		path := filepath.Join(dir, "design.csv")
		if err := report.WriteCSV(path, details, g); err != nil {
			firstErr = err
			log.Error("csv export failed", "path", path, "error", err)
		} else {
			log.Info("csv report written", "path", path)
		}
	}
	if cfg.Report.WriteWorkbook {
		path := filepath.Join(dir, "design.xlsx")
		layouts := layoutSummaries(sized)
		if err := report.WriteWorkbookWithLayouts(path, details, g, cfg.Report.WorkbookSheet, layouts); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Error("workbook export failed", "path", path, "error", err)
		} else {
			log.Info("workbook report written", "path", path)
		}
	}
	return firstErr
}

// layoutSummaries builds the "Layouts" overview rows from every sized
// candidate, ranked by ascending CQ (the order rankByCQ already
// produced sized in).
func layoutSummaries(sized []*sizedCandidate) []report.LayoutSummary {
	summaries := make([]report.LayoutSummary, 0, len(sized))
	for i, s := range sized {
		if s == nil {
			continue
		}
		summary := report.LayoutSummary{
			Rank:          i + 1,
			TreeSignature: s.candidate.tree.Signature(),
			CQ:            s.candidate.cq,
		}
		if s.result != nil {
			summary.TotalCost = s.result.BestCost
			summary.Algorithm = string(s.result.Algorithm)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// persistRunSummary records the completed run (SPEC_FULL §4.8). A
// failure here is logged and never fails the run — history is a
// convenience, not a correctness requirement.
func persistRunSummary(ctx context.Context, repo history.Repository, inputPath string, g *domain.Graph, winner *sizedCandidate, details []design.LinkDetail) {
	if repo == nil {
		return
	}

	run := &history.RunSummary{
		InputFile:     inputPath,
		NodeCount:     g.NodeCount(),
		EdgeCount:     g.EdgeCount(),
		Algorithm:     string(winner.result.Algorithm),
		Iterations:    winner.result.Iterations,
		Seed:          winner.seed,
		TreeSignature: winner.candidate.tree.Signature(),
		CQ:            winner.candidate.cq,
		TotalCost:     winner.result.BestCost,
		Violations:    tallyViolations(details),
	}

	if err := repo.Create(ctx, run); err != nil {
		logger.WithContext(ctx, "stage", "history").Warn("failed to persist run history", "error", err)
	}
}

func tallyViolations(details []design.LinkDetail) history.ViolationCounts {
	var v history.ViolationCounts
	for _, d := range details {
		switch {
		case d.Status == "OK":
		case strings.Contains(d.Status, "K >= 1/pi"):
			v.Infeasible++
		default:
			if strings.Contains(d.Status, "velocity below minimum") {
				v.LowVelocity++
			}
			if strings.Contains(d.Status, "velocity above maximum") {
				v.HighVelocity++
			}
			if strings.Contains(d.Status, "fill ratio above maximum") {
				v.OverFillRatio++
			}
			if strings.Contains(d.Status, "cover depth below minimum") {
				v.ShallowCover++
			}
			if strings.Contains(d.Status, "cover depth above maximum") {
				v.DeepCover++
			}
			if strings.Contains(d.Status, "forced up by progressive-diameter rule") {
				v.ProgressiveForce++
			}
		}
	}
	return v
}
