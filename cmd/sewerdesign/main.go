// Command sewerdesign lays out and sizes a gravity sewer network from a
// surveyed manhole/section file (spec.md §6).
//
// # Pipeline
//
//	input file ─▶ parse ─▶ enumerate candidate layouts ─▶ rank by CQ
//	           ─▶ size the best layouts (PSO/GA/AGA/ACO, or all four)
//	           ─▶ export CSV + workbook ─▶ persist run history
//
// The top N candidate layouts (by ascending cumulative flow, spec.md
// §4.2) are sized concurrently, bounded by -workers; the lowest total
// cost across all of them wins. Two further, optional passes run after
// the winner is chosen, both informational: a sensitivity sweep over
// swarm-size x iteration-count grids, and a head-to-head comparison of
// all four algorithms — neither changes the winning design, matching
// original_source/sewer_opt/cli.py's prompt flow.
//
// # Configuration
//
// Configuration loads via internal/config, environment prefix
// SEWERNET_, with config.yaml / config/config.yaml /
// /etc/sewernet/config.yaml searched in that order (CONFIG_PATH
// overrides the search). See internal/config/loader.go for the full
// default tree: enumerator.tree_count, hydraulics.*, sizer.*,
// cache.*, database.*, report.*.
//
// # Exit codes
//
//	0  success
//	1  malformed input, or no feasible design found
//	2  input file missing or unreadable
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"sewernet/internal/apperror"
	"sewernet/internal/cache"
	"sewernet/internal/config"
	"sewernet/internal/cost"
	"sewernet/internal/design"
	"sewernet/internal/domain"
	"sewernet/internal/enumerator"
	"sewernet/internal/hydraulics"
	"sewernet/internal/logger"
	"sewernet/internal/metrics"
	"sewernet/internal/parse"
	"sewernet/internal/sizer"
)

func main() {
	os.Exit(run())
}

func run() int {
	inputPath := flag.String("input", "", "path to the network input file (required)")
	workers := flag.Int("workers", defaultWorkers(), "max candidate layouts sized concurrently")
	historyBackend := flag.String("history-backend", "memory", "run-history backend: memory or postgres")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "sewerdesign: -input is required")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sewerdesign: loading configuration: %v\n", err)
		return 1
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Component:  cfg.App.Name,
	})

	ctx := logger.ContextWithRunID(context.Background(), uuid.NewString())
	runLog := logger.WithContext(ctx)

	if cfg.Metrics.Enabled {
		metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}

	var hydraulicCache *cache.HydraulicCache
	if cfg.Cache.Enabled {
		backend, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			runLog.Warn("cache init failed, continuing without hydraulic memoization", "error", err)
		} else {
			hydraulicCache = cache.NewHydraulicCache(backend, cfg.Cache.DefaultTTL)
			runLog.Info("hydraulic cache initialized", "driver", cfg.Cache.Driver)
		}
	}

	repo, closeRepo, err := openHistoryRepository(ctx, *historyBackend, cfg)
	if err != nil {
		runLog.Warn("history repository unavailable, run summaries will not be persisted", "error", err)
	}
	defer closeRepo()

	if _, err := os.Stat(*inputPath); err != nil {
		fmt.Fprintf(os.Stderr, "sewerdesign: %v\n", err)
		return 2
	}

	g, validation, err := parse.ParseFile(*inputPath)
	if err != nil {
		runLog.Error("failed to parse input file", "path", *inputPath, "error", err)
		return 1
	}
	for _, w := range validation.WarningMessages() {
		runLog.Warn(w)
	}
	for _, e := range g.Validate() {
		runLog.Warn("graph validation", "error", e)
	}
	stats := domain.CalculateGraphStatistics(g)
	runLog.Info("graph ingested",
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"total_length_m", stats.TotalLength,
		"avg_degree", stats.AverageDegree,
		"connected", stats.IsConnected,
	)

	in := bufio.NewReader(os.Stdin)

	rng := rand.New(rand.NewSource(cfg.Sizer.Seed))
	enumerateTimer := metrics.Get().StartStageTimer("enumerate")
	trees := enumerator.Enumerate(g, cfg.Enumerator.TreeCount, rng)
	enumerateTimer.ObserveDuration()
	if len(trees) == 0 {
		runLog.Error("no spanning tree could be enumerated", "error", apperror.ErrNoFeasibleTree)
		return 1
	}
	if len(trees) < cfg.Enumerator.TreeCount {
		runLog.Warn("fewer candidate layouts than requested", "trees_requested", cfg.Enumerator.TreeCount, "trees_found", len(trees))
	}
	runLog.Info("candidate layouts enumerated", "trees_requested", cfg.Enumerator.TreeCount, "trees_found", len(trees))

	candidates := rankByCQ(g, trees)
	runLog.Info("layouts ranked by cumulative flow", "best_cq", candidates[0].cq, "worst_cq", candidates[len(candidates)-1].cq)

	algorithm, compareAll := promptAlgorithmChoice(in)
	nLayouts, populationSize, iterations := promptOptimizationSettings(in)
	if nLayouts > len(candidates) {
		nLayouts = len(candidates)
	}
	top := candidates[:nLayouts]

	evaluator := buildEvaluator(cfg, hydraulicCache)

	opts := sizer.DefaultOptions().
		WithAlgorithm(algorithm).
		WithPopulationSize(populationSize).
		WithIterations(iterations).
		WithSeed(cfg.Sizer.Seed)

	sized := sizeCandidates(ctx, top, g, evaluator, opts, cfg.Hydraulics.MinSlope, cfg.Hydraulics.MaxSlope, compareAll, *workers)
	winner := bestOf(sized)
	if winner == nil {
		runLog.Error("no candidate layout admits a feasible design")
		return 1
	}

	_, details := evaluator.Evaluate(ctx, winner.candidate.dt, g, winner.result.BestDesign)
	runLog.Info("winning layout selected",
		"layout_cq", winner.candidate.cq,
		"algorithm", winner.result.Algorithm,
		"iterations", winner.result.Iterations,
		"best_cost", winner.result.BestCost,
	)

	if err := exportReport(ctx, cfg, details, g, sized); err != nil {
		runLog.Error("report export failed", "error", err)
	}

	persistRunSummary(ctx, repo, *inputPath, g, winner, details)

	if askYesNo(in, "Do you want to run Sensitivity Analysis? (Y/N): ") {
		runSensitivityAnalysis(ctx, in, winner.candidate.dt, g, evaluator, cfg.Hydraulics.MinSlope, cfg.Hydraulics.MaxSlope)
	}

	if askYesNo(in, "Do you want to compare all algorithms? (Y/N): ") {
		runAlgorithmComparison(ctx, in, winner.candidate.dt, g, evaluator, cfg.Hydraulics.MinSlope, cfg.Hydraulics.MaxSlope)
	}

	return 0
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 1 {
		return n - 1
	}
	return 1
}

func buildEvaluator(cfg *config.Config, hydraulicCache *cache.HydraulicCache) *design.Evaluator {
	hyd := hydraulics.NewEvaluator(cfg.Hydraulics.ManningN)
	diameters := cfg.Hydraulics.Diameters
	if len(diameters) == 0 {
		diameters = cost.Diameters
	}
	params := design.Params{
		MinVelocity:        cfg.Hydraulics.MinVelocity,
		MaxVelocity:        cfg.Hydraulics.MaxVelocity,
		MaxFillRatio:       cfg.Hydraulics.MaxFillRatio,
		MinCoverDepth:      cfg.Hydraulics.MinCoverDepth,
		MaxCoverDepth:      cfg.Hydraulics.MaxCoverDepth,
		AssumedGroundCover: cfg.Hydraulics.AssumedGroundCover,
	}
	e := design.NewEvaluator(hyd, cost.DefaultTables(), diameters, params)
	if hydraulicCache != nil {
		e = e.WithCache(hydraulicCache)
	}
	return e
}

// algorithmFromChoice maps the cli.py-style menu choice to a
// sizer.Algorithm, plus whether the user asked to compare all four.
func algorithmFromChoice(choice string) (sizer.Algorithm, bool) {
	switch strings.ToUpper(strings.TrimSpace(choice)) {
	case "1":
		return sizer.AlgorithmPSO, false
	case "2":
		return sizer.AlgorithmGA, false
	case "3":
		return sizer.AlgorithmAGA, false
	case "4":
		return sizer.AlgorithmACO, false
	case "5":
		return sizer.AlgorithmPSO, true
	default:
		return "", false
	}
}
