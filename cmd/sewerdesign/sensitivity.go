package main

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"

	"sewernet/internal/design"
	"sewernet/internal/domain"
	"sewernet/internal/flow"
	"sewernet/internal/logger"
	"sewernet/internal/sizer"
)

// runSensitivityAnalysis grounds on optimizer.py's
// run_sensitivity_analysis: a PSO run per (iterations, swarm size)
// pair on the already-chosen winning layout. There is no chart
// output — nothing in the example corpus wires a plotting library, so
// the grid is reported as a printed table instead (SPEC_FULL §6.2).
func runSensitivityAnalysis(ctx context.Context, in *bufio.Reader, dt *flow.DirectedTree, g *domain.Graph, e *design.Evaluator, minSlope, maxSlope float64) {
	sweepLog := logger.WithContext(ctx, "stage", "sensitivity")
	swarmSizes, iterationsList := promptSensitivitySettings(in)
	bounds := sizer.Bounds(len(dt.TopologicalArcs()), len(e.Diameters), minSlope, maxSlope)
	cost := costFuncFor(ctx, e, dt, g)

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SENSITIVITY ANALYSIS: Swarm Size vs Cost")
	fmt.Println(strings.Repeat("=", 80))

	totalRuns := len(swarmSizes) * len(iterationsList)
	run := 0
	for _, iterations := range iterationsList {
		for _, swarmSize := range swarmSizes {
			run++
			fmt.Printf("\n[%d/%d] Testing: Swarm=%d, Iterations=%d\n", run, totalRuns, swarmSize, iterations)

			opts := sizer.DefaultOptions().
				WithAlgorithm(sizer.AlgorithmPSO).
				WithPopulationSize(swarmSize).
				WithIterations(iterations)

			result, err := sizer.Optimize(ctx, bounds, cost, opts)
			if err != nil {
				sweepLog.Warn("sensitivity run failed", "swarm_size", swarmSize, "iterations", iterations, "error", err)
				continue
			}
			fmt.Printf("    Result: %.2f\n", result.BestCost)
		}
	}
}

// runAlgorithmComparison grounds on cli.py's ask_and_run_comparison +
// optimizer.py's compare_algorithms: sizer.CompareAll already runs
// all four algorithms concurrently, so this just reports the ranking.
func runAlgorithmComparison(ctx context.Context, in *bufio.Reader, dt *flow.DirectedTree, g *domain.Graph, e *design.Evaluator, minSlope, maxSlope float64) {
	populationSize, iterations := promptComparisonSettings(in)
	bounds := sizer.Bounds(len(dt.TopologicalArcs()), len(e.Diameters), minSlope, maxSlope)
	cost := costFuncFor(ctx, e, dt, g)

	opts := sizer.DefaultOptions().
		WithPopulationSize(populationSize).
		WithIterations(iterations)

	fmt.Println("\nRunning Algorithm Comparison with settings:")
	fmt.Printf("Population Size  : %d\n", populationSize)
	fmt.Printf("Iteration Count  : %d\n", iterations)

	results, err := sizer.CompareAll(ctx, bounds, cost, opts)
	if err != nil {
		logger.WithContext(ctx, "stage", "comparison").Error("algorithm comparison failed", "error", err)
		return
	}

	ranked := make([]*sizer.Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].BestCost < ranked[j].BestCost })

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("ALGORITHM COMPARISON RESULTS")
	fmt.Println(strings.Repeat("=", 80))
	for rank, r := range ranked {
		fmt.Printf("%d. %-5s  cost=%.2f  duration=%s\n", rank+1, r.Algorithm, r.BestCost, r.Duration)
	}
}
