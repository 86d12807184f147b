package main

import (
	"context"
	"sync"

	"sewernet/internal/design"
	"sewernet/internal/domain"
	"sewernet/internal/logger"
	"sewernet/internal/metrics"
	"sewernet/internal/sizer"
)

// sizeCandidates sizes every candidate layout, bounded to workers
// concurrent goroutines (SPEC_FULL §5). Each goroutine gets its own
// RNG seed (opts.Seed + index), so results stay deterministic for a
// fixed seed regardless of goroutine scheduling. If compareAll is
// set, each candidate is sized with every one of the four algorithms
// via sizer.CompareAll and only its winner is kept (spec.md §4.6.1).
func sizeCandidates(ctx context.Context, candidates []*layoutCandidate, g *domain.Graph, e *design.Evaluator, opts *sizer.Options, minSlope, maxSlope float64, compareAll bool, workers int) []*sizedCandidate {
	if workers < 1 {
		workers = 1
	}

	sizeLog := logger.WithContext(ctx, "stage", "size")

	m := metrics.Get()
	timer := m.StartStageTimer("size")
	defer timer.ObserveDuration()

	out := make([]*sizedCandidate, len(candidates))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c *layoutCandidate) {
			defer wg.Done()
			defer func() { <-sem }()

			runOpts := *opts
			runOpts.Seed = opts.Seed + int64(i)
			bounds := sizer.Bounds(len(c.dt.TopologicalArcs()), len(e.Diameters), minSlope, maxSlope)
			cost := costFuncFor(ctx, e, c.dt, g)

			var result *sizer.Result
			var err error
			if compareAll {
				var results []*sizer.Result
				results, err = sizer.CompareAll(ctx, bounds, cost, &runOpts)
				if err == nil && len(results) > 0 {
					result = results[0]
				}
			} else {
				result, err = sizer.Optimize(ctx, bounds, cost, &runOpts)
			}

			if err != nil {
				sizeLog.Error("sizer run failed", "layout_cq", c.cq, "error", err)
				return
			}

			m.RecordSizerRun(string(result.Algorithm), true, result.Duration, result.BestCost, result.Iterations)

			out[i] = &sizedCandidate{candidate: c, result: result, seed: runOpts.Seed}
		}(i, c)
	}

	wg.Wait()
	return out
}
