// Package sizer searches the (diameter, slope) design space of a
// directed Layout for the lowest-penalized-cost component sizing
// (spec.md §4.6). Four population-based metaheuristics share one
// contract — cost function in, best design out — so a caller can swap
// algorithms, or run all four and keep the winner, without touching
// internal/design.
//
// # Algorithm Selection
//
//   - AlgorithmPSO: particle swarm, linearly annealed inertia. The
//     primary algorithm; fastest to converge on this problem shape.
//   - AlgorithmGA: tournament selection, SBX crossover, polynomial
//     mutation, elitism.
//   - AlgorithmAGA: binary-encoded GA with a shrinking mating pool and
//     early stopping once improvement stalls.
//   - AlgorithmACO: continuous ant colony optimization over a
//     discretized pheromone grid.
//
// # Determinism
//
// Every algorithm is seeded from Options.Seed. The same seed, bounds,
// and cost function reproduce the same search trajectory.
package sizer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Algorithm names an optimizer variant.
type Algorithm string

const (
	AlgorithmPSO Algorithm = "pso"
	AlgorithmGA  Algorithm = "ga"
	AlgorithmAGA Algorithm = "aga"
	AlgorithmACO Algorithm = "aco"
)

// Bound is the inclusive search range of one design-vector dimension.
type Bound struct {
	Min float64
	Max float64
}

// Range returns Max - Min.
func (b Bound) Range() float64 {
	return b.Max - b.Min
}

// Clip constrains v to [Min, Max].
func (b Bound) Clip(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Bounds builds the search-space bounds for a sizing problem with
// nLinks arcs: two dimensions per arc — a diameter-catalog index in
// [0, nDiameters-1] and a slope in [minSlope, maxSlope] — in the same
// interleaved order internal/design.Evaluate expects (spec.md §4.6).
func Bounds(nLinks, nDiameters int, minSlope, maxSlope float64) []Bound {
	bounds := make([]Bound, 0, nLinks*2)
	for i := 0; i < nLinks; i++ {
		bounds = append(bounds, Bound{Min: 0, Max: float64(nDiameters - 1)})
		bounds = append(bounds, Bound{Min: minSlope, Max: maxSlope})
	}
	return bounds
}

// CostFunc scores one candidate design vector. Implementations must
// be safe to call repeatedly and produce a finite result for every
// point inside Bounds — internal/design.Evaluator.Evaluate satisfies
// this by construction (it never panics, only penalizes).
type CostFunc func(design []float64) float64

// Options configures a sizer run. Zero values are not valid; use
// DefaultOptions and override what the caller needs, builder-style:
//
//	opts := sizer.DefaultOptions().WithSeed(42).WithIterations(200)
type Options struct {
	Algorithm      Algorithm
	PopulationSize int
	Iterations     int
	Seed           int64

	PSOInertiaStart  float64
	PSOInertiaEnd    float64
	PSOCognitiveStart float64
	PSOCognitiveEnd   float64
	PSOSocialStart    float64
	PSOSocialEnd      float64

	GATournamentSize int
	GAElitismRate    float64
	GACrossoverEta   float64
	GAMutationEta    float64

	AGABitsPerGene int

	ACOAlpha float64
	ACOBeta  float64
	ACORho   float64
	ACOQ0    float64
}

// DefaultOptions returns the reference deployment's tuning (SPEC_FULL
// §4.6.2), running PSO over 40 individuals for 150 iterations.
func DefaultOptions() *Options {
	return &Options{
		Algorithm:      AlgorithmPSO,
		PopulationSize: 40,
		Iterations:     150,
		Seed:           0,

		PSOInertiaStart:   0.7,
		PSOInertiaEnd:     0.2,
		PSOCognitiveStart: 2.0,
		PSOCognitiveEnd:   0.5,
		PSOSocialStart:    2.0,
		PSOSocialEnd:      0.5,

		GATournamentSize: 3,
		GAElitismRate:    0.1,
		GACrossoverEta:   20.0,
		GAMutationEta:    20.0,

		AGABitsPerGene: 8,

		ACOAlpha: 1.0,
		ACOBeta:  2.0,
		ACORho:   0.1,
		ACOQ0:    0.9,
	}
}

// WithAlgorithm returns opts with the algorithm set, for chaining.
func (o *Options) WithAlgorithm(a Algorithm) *Options {
	o.Algorithm = a
	return o
}

// WithSeed returns opts with the RNG seed set, for chaining.
func (o *Options) WithSeed(seed int64) *Options {
	o.Seed = seed
	return o
}

// WithIterations returns opts with the iteration budget set, for chaining.
func (o *Options) WithIterations(n int) *Options {
	o.Iterations = n
	return o
}

// WithPopulationSize returns opts with the population size set, for chaining.
func (o *Options) WithPopulationSize(n int) *Options {
	o.PopulationSize = n
	return o
}

// Result is the outcome of one sizer run.
type Result struct {
	Algorithm  Algorithm
	BestDesign []float64
	BestCost   float64
	Iterations int
	Duration   time.Duration
	// ConvergenceHistory holds the best cost observed after each
	// completed iteration, in order (spec.md §4.6: "record g* per
	// iteration in a convergence history"). GA and AGA also record the
	// initial population's best cost as the first entry.
	ConvergenceHistory []float64
}

// Optimize dispatches to the configured algorithm and returns its best
// design. opts may be nil, in which case DefaultOptions is used. ctx
// cancellation is checked once per iteration; a cancelled run returns
// the best design found so far with a nil error.
func Optimize(ctx context.Context, bounds []Bound, cost CostFunc, opts *Options) (*Result, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("sizer: bounds must not be empty")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(opts.Seed))

	var result *Result
	switch opts.Algorithm {
	case AlgorithmGA:
		result = runGA(ctx, bounds, cost, opts, rng)
	case AlgorithmAGA:
		result = runAGA(ctx, bounds, cost, opts, rng)
	case AlgorithmACO:
		result = runACO(ctx, bounds, cost, opts, rng)
	case AlgorithmPSO, "":
		result = runPSO(ctx, bounds, cost, opts, rng)
	default:
		return nil, fmt.Errorf("sizer: unknown algorithm %q", opts.Algorithm)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CompareAll runs every algorithm against the same bounds and cost
// function, each with its own RNG derived from opts.Seed, and returns
// all four results sorted ascending by BestCost — results[0] is the
// overall winner (spec.md §4.6.1 / SPEC_FULL §4.6.1, "compare all
// algorithms").
func CompareAll(ctx context.Context, bounds []Bound, cost CostFunc, opts *Options) ([]*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	algorithms := []Algorithm{AlgorithmPSO, AlgorithmGA, AlgorithmAGA, AlgorithmACO}
	results := make([]*Result, len(algorithms))
	errs := make([]error, len(algorithms))

	type job struct {
		idx  int
		algo Algorithm
	}
	jobs := make(chan job, len(algorithms))
	for i, a := range algorithms {
		jobs <- job{idx: i, algo: a}
	}
	close(jobs)

	workers := len(algorithms)
	done := make(chan struct{}, workers)
	for w := 0; w < workers; w++ {
		go func() {
			for j := range jobs {
				runOpts := *opts
				runOpts.Algorithm = j.algo
				runOpts.Seed = opts.Seed + int64(j.idx)
				results[j.idx], errs[j.idx] = Optimize(ctx, bounds, cost, &runOpts)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].BestCost < results[j].BestCost
	})

	return results, nil
}

// cloneDesign returns an independent copy of a design vector.
func cloneDesign(d []float64) []float64 {
	c := make([]float64, len(d))
	copy(c, d)
	return c
}

// contextDone reports whether ctx has been cancelled; nil ctx never is.
func contextDone(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
