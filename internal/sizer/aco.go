package sizer

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

// acoLevels is the number of discretized pheromone levels per
// dimension (SPEC_FULL §4.6.5 / original_source aco.py's
// n_discrete_levels).
const acoLevels = 50

const (
	acoTau0        = 1.0
	acoTauMin      = 0.01
	acoTauMax      = 10.0
	acoDepositQ    = 1.0
	acoCostEpsilon = 1e-10
)

// runACO runs continuous ant colony optimization over a discretized
// pheromone grid. Each dimension is split into acoLevels candidate
// values; an ant either exploits the highest-pheromone level (with
// probability Q0) or samples a level proportionally to
// pheromone^alpha — the heuristic^beta factor from the original
// algorithm is a per-dimension constant (1/range) and so cancels out
// of both the argmax and the normalized sampling distribution; it
// contributes nothing and is omitted. Each iteration the matrix is
// evaporated, the top 50th-percentile ants (ties included) deposit
// pheromone, and the matrix is then clipped to [tauMin, tauMax]
// (SPEC_FULL §4.6.5).
func runACO(ctx context.Context, bounds []Bound, cost CostFunc, opts *Options, rng *rand.Rand) *Result {
	dims := len(bounds)
	population := opts.PopulationSize
	if population <= 0 {
		population = 1
	}

	levels := make([][]float64, dims)
	pheromone := make([][]float64, dims)
	for d, b := range bounds {
		levels[d] = make([]float64, acoLevels)
		pheromone[d] = make([]float64, acoLevels)
		for l := 0; l < acoLevels; l++ {
			frac := float64(l) / float64(acoLevels-1)
			levels[d][l] = b.Min + frac*b.Range()
			pheromone[d][l] = acoTau0
		}
	}

	bestDesign := make([]float64, dims)
	for d := range bestDesign {
		bestDesign[d] = levels[d][acoLevels/2]
	}
	bestCost := cost(bestDesign)

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 1
	}

	type ant struct {
		design   []float64
		levelIdx []int
		cost     float64
	}

	history := make([]float64, 0, iterations)

	completed := 0
	for iter := 0; iter < iterations; iter++ {
		if contextDone(ctx) {
			break
		}

		ants := make([]*ant, population)
		for a := 0; a < population; a++ {
			design := make([]float64, dims)
			levelIdx := make([]int, dims)
			for d := 0; d < dims; d++ {
				idx := chooseLevel(pheromone[d], opts.ACOAlpha, opts.ACOQ0, rng)
				levelIdx[d] = idx
				design[d] = bounds[d].Clip(perturbLevel(levels[d], idx, rng))
			}
			ants[a] = &ant{design: design, levelIdx: levelIdx, cost: cost(design)}
		}

		minCost := ants[0].cost
		for _, an := range ants {
			if an.cost < minCost {
				minCost = an.cost
			}
		}
		if minCost < bestCost {
			bestCost = minCost
			for _, an := range ants {
				if an.cost == minCost {
					bestDesign = cloneDesign(an.design)
					break
				}
			}
		}

		for d := 0; d < dims; d++ {
			for l := 0; l < acoLevels; l++ {
				pheromone[d][l] *= (1 - opts.ACORho)
			}
		}

		costs := make([]float64, len(ants))
		for i, an := range ants {
			costs[i] = an.cost
		}
		median := percentile(costs, 50)
		for _, an := range ants {
			if an.cost > median && an.cost != minCost {
				continue
			}
			deposit := acoDepositQ / (an.cost + acoCostEpsilon)
			for d := 0; d < dims; d++ {
				pheromone[d][an.levelIdx[d]] += deposit
			}
		}

		for d := 0; d < dims; d++ {
			for l := 0; l < acoLevels; l++ {
				if pheromone[d][l] < acoTauMin {
					pheromone[d][l] = acoTauMin
				} else if pheromone[d][l] > acoTauMax {
					pheromone[d][l] = acoTauMax
				}
			}
		}

		history = append(history, bestCost)
		completed = iter + 1
	}

	return &Result{
		Algorithm:          AlgorithmACO,
		BestDesign:         bestDesign,
		BestCost:           bestCost,
		Iterations:         completed,
		ConvergenceHistory: history,
	}
}

// chooseLevel picks a pheromone-level index for one dimension: with
// probability q0 it exploits the level with the highest pheromone
// outright, otherwise it samples proportionally to pheromone^alpha.
func chooseLevel(pheromone []float64, alpha, q0 float64, rng *rand.Rand) int {
	if rng.Float64() < q0 {
		best := 0
		for i := 1; i < len(pheromone); i++ {
			if pheromone[i] > pheromone[best] {
				best = i
			}
		}
		return best
	}

	weights := make([]float64, len(pheromone))
	var total float64
	for i, p := range pheromone {
		w := math.Pow(p, alpha)
		weights[i] = w
		total += w
	}
	if total <= 1e-10 {
		return rng.Intn(len(pheromone))
	}

	r := rng.Float64() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return i
		}
	}
	return len(pheromone) - 1
}

// perturbLevel returns the chosen level's value, occasionally jittered
// toward an adjacent level by up to 10% of the inter-level gap — the
// "continuous variation" step that keeps ACO from being confined to
// exactly acoLevels distinct candidate values per dimension.
func perturbLevel(levels []float64, idx int, rng *rand.Rand) float64 {
	if idx <= 0 || idx >= len(levels)-1 || rng.Float64() >= 0.5 {
		return levels[idx]
	}
	gap := levels[1] - levels[0]
	return levels[idx] + (rng.Float64()*2-1)*0.1*gap
}

// percentile returns the p-th percentile of values (linear
// interpolation between ranks, matching numpy.percentile's default).
func percentile(values []float64, p float64) float64 {
	costs := append([]float64(nil), values...)
	sort.Float64s(costs)
	if len(costs) == 1 {
		return costs[0]
	}
	rank := p / 100 * float64(len(costs)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return costs[lo]
	}
	frac := rank - float64(lo)
	return costs[lo]*(1-frac) + costs[hi]*frac
}
