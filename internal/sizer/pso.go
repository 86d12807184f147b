package sizer

import (
	"context"
	"math/rand"
)

// particle is one swarm member: its current position, velocity, and
// the best position it has personally visited.
type particle struct {
	position     []float64
	velocity     []float64
	bestPosition []float64
	bestCost     float64
	cost         float64
}

// runPSO runs particle swarm optimization with linearly annealed
// inertia and acceleration coefficients — w, c1, and c2 each move
// from their Start value toward their End value over the run, so the
// swarm explores early and exploits late (spec.md §4.6).
func runPSO(ctx context.Context, bounds []Bound, cost CostFunc, opts *Options, rng *rand.Rand) *Result {
	dims := len(bounds)
	population := opts.PopulationSize
	if population <= 0 {
		population = 1
	}

	vmax := make([]float64, dims)
	for i, b := range bounds {
		vmax[i] = 0.15 * b.Range()
	}

	swarm := make([]*particle, population)
	for i := range swarm {
		pos := make([]float64, dims)
		vel := make([]float64, dims)
		for d, b := range bounds {
			pos[d] = b.Min + rng.Float64()*b.Range()
			vel[d] = (rng.Float64()*2 - 1) * vmax[d]
		}
		c := cost(pos)
		swarm[i] = &particle{
			position:     pos,
			velocity:     vel,
			bestPosition: cloneDesign(pos),
			bestCost:     c,
			cost:         c,
		}
	}

	globalBest := cloneDesign(swarm[0].position)
	globalBestCost := swarm[0].cost
	for _, p := range swarm {
		if p.cost < globalBestCost {
			globalBestCost = p.cost
			globalBest = cloneDesign(p.position)
		}
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 1
	}

	history := make([]float64, 0, iterations)

	completed := 0
	for iter := 0; iter < iterations; iter++ {
		if contextDone(ctx) {
			break
		}

		t := float64(iter) / float64(iterations)
		w := opts.PSOInertiaStart - (opts.PSOInertiaStart-opts.PSOInertiaEnd)*t
		c1 := opts.PSOCognitiveStart - (opts.PSOCognitiveStart-opts.PSOCognitiveEnd)*t
		c2 := opts.PSOSocialStart - (opts.PSOSocialStart-opts.PSOSocialEnd)*t

		for _, p := range swarm {
			for d, b := range bounds {
				r1, r2 := rng.Float64(), rng.Float64()
				cognitive := c1 * r1 * (p.bestPosition[d] - p.position[d])
				social := c2 * r2 * (globalBest[d] - p.position[d])
				v := w*p.velocity[d] + cognitive + social
				if v > vmax[d] {
					v = vmax[d]
				} else if v < -vmax[d] {
					v = -vmax[d]
				}
				p.velocity[d] = v
				p.position[d] = b.Clip(p.position[d] + v)
			}

			p.cost = cost(p.position)
			if p.cost < p.bestCost {
				p.bestCost = p.cost
				p.bestPosition = cloneDesign(p.position)

				if p.cost < globalBestCost {
					globalBestCost = p.cost
					globalBest = cloneDesign(p.position)
				}
			}
		}

		history = append(history, globalBestCost)
		completed = iter + 1
	}

	return &Result{
		Algorithm:          AlgorithmPSO,
		BestDesign:         globalBest,
		BestCost:           globalBestCost,
		Iterations:         completed,
		ConvergenceHistory: history,
	}
}
