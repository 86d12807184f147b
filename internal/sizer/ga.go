package sizer

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

// gaCrossoverRate and gaMutationRate gate whether a given parent pair
// crosses over, and whether a given offspring mutates at all
// (original_source ga.py defaults; spec.md leaves these unspecified
// beyond "SBX crossover, polynomial mutation, elitism").
const (
	gaCrossoverRate = 0.8
	gaMutationRate  = 0.1
)

// individual is one GA chromosome — a real-valued design vector (even
// dimensions hold a diameter-catalog index, odd dimensions a slope)
// and its cached cost.
type individual struct {
	genes []float64
	cost  float64
}

// runGA runs a real-coded genetic algorithm: tournament selection,
// simulated binary crossover (SBX) with integer handling for the
// diameter-index dimensions, polynomial-flavoured mutation, and
// elitism (SPEC_FULL §4.6.3 / original_source ga.py).
func runGA(ctx context.Context, bounds []Bound, cost CostFunc, opts *Options, rng *rand.Rand) *Result {
	dims := len(bounds)
	population := opts.PopulationSize
	if population <= 0 {
		population = 1
	}

	pop := make([]*individual, population)
	for i := range pop {
		genes := make([]float64, dims)
		for d, b := range bounds {
			if d%2 == 0 {
				genes[d] = math.Round(b.Min + rng.Float64()*b.Range())
			} else {
				genes[d] = b.Min + rng.Float64()*b.Range()
			}
		}
		pop[i] = &individual{genes: genes, cost: cost(genes)}
	}
	sortPopulation(pop)

	eliteCount := int(opts.GAElitismRate * float64(population))
	if eliteCount < 1 {
		eliteCount = 1
	}
	if eliteCount > population {
		eliteCount = population
	}

	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = 1
	}

	history := make([]float64, 0, iterations+1)
	history = append(history, pop[0].cost)

	completed := 0
	for iter := 0; iter < iterations; iter++ {
		if contextDone(ctx) {
			break
		}

		selected := make([]*individual, population)
		for i := range selected {
			selected[i] = tournamentSelect(pop, opts.GATournamentSize, rng)
		}

		offspring := make([]*individual, 0, population+1)
		for i := 0; i < population; i += 2 {
			parent1 := selected[i]
			var parent2 *individual
			if i+1 < population {
				parent2 = selected[i+1]
			} else {
				parent2 = selected[0]
			}

			var child1, child2 []float64
			if rng.Float64() < gaCrossoverRate {
				child1, child2 = sbxCrossover(parent1.genes, parent2.genes, bounds, opts.GACrossoverEta, rng)
			} else {
				child1 = cloneDesign(parent1.genes)
				child2 = cloneDesign(parent2.genes)
			}

			offspring = append(offspring, &individual{genes: child1}, &individual{genes: child2})
			if len(offspring) >= population {
				break
			}
		}
		offspring = offspring[:population]

		for _, child := range offspring {
			polynomialMutate(child.genes, bounds, opts.GAMutationEta, rng)
			child.cost = cost(child.genes)
		}

		combined := make([]*individual, 0, eliteCount+len(offspring))
		combined = append(combined, pop[:eliteCount]...)
		combined = append(combined, offspring...)
		sortPopulation(combined)
		if len(combined) > population {
			combined = combined[:population]
		}
		pop = combined

		history = append(history, pop[0].cost)
		completed = iter + 1
	}

	return &Result{
		Algorithm:          AlgorithmGA,
		BestDesign:         cloneDesign(pop[0].genes),
		BestCost:           pop[0].cost,
		Iterations:         completed,
		ConvergenceHistory: history,
	}
}

func sortPopulation(pop []*individual) {
	sort.Slice(pop, func(i, j int) bool { return pop[i].cost < pop[j].cost })
}

// tournamentSelect picks the fittest of size random competitors.
func tournamentSelect(pop []*individual, size int, rng *rand.Rand) *individual {
	if size < 1 {
		size = 1
	}
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		candidate := pop[rng.Intn(len(pop))]
		if candidate.cost < best.cost {
			best = candidate
		}
	}
	return best
}

// sbxCrossover produces two children from two parents via simulated
// binary crossover, applied to every dimension. Diameter-index
// dimensions (every even index, per sizer.Bounds's interleaving) are
// rounded after crossover since they encode a discrete catalog
// position.
func sbxCrossover(p1, p2 []float64, bounds []Bound, eta float64, rng *rand.Rand) ([]float64, []float64) {
	dims := len(p1)
	c1 := make([]float64, dims)
	c2 := make([]float64, dims)

	for d := 0; d < dims; d++ {
		u := rng.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(eta+1))
		}

		child1 := 0.5 * ((1+beta)*p1[d] + (1-beta)*p2[d])
		child2 := 0.5 * ((1-beta)*p1[d] + (1+beta)*p2[d])

		c1[d] = bounds[d].Clip(child1)
		c2[d] = bounds[d].Clip(child2)

		if d%2 == 0 {
			c1[d] = bounds[d].Clip(math.Round(c1[d]))
			c2[d] = bounds[d].Clip(math.Round(c2[d]))
		}
	}
	return c1, c2
}

// polynomialMutate mutates genes in place, gated by gaMutationRate at
// the individual level and by 1/dims per dimension. Diameter-index
// dimensions step to an adjacent catalog index; slope dimensions take
// a scaled-down polynomial-mutation offset.
func polynomialMutate(genes []float64, bounds []Bound, eta float64, rng *rand.Rand) {
	if rng.Float64() >= gaMutationRate {
		return
	}

	n := float64(len(genes))
	for d, b := range bounds {
		if rng.Float64() >= 1/n {
			continue
		}

		if d%2 == 0 {
			step := 1.0
			if rng.Float64() >= 0.5 {
				step = -1.0
			}
			genes[d] = b.Clip(genes[d] + step)
			continue
		}

		u := rng.Float64()
		var deltaq float64
		if u < 0.5 {
			deltaq = math.Pow(2*u, 1/(eta+1)) - 1
		} else {
			deltaq = 1 - math.Pow(2*(1-u), 1/(eta+1))
		}
		genes[d] = b.Clip(genes[d] + deltaq*b.Range()*0.1)
	}
}
