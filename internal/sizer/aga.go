package sizer

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

// agaCrossoverRate and agaMutationRate are the adaptive GA's
// operator rates (original_source adaptive_ga.py defaults); spec.md
// leaves these unspecified beyond "single-point crossover, bit-flip
// mutation with elite retention", so the source's tuning is kept.
const (
	agaCrossoverRate = 0.8
	agaMutationRate  = 0.1
)

// chromosome is one AGA individual — a fixed-length bitstring, one
// gene of Options.AGABitsPerGene bits per design dimension, plus its
// decoded real-valued genes and cached cost.
type chromosome struct {
	bits  []bool
	genes []float64
	cost  float64
}

// runAGA runs a binary-encoded adaptive genetic algorithm: each
// generation mates only the top 60% of the ranked population (a
// shrinking effective pool vs. plain GA's full-population
// tournament), retains an elite fraction, and the search stops early
// once the last 20% of the iteration budget has produced no
// improvement (SPEC_FULL §4.6.4 / original_source adaptive_ga.py).
func runAGA(ctx context.Context, bounds []Bound, cost CostFunc, opts *Options, rng *rand.Rand) *Result {
	dims := len(bounds)
	bitsPerGene := opts.AGABitsPerGene
	if bitsPerGene <= 0 {
		bitsPerGene = 8
	}
	chromLen := dims * bitsPerGene

	population := opts.PopulationSize
	if population <= 0 {
		population = 1
	}

	decode := func(bits []bool) []float64 {
		genes := make([]float64, dims)
		for d := 0; d < dims; d++ {
			value := decodeGene(bits[d*bitsPerGene:(d+1)*bitsPerGene], bounds[d])
			if d%2 == 0 {
				value = math.Round(value)
			}
			genes[d] = bounds[d].Clip(value)
		}
		return genes
	}

	pop := make([]*chromosome, population)
	for i := range pop {
		bits := make([]bool, chromLen)
		for b := range bits {
			bits[b] = rng.Intn(2) == 1
		}
		genes := decode(bits)
		pop[i] = &chromosome{bits: bits, genes: genes, cost: cost(genes)}
	}
	sortChromosomes(pop)

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
	stallWindow := int(0.2 * float64(iterations))
	stallStart := int(0.8 * float64(iterations))

	bestCost := pop[0].cost
	bestGenes := cloneDesign(pop[0].genes)
	history := []float64{bestCost}
	lastImprovement := 0

	completed := 0
	for gen := 0; gen < iterations; gen++ {
		if contextDone(ctx) {
			break
		}

		matingPoolSize := int(0.6 * float64(population))
		if matingPoolSize < 2 {
			matingPoolSize = 2
		}
		if matingPoolSize > population {
			matingPoolSize = population
		}
		matingPool := pop[:matingPoolSize]

		offspringNeeded := population - eliteCount
		offspring := make([]*chromosome, 0, offspringNeeded+1)
		for len(offspring) < offspringNeeded {
			parent1 := matingPool[rng.Intn(len(matingPool))]
			var childBits1, childBits2 []bool
			if rng.Float64() < agaCrossoverRate {
				childBits1, childBits2 = onePointCrossover(parent1.bits, pickOther(matingPool, parent1, rng).bits, rng)
			} else {
				childBits1 = append([]bool(nil), parent1.bits...)
				childBits2 = append([]bool(nil), pickOther(matingPool, parent1, rng).bits...)
			}

			mutateBits(childBits1, rng, agaMutationRate/float64(dims))
			genes1 := decode(childBits1)
			offspring = append(offspring, &chromosome{bits: childBits1, genes: genes1, cost: cost(genes1)})

			if len(offspring) < offspringNeeded {
				mutateBits(childBits2, rng, agaMutationRate/float64(dims))
				genes2 := decode(childBits2)
				offspring = append(offspring, &chromosome{bits: childBits2, genes: genes2, cost: cost(genes2)})
			}
		}

		combined := make([]*chromosome, 0, population+len(offspring))
		combined = append(combined, pop[:eliteCount]...)
		combined = append(combined, offspring...)
		sortChromosomes(combined)
		if len(combined) > population {
			combined = combined[:population]
		}
		pop = combined
		completed = gen + 1

		if pop[0].cost < bestCost {
			bestCost = pop[0].cost
			bestGenes = cloneDesign(pop[0].genes)
			lastImprovement = gen
		}
		history = append(history, bestCost)

		if gen >= stallStart && gen-lastImprovement >= stallWindow {
			break
		}
	}

	return &Result{
		Algorithm:          AlgorithmAGA,
		BestDesign:         bestGenes,
		BestCost:           bestCost,
		Iterations:         completed,
		ConvergenceHistory: history,
	}
}

func sortChromosomes(pop []*chromosome) {
	sort.Slice(pop, func(i, j int) bool { return pop[i].cost < pop[j].cost })
}

// pickOther returns a random mating-pool member distinct from exclude
// when the pool has more than one member, otherwise exclude itself.
func pickOther(pool []*chromosome, exclude *chromosome, rng *rand.Rand) *chromosome {
	if len(pool) < 2 {
		return exclude
	}
	for {
		candidate := pool[rng.Intn(len(pool))]
		if candidate != exclude {
			return candidate
		}
	}
}

// decodeGene maps a bitfield (MSB first) to a value within bound,
// evenly spaced over the gene's 2^len(bits) representable levels.
func decodeGene(bits []bool, bound Bound) float64 {
	var value uint64
	for _, b := range bits {
		value <<= 1
		if b {
			value |= 1
		}
	}
	maxValue := uint64(1)<<uint(len(bits)) - 1
	if maxValue == 0 {
		return bound.Min
	}
	fraction := float64(value) / float64(maxValue)
	return bound.Min + fraction*bound.Range()
}

// onePointCrossover produces two children from two parent bitstrings
// by swapping everything after a random cut point.
func onePointCrossover(p1, p2 []bool, rng *rand.Rand) ([]bool, []bool) {
	n := len(p1)
	if n < 2 {
		return append([]bool(nil), p1...), append([]bool(nil), p2...)
	}
	point := 1 + rng.Intn(n-1)

	child1 := make([]bool, n)
	copy(child1[:point], p1[:point])
	copy(child1[point:], p2[point:])

	child2 := make([]bool, n)
	copy(child2[:point], p2[:point])
	copy(child2[point:], p1[point:])

	return child1, child2
}

// mutateBits flips each bit independently with probability rate.
func mutateBits(bits []bool, rng *rand.Rand, rate float64) {
	for i := range bits {
		if rng.Float64() < rate {
			bits[i] = !bits[i]
		}
	}
}
