// Package enumerator produces distinct candidate Layouts for a base
// graph (spec.md §4.1): the minimum spanning tree, then a round-robin
// of three randomized strategies until k unique trees accumulate or
// the attempt budget is exhausted.
package enumerator

import (
	"math/rand"
	"sort"

	"sewernet/internal/domain"
)

// MaxAttemptMultiplier is the default attempt budget per requested
// tree, per spec.md §4.1 ("100·k total attempts").
const MaxAttemptMultiplier = 100

// Enumerate returns up to k distinct spanning trees of g, sorted
// ascending by total edge length. The first tree is always the MST.
// Fewer than k trees is never an error — the caller logs a warning
// and proceeds (spec.md §4.1, §7 NoFeasibleTree).
func Enumerate(g *domain.Graph, k int, rng *rand.Rand) []*domain.Tree {
	if k <= 0 {
		return nil
	}

	type candidate struct {
		tree   *domain.Tree
		length float64
	}

	seen := make(map[string]bool)
	var candidates []candidate

	mst := minimumSpanningTree(g)
	candidates = append(candidates, candidate{tree: mst, length: mst.TotalLength()})
	seen[mst.Signature()] = true

	attempts := 0
	maxAttempts := k * MaxAttemptMultiplier

	for len(candidates) < k && attempts < maxAttempts {
		attempts++

		var tree *domain.Tree
		switch attempts % 3 {
		case 0:
			tree = randomDFSTree(g, rng)
		case 1:
			tree = randomKruskalTree(g, rng)
		default:
			tree = randomWalkTree(g, rng)
		}

		if tree == nil || !tree.IsSpanningTree(g) {
			continue
		}

		sig := tree.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		candidates = append(candidates, candidate{tree: tree, length: tree.TotalLength()})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].length < candidates[j].length
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	trees := make([]*domain.Tree, len(candidates))
	for i, c := range candidates {
		trees[i] = c.tree
	}
	return trees
}

// minimumSpanningTree builds the MST under edge-length weights using
// Kruskal's algorithm with a deterministic tie-break (stable sort),
// matching spec.md §8 scenario 5 (unique edge lengths imply a
// reproducible first tree independent of RNG seed).
func minimumSpanningTree(g *domain.Graph) *domain.Tree {
	edges := allEdges(g)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Length < edges[j].Length
	})

	uf := newUnionFind(g.NodeIDs())
	var treeEdges []*domain.Edge
	for _, e := range edges {
		if uf.union(e.From, e.To) {
			treeEdges = append(treeEdges, e)
		}
	}
	return domain.NewTree(treeEdges)
}

func allEdges(g *domain.Graph) []*domain.Edge {
	edges := make([]*domain.Edge, 0, g.EdgeCount())
	for _, e := range g.Edges {
		edges = append(edges, e)
	}
	return edges
}

// randomDFSTree performs a randomized DFS from the outlet; every
// traversal edge enters the tree (spec.md §4.1, method 1).
func randomDFSTree(g *domain.Graph, rng *rand.Rand) *domain.Tree {
	visited := map[int64]bool{g.OutletID: true}
	stack := []int64{g.OutletID}
	var treeEdges []*domain.Edge

	n := g.NodeCount()
	for len(stack) > 0 && len(visited) < n {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		neighbors := g.Neighbors(current)
		rng.Shuffle(len(neighbors), func(i, j int) {
			neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
		})

		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			if e, ok := g.GetEdge(current, nb); ok {
				treeEdges = append(treeEdges, e)
			}
			visited[nb] = true
			stack = append(stack, nb)
		}
	}

	if len(visited) != n {
		return nil
	}
	return domain.NewTree(treeEdges)
}

// randomKruskalTree perturbs each edge weight multiplicatively by a
// factor drawn from U(0.8, 1.2) and runs Kruskal on the perturbed
// weights (spec.md §4.1, method 2).
func randomKruskalTree(g *domain.Graph, rng *rand.Rand) *domain.Tree {
	edges := allEdges(g)
	type weighted struct {
		edge   *domain.Edge
		weight float64
	}
	weightedEdges := make([]weighted, len(edges))
	for i, e := range edges {
		factor := 0.8 + 0.4*rng.Float64()
		weightedEdges[i] = weighted{edge: e, weight: e.Length * factor}
	}
	sort.SliceStable(weightedEdges, func(i, j int) bool {
		return weightedEdges[i].weight < weightedEdges[j].weight
	})

	uf := newUnionFind(g.NodeIDs())
	var treeEdges []*domain.Edge
	for _, we := range weightedEdges {
		if uf.union(we.edge.From, we.edge.To) {
			treeEdges = append(treeEdges, we.edge)
		}
	}
	return domain.NewTree(treeEdges)
}

// randomWalkTree is the simplified Wilson-style loop-erased variant:
// pick an initial node uniformly, then repeatedly extend from a
// uniformly random visited node to a uniformly random unvisited
// neighbour (spec.md §4.1, method 3).
func randomWalkTree(g *domain.Graph, rng *rand.Rand) *domain.Tree {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return nil
	}

	visited := make(map[int64]bool, len(ids))
	order := []int64{ids[rng.Intn(len(ids))]}
	visited[order[0]] = true
	var treeEdges []*domain.Edge

	// Guard against an unreachable configuration (should not occur on
	// a connected base graph) rather than looping forever.
	for stall := 0; len(visited) < len(ids) && stall < len(ids)*len(ids)+10; stall++ {
		current := order[rng.Intn(len(order))]
		var unvisited []int64
		for _, nb := range g.Neighbors(current) {
			if !visited[nb] {
				unvisited = append(unvisited, nb)
			}
		}
		if len(unvisited) == 0 {
			continue
		}
		next := unvisited[rng.Intn(len(unvisited))]
		if e, ok := g.GetEdge(current, next); ok {
			treeEdges = append(treeEdges, e)
		}
		visited[next] = true
		order = append(order, next)
	}

	if len(visited) != len(ids) {
		return nil
	}
	return domain.NewTree(treeEdges)
}

type unionFind struct {
	parent map[int64]int64
	rank   map[int64]int
}

func newUnionFind(ids []int64) *unionFind {
	uf := &unionFind{parent: make(map[int64]int64, len(ids)), rank: make(map[int64]int, len(ids))}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(x int64) int64 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union merges the sets containing a and b, returning true if they
// were distinct (i.e. the edge (a,b) does not close a cycle).
func (uf *unionFind) union(a, b int64) bool {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return false
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
	return true
}
