package domain

import "sort"

// Tree is a Layout: a connected, acyclic subgraph of G spanning every
// node (spec.md §3). The enumerator produces trees and never mutates
// them afterward.
type Tree struct {
	Edges []*Edge
}

// NewTree wraps an edge slice as a tree. The caller is responsible for
// having verified acyclicity/connectivity/spanning (see Signature and
// the enumerator's acceptance test).
func NewTree(edges []*Edge) *Tree {
	return &Tree{Edges: edges}
}

// TotalLength sums the length of every edge in the tree.
func (t *Tree) TotalLength() float64 {
	var total float64
	for _, e := range t.Edges {
		total += e.Length
	}
	return total
}

// Signature is a canonical, order-independent identity for the tree's
// edge set, used by the enumerator to reject duplicate candidates.
func (t *Tree) Signature() string {
	keys := make([]string, len(t.Edges))
	for i, e := range t.Edges {
		keys[i] = e.Key().String()
	}
	sort.Strings(keys)

	var out []byte
	for i, k := range keys {
		if i > 0 {
			out = append(out, ';')
		}
		out = append(out, k...)
	}
	return string(out)
}

// adjacency builds an undirected adjacency list over the tree's own
// edges, independent of the base graph's adjacency.
func (t *Tree) adjacency() map[int64][]int64 {
	adj := make(map[int64][]int64, len(t.Edges)+1)
	for _, e := range t.Edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	return adj
}

// IsSpanningTree reports whether t has exactly |V(g)|-1 edges, is
// connected, and touches every node of g — the acceptance test the
// enumerator applies to every generated candidate (spec.md §4.1).
func (t *Tree) IsSpanningTree(g *Graph) bool {
	n := g.NodeCount()
	if n == 0 {
		return false
	}
	if len(t.Edges) != n-1 {
		return false
	}

	adj := t.adjacency()
	var start int64
	for id := range g.Nodes {
		start = id
		break
	}

	visited := map[int64]bool{start: true}
	queue := []int64{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range adj[u] {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}

	if len(visited) != n {
		return false
	}
	for id := range g.Nodes {
		if !visited[id] {
			return false
		}
	}
	return true
}
