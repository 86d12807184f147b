package domain

// BFSReachable returns the set of node ids reachable from source over
// the undirected base graph.
func BFSReachable(g *Graph, source int64) map[int64]bool {
	visited := map[int64]bool{source: true}
	queue := []int64{source}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, v := range g.Neighbors(u) {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return visited
}

// IsConnected reports whether every node of g is reachable from the
// outlet. Graph.Validate reports a disconnected input graph, which the
// driver logs as a warning, since spec.md §3 assumes G is connected.
func IsConnected(g *Graph) bool {
	if g.NodeCount() == 0 {
		return true
	}
	reachable := BFSReachable(g, g.OutletID)
	return len(reachable) == g.NodeCount()
}

// FindConnectedComponents partitions the node set into connected
// components of the undirected base graph.
func FindConnectedComponents(g *Graph) [][]int64 {
	visited := make(map[int64]bool)
	var components [][]int64

	for id := range g.Nodes {
		if visited[id] {
			continue
		}

		var component []int64
		queue := []int64{id}
		visited[id] = true

		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			component = append(component, u)

			for _, v := range g.Neighbors(u) {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}

		components = append(components, component)
	}

	return components
}
