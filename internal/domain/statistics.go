package domain

// GraphStatistics summarizes the shape of the base graph, logged once
// at ingestion.
type GraphStatistics struct {
	NodeCount         int
	EdgeCount         int
	TotalLength       float64
	AverageEdgeLength float64
	IsConnected       bool
	AverageDegree     float64
	MaxDegree         int
	MinDegree         int
}

// CalculateGraphStatistics computes degree and connectivity statistics
// over the base graph.
func CalculateGraphStatistics(g *Graph) *GraphStatistics {
	stats := &GraphStatistics{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
	}

	degree := make(map[int64]int, stats.NodeCount)
	for _, e := range g.Edges {
		stats.TotalLength += e.Length
		degree[e.From]++
		degree[e.To]++
	}

	if stats.EdgeCount > 0 {
		stats.AverageEdgeLength = stats.TotalLength / float64(stats.EdgeCount)
	}

	if len(degree) > 0 {
		minDegree := -1
		var totalDegree int
		for _, d := range degree {
			totalDegree += d
			if d > stats.MaxDegree {
				stats.MaxDegree = d
			}
			if minDegree == -1 || d < minDegree {
				minDegree = d
			}
		}
		stats.MinDegree = minDegree
		stats.AverageDegree = float64(totalDegree) / float64(len(degree))
	}

	stats.IsConnected = IsConnected(g)

	return stats
}
