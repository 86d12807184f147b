package domain

import "testing"

func TestIsConnectedChain(t *testing.T) {
	g := buildChain(t)
	if !IsConnected(g) {
		t.Error("chain graph should be connected")
	}
}

func TestIsConnectedDisjoint(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: 1, Q: 10})
	g.AddNode(&Node{ID: 2, Q: -10})
	g.AddNode(&Node{ID: 3, Q: 5})
	g.AddEdge(&Edge{From: 1, To: 2})

	if IsConnected(g) {
		t.Error("graph with an isolated node should not be connected")
	}
}

func TestFindConnectedComponents(t *testing.T) {
	g := NewGraph()
	g.AddNode(&Node{ID: 1, Q: 10})
	g.AddNode(&Node{ID: 2, Q: -10})
	g.AddNode(&Node{ID: 3, Q: 5})
	g.AddNode(&Node{ID: 4, Q: -5})
	g.AddEdge(&Edge{From: 1, To: 2})
	g.AddEdge(&Edge{From: 3, To: 4})

	components := FindConnectedComponents(g)
	if len(components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(components))
	}
}
