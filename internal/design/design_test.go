package design

import (
	"context"
	"strings"
	"testing"

	"sewernet/internal/cost"
	"sewernet/internal/domain"
	"sewernet/internal/flow"
	"sewernet/internal/hydraulics"
)

// linearNetwork builds A(q=10 l/s) -> B(q=5 l/s) -> C(outlet), a
// two-arc chain, each section 50m long.
func linearNetwork() (*domain.Graph, *flow.DirectedTree) {
	g := domain.NewGraph()
	g.AddNode(&domain.Node{ID: 1, Q: 10})
	g.AddNode(&domain.Node{ID: 2, Q: 5})
	g.AddNode(&domain.Node{ID: 3, Q: -15})
	g.AddEdge(&domain.Edge{From: 1, To: 2, Length: 50})
	g.AddEdge(&domain.Edge{From: 2, To: 3, Length: 50})

	tree := domain.NewTree([]*domain.Edge{
		{From: 1, To: 2, Length: 50},
		{From: 2, To: 3, Length: 50},
	})
	return g, flow.Direct(tree, 3)
}

func newTestEvaluator() *Evaluator {
	return NewEvaluator(hydraulics.NewEvaluator(hydraulics.DefaultManningN), cost.DefaultTables(), cost.Diameters, DefaultParams())
}

func TestEvaluate_FeasibleDesignIsOK(t *testing.T) {
	g, dt := linearNetwork()
	e := newTestEvaluator()

	// Diameter index 4 -> 0.40m for both arcs, moderate slope.
	design := []float64{4, 0.01, 4, 0.01}

	_, details := e.Evaluate(context.Background(), dt, g, design)
	if len(details) != 2 {
		t.Fatalf("expected 2 link details, got %d", len(details))
	}
	for _, d := range details {
		if d.Status != "OK" && !strings.Contains(d.Status, "velocity") {
			t.Errorf("link %d: unexpected status %q", d.Link, d.Status)
		}
	}
}

func TestEvaluate_InfeasibleArcAddsFlatPenaltyAndSkips(t *testing.T) {
	g, dt := linearNetwork()
	e := newTestEvaluator()

	// Tiny diameter, huge flow forced through it: K >= 1/pi, infeasible.
	design := []float64{0, 0.0004, 0, 0.0004}

	costValue, details := e.Evaluate(context.Background(), dt, g, design)
	if costValue < InfeasiblePenalty {
		t.Errorf("expected at least the flat infeasible penalty, got %f", costValue)
	}
	for _, d := range details {
		if d.Status != "Invalid - K >= 1/pi" {
			t.Errorf("expected infeasible status, got %q", d.Status)
		}
		if d.Velocity != 0 || d.LinkCost != 0 {
			t.Errorf("infeasible arc should carry no velocity/cost, got %+v", d)
		}
	}
}

func TestEvaluate_ProgressiveDiameterForcesIncrease(t *testing.T) {
	g, dt := linearNetwork()
	e := newTestEvaluator()

	// Upstream arc (1->2) picks 0.50m (index 6); downstream arc
	// (2->3) requests a smaller 0.20m (index 0) — must be forced up
	// and penalized.
	design := []float64{6, 0.01, 0, 0.01}

	_, details := e.Evaluate(context.Background(), dt, g, design)
	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}

	downstream := details[1]
	if downstream.Diameter < 0.50 {
		t.Errorf("expected downstream diameter forced to >= 0.50, got %f", downstream.Diameter)
	}
	if !downstream.HasMaxPreceding {
		t.Error("expected downstream arc to record a preceding diameter")
	}
	if !strings.Contains(downstream.Status, "forced up") {
		t.Errorf("expected forced-up status, got %q", downstream.Status)
	}
}

func TestEvaluate_NoForcingWhenDiametersAlreadyNonDecreasing(t *testing.T) {
	g, dt := linearNetwork()
	e := newTestEvaluator()

	design := []float64{2, 0.01, 6, 0.01} // 0.30m then 0.50m — already non-decreasing

	_, details := e.Evaluate(context.Background(), dt, g, design)
	downstream := details[1]
	if downstream.Diameter != 0.50 {
		t.Errorf("expected downstream diameter to stay 0.50, got %f", downstream.Diameter)
	}
	if strings.Contains(downstream.Status, "forced up") {
		t.Errorf("should not be forced, got status %q", downstream.Status)
	}
}

func TestClipIndex(t *testing.T) {
	tests := []struct {
		raw  float64
		n    int
		want int
	}{
		{-5, 13, 0},
		{0, 13, 0},
		{3.4, 13, 3},
		{3.6, 13, 4},
		{99, 13, 12},
	}
	for _, tt := range tests {
		if got := clipIndex(tt.raw, tt.n); got != tt.want {
			t.Errorf("clipIndex(%v, %v) = %v, want %v", tt.raw, tt.n, got, tt.want)
		}
	}
}

func TestSlopeRatio(t *testing.T) {
	tests := []struct {
		slope float64
		want  string
	}{
		{0, "1 in inf"},
		{-0.01, "1 in inf"},
		{0.005, "1 in 200"},
		{0.01, "1 in 100"},
	}
	for _, tt := range tests {
		if got := slopeRatio(tt.slope); got != tt.want {
			t.Errorf("slopeRatio(%v) = %v, want %v", tt.slope, got, tt.want)
		}
	}
}
