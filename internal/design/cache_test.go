package design

import (
	"context"
	"testing"

	"sewernet/internal/cache"
	"sewernet/internal/cost"
	"sewernet/internal/hydraulics"
)

func TestEvaluate_CacheAvoidsRepeatHydraulicsCalls(t *testing.T) {
	g, dt := linearNetwork()

	backend := cache.NewMemoryCache(cache.DefaultOptions())
	hc := cache.NewHydraulicCache(backend, 0)

	e := NewEvaluator(hydraulics.NewEvaluator(hydraulics.DefaultManningN), cost.DefaultTables(), cost.Diameters, DefaultParams()).WithCache(hc)

	design := []float64{4, 0.01, 4, 0.01}

	cost1, details1 := e.Evaluate(context.Background(), dt, g, design)
	cost2, details2 := e.Evaluate(context.Background(), dt, g, design)

	if cost1 != cost2 {
		t.Errorf("expected identical cost across cached calls, got %f and %f", cost1, cost2)
	}
	if len(details1) != len(details2) {
		t.Fatalf("expected identical detail count, got %d and %d", len(details1), len(details2))
	}
	for i := range details1 {
		if details1[i].Velocity != details2[i].Velocity || details1[i].Status != details2[i].Status {
			t.Errorf("link %d: cached result diverged from direct evaluation: %+v vs %+v", i, details1[i], details2[i])
		}
	}
}

func TestEvaluate_CacheAlsoMemoizesInfeasibleResults(t *testing.T) {
	g, dt := linearNetwork()

	backend := cache.NewMemoryCache(cache.DefaultOptions())
	hc := cache.NewHydraulicCache(backend, 0)

	e := NewEvaluator(hydraulics.NewEvaluator(hydraulics.DefaultManningN), cost.DefaultTables(), cost.Diameters, DefaultParams()).WithCache(hc)

	// Tiny diameter, huge flow: infeasible on both calls.
	design := []float64{0, 0.0004, 0, 0.0004}

	costValue1, _ := e.Evaluate(context.Background(), dt, g, design)
	costValue2, _ := e.Evaluate(context.Background(), dt, g, design)

	if costValue1 != costValue2 {
		t.Errorf("expected identical penalty across cached infeasible calls, got %f and %f", costValue1, costValue2)
	}
}

func TestEvaluate_NilCacheIsANoop(t *testing.T) {
	g, dt := linearNetwork()
	e := newTestEvaluator()

	design := []float64{4, 0.01, 4, 0.01}
	if _, details := e.Evaluate(context.Background(), dt, g, design); len(details) != 2 {
		t.Fatalf("expected 2 details with no cache attached, got %d", len(details))
	}
}
