package cache

import (
	"context"
	"testing"
	"time"
)

func TestHydraulicCache_SetGet(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	hc := NewHydraulicCache(memCache, 5*time.Minute)
	ctx := context.Background()

	result := &CachedHydraulicResult{
		Feasible:   true,
		K:          0.15,
		Theta:      3.2,
		DepthRatio: 0.45,
		Radius:     0.08,
		Velocity:   0.9,
		Depth:      0.135,
	}

	err := hc.Set(ctx, 0.015, 0.30, 0.005, 0.013, result)
	if err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	got, found, err := hc.Get(ctx, 0.015, 0.30, 0.005, 0.013)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !found {
		t.Fatal("expected to find cached result")
	}
	if got.Velocity != result.Velocity {
		t.Errorf("expected velocity %f, got %f", result.Velocity, got.Velocity)
	}
	if got.DepthRatio != result.DepthRatio {
		t.Errorf("expected depth ratio %f, got %f", result.DepthRatio, got.DepthRatio)
	}
}

func TestHydraulicCache_GetNotFound(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	hc := NewHydraulicCache(memCache, 5*time.Minute)
	ctx := context.Background()

	result, found, err := hc.Get(ctx, 0.015, 0.30, 0.005, 0.013)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
	if result != nil {
		t.Error("expected nil result")
	}
}

func TestHydraulicCache_CachesInfeasibleResult(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	hc := NewHydraulicCache(memCache, 5*time.Minute)
	ctx := context.Background()

	err := hc.Set(ctx, 1.0, 0.20, 0.0004, 0.013, &CachedHydraulicResult{Feasible: false})
	if err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	got, found, err := hc.Get(ctx, 1.0, 0.20, 0.0004, 0.013)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected to find cached infeasible result")
	}
	if got.Feasible {
		t.Error("expected cached result to be infeasible")
	}
}

func TestHydraulicCache_DifferentInputsMiss(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	hc := NewHydraulicCache(memCache, 5*time.Minute)
	ctx := context.Background()

	hc.Set(ctx, 0.015, 0.30, 0.005, 0.013, &CachedHydraulicResult{Feasible: true, Velocity: 0.9})

	_, found, _ := hc.Get(ctx, 0.015, 0.35, 0.005, 0.013)
	if found {
		t.Error("should not find result for a different diameter")
	}
}

func TestHydraulicCache_InvalidateAll(t *testing.T) {
	memCache := NewMemoryCache(nil)
	defer memCache.Close()

	hc := NewHydraulicCache(memCache, 5*time.Minute)
	ctx := context.Background()

	hc.Set(ctx, 0.015, 0.30, 0.005, 0.013, &CachedHydraulicResult{Feasible: true})
	hc.Set(ctx, 0.020, 0.35, 0.006, 0.013, &CachedHydraulicResult{Feasible: true})

	count, err := hc.InvalidateAll(ctx)
	if err != nil {
		t.Fatalf("failed to invalidate all: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 invalidated, got %d", count)
	}

	_, found, _ := hc.Get(ctx, 0.015, 0.30, 0.005, 0.013)
	if found {
		t.Error("expected cache to be invalidated")
	}
}
