package cache

import (
	"context"
	"encoding/json"
	"time"
)

// HydraulicCache memoizes Manning evaluations keyed on (Q, D, s, n)
// (spec.md §4.3, SPEC_FULL §4.7). The sizer re-evaluates the same few
// hundred (diameter, slope) combinations many times across
// generations; this cache turns repeat evaluations into a lookup.
type HydraulicCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedHydraulicResult is the JSON-serializable form of a feasible
// hydraulics.State, plus the feasibility flag itself so an infeasible
// result can also be cached and short-circuit a repeat evaluation.
type CachedHydraulicResult struct {
	Feasible   bool    `json:"feasible"`
	K          float64 `json:"k,omitempty"`
	Theta      float64 `json:"theta,omitempty"`
	DepthRatio float64 `json:"depth_ratio,omitempty"`
	Radius     float64 `json:"radius,omitempty"`
	Velocity   float64 `json:"velocity,omitempty"`
	Depth      float64 `json:"depth,omitempty"`
}

// NewHydraulicCache wraps a Cache backend with hydraulic-result
// memoization. A non-positive ttl falls back to one hour — Manning
// evaluations never change for a fixed (Q, D, s, n), so a long TTL is
// safe.
func NewHydraulicCache(cache Cache, defaultTTL time.Duration) *HydraulicCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &HydraulicCache{cache: cache, defaultTTL: defaultTTL}
}

// Get returns the cached result for (q, d, s, manningN), if present.
func (hc *HydraulicCache) Get(ctx context.Context, q, d, s, manningN float64) (*CachedHydraulicResult, bool, error) {
	key := HydraulicKey(q, d, s, manningN)

	data, err := hc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedHydraulicResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Corrupt entry — evict it; deletion failure is not fatal to the caller.
		_ = hc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set stores a hydraulic result for (q, d, s, manningN) with the
// cache's default TTL.
func (hc *HydraulicCache) Set(ctx context.Context, q, d, s, manningN float64, result *CachedHydraulicResult) error {
	key := HydraulicKey(q, d, s, manningN)

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return hc.cache.Set(ctx, key, data, hc.defaultTTL)
}

// InvalidateAll removes every cached hydraulic result. Used between
// configuration changes that alter the Manning evaluator (a different
// roughness coefficient invalidates nothing by key collision, since n
// is part of the key, but operators may still want a clean slate).
func (hc *HydraulicCache) InvalidateAll(ctx context.Context) (int64, error) {
	return hc.cache.DeleteByPattern(ctx, "hyd:*")
}
