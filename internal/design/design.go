// Package design evaluates one candidate component sizing — a
// (diameter, slope) pair per arc of a directed Layout — into a single
// penalized cost (spec.md §4.4, §4.5). This is the cost function the
// sizer (internal/sizer) repeatedly calls; every metaheuristic variant
// shares the same Evaluator.
package design

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"sewernet/internal/cache"
	"sewernet/internal/cost"
	"sewernet/internal/domain"
	"sewernet/internal/flow"
	"sewernet/internal/hydraulics"
)

// InfeasiblePenalty is the flat penalty (spec.md §4.4) added when an
// arc admits no physical Manning solution, and the unit weight for
// the velocity/depth-ratio/cover-depth soft penalties.
const InfeasiblePenalty = 1e8

// ProgressivePenaltyWeight is the unit weight of the soft penalty for
// a candidate diameter the progressive-diameter rule had to force up.
const ProgressivePenaltyWeight = 1e6

// LowVelocityFlowGate is the minimum discharge (m3/s) below which an
// under-velocity pipe is not penalized — a near-empty pipe is allowed
// to run slow (spec.md §4.4).
const LowVelocityFlowGate = 0.0014

// progressiveTolerance absorbs floating point noise when comparing a
// raw candidate diameter against the diameter it would be forced up
// to.
const progressiveTolerance = 0.001

// Params bundles the thresholds the evaluator checks every arc
// against — the hydraulic and constructability limits of spec.md
// §4.1/§4.3, mirrored from internal/config.HydraulicsConfig.
type Params struct {
	MinVelocity        float64
	MaxVelocity         float64
	MaxFillRatio        float64
	MinCoverDepth       float64
	MaxCoverDepth       float64
	AssumedGroundCover  float64
}

// DefaultParams returns the reference deployment's thresholds.
func DefaultParams() Params {
	return Params{
		MinVelocity:        0.6,
		MaxVelocity:        3.0,
		MaxFillRatio:       0.8,
		MinCoverDepth:      0.9,
		MaxCoverDepth:      5.0,
		AssumedGroundCover: 1.5,
	}
}

// LinkDetail is the per-arc record of one evaluated design — the
// source data for internal/report's CSV/workbook export (spec.md
// §6.3).
type LinkDetail struct {
	Link                 int
	From                 int64
	To                   int64
	Length               float64
	Diameter             float64
	Slope                float64
	SlopeRatio           string
	Flow                 float64 // m3/s
	FlowLPS              float64
	Velocity             float64
	DepthRatio           float64
	Depth                float64
	LinkCost             float64
	Status               string
	MaxPrecedingDiameter float64
	HasMaxPreceding      bool
}

// Evaluator scores a complete component sizing against a directed
// Layout. A zero-value Evaluator is invalid; build one with
// NewEvaluator.
type Evaluator struct {
	Hydraulics *hydraulics.Evaluator
	Costs      *cost.Tables
	Diameters  []float64 // ascending, spec.md §3's 𝒟
	Params     Params
	// Cache memoizes per-arc Manning evaluations (SPEC_FULL §4.7). Nil
	// disables memoization and every arc hits the hydraulics evaluator
	// directly.
	Cache *cache.HydraulicCache
}

// NewEvaluator returns an Evaluator over the given hydraulic solver,
// cost tables, and diameter catalog. diameters is sorted ascending
// internally; the caller's slice is not mutated.
func NewEvaluator(hyd *hydraulics.Evaluator, costs *cost.Tables, diameters []float64, params Params) *Evaluator {
	sorted := make([]float64, len(diameters))
	copy(sorted, diameters)
	sort.Float64s(sorted)
	return &Evaluator{Hydraulics: hyd, Costs: costs, Diameters: sorted, Params: params}
}

// WithCache attaches a hydraulic-result cache, for chaining:
//
//	e := NewEvaluator(hyd, costs, diameters, params).WithCache(hc)
func (e *Evaluator) WithCache(c *cache.HydraulicCache) *Evaluator {
	e.Cache = c
	return e
}

// Evaluate decodes design (2 values per arc — a diameter index and a
// slope, in the tree's topological order) against dt, enforces the
// progressive-diameter constraint, and returns the total penalized
// cost plus a per-arc detail trail. design must have at least
// 2*len(dt.TopologicalArcs()) entries; shorter vectors are truncated
// silently, a caller error the sizer's bounds construction prevents
// by always sizing the vector to 2*n_links (spec.md §4.6). If e.Cache
// is set, every arc's Manning evaluation is looked up there before
// falling back to internal/hydraulics, and populated on a miss
// (SPEC_FULL §4.7).
func (e *Evaluator) Evaluate(ctx context.Context, dt *flow.DirectedTree, g *domain.Graph, design []float64) (float64, []LinkDetail) {
	discharges := dt.Discharges(g)
	arcs := dt.TopologicalArcs()

	var totalCost, penalty float64
	nodeDiameter := make(map[int64]float64, len(arcs))
	details := make([]LinkDetail, 0, len(arcs))

	for i, arc := range arcs {
		if i*2+1 >= len(design) {
			break
		}

		rawIdx := clipIndex(design[i*2], len(e.Diameters))
		originalDiameter := e.Diameters[rawIdx]
		slope := design[i*2+1]

		var maxPreceding float64
		hasMaxPreceding := false
		for _, child := range dt.Children(arc.From) {
			if d, ok := nodeDiameter[child]; ok && (!hasMaxPreceding || d > maxPreceding) {
				maxPreceding = d
				hasMaxPreceding = true
			}
		}

		diameter := originalDiameter
		if hasMaxPreceding && maxPreceding > 0 && diameter < maxPreceding {
			diameter = e.smallestAtLeast(maxPreceding)
		}
		nodeDiameter[arc.From] = diameter

		discharge := discharges[arc.From]

		detail := LinkDetail{
			Link:                 i + 1,
			From:                 arc.From,
			To:                   arc.To,
			Length:               arc.Length,
			Diameter:             diameter,
			Slope:                slope,
			SlopeRatio:           slopeRatio(slope),
			Flow:                 discharge,
			FlowLPS:              discharge * 1000,
			MaxPrecedingDiameter: maxPreceding,
			HasMaxPreceding:      hasMaxPreceding && maxPreceding > 0,
		}

		state, ok := e.evaluateHydraulics(ctx, discharge, diameter, slope)
		if !ok {
			penalty += InfeasiblePenalty
			detail.Status = "Invalid - K >= 1/pi"
			details = append(details, detail)
			continue
		}

		avgDepth := e.Params.AssumedGroundCover
		pipeCost := e.Costs.PipeCost(diameter, arc.Length)
		manholeCost := e.Costs.ManholeCost(avgDepth)
		earthworkCost := e.Costs.EarthworkCost(avgDepth, arc.Length*1.0)
		linkCost := pipeCost + manholeCost + earthworkCost
		totalCost += linkCost

		var violations []string

		if detail.HasMaxPreceding && originalDiameter < maxPreceding-progressiveTolerance {
			penalty += ProgressivePenaltyWeight * (maxPreceding - originalDiameter)
			violations = append(violations, "diameter forced up by progressive-diameter rule")
		}

		if state.Velocity < e.Params.MinVelocity && discharge >= LowVelocityFlowGate {
			penalty += InfeasiblePenalty * (e.Params.MinVelocity - state.Velocity)
			violations = append(violations, "velocity below minimum")
		}
		if state.Velocity > e.Params.MaxVelocity {
			penalty += InfeasiblePenalty * (state.Velocity - e.Params.MaxVelocity)
			violations = append(violations, "velocity above maximum")
		}
		if state.DepthRatio > e.Params.MaxFillRatio {
			penalty += InfeasiblePenalty * (state.DepthRatio - e.Params.MaxFillRatio)
			violations = append(violations, "fill ratio above maximum")
		}
		if avgDepth < e.Params.MinCoverDepth {
			penalty += InfeasiblePenalty * (e.Params.MinCoverDepth - avgDepth)
			violations = append(violations, "cover depth below minimum")
		}
		if avgDepth > e.Params.MaxCoverDepth {
			penalty += InfeasiblePenalty * (avgDepth - e.Params.MaxCoverDepth)
			violations = append(violations, "cover depth above maximum")
		}

		detail.Velocity = state.Velocity
		detail.DepthRatio = state.DepthRatio
		detail.Depth = state.Depth
		detail.LinkCost = linkCost
		if len(violations) == 0 {
			detail.Status = "OK"
		} else {
			detail.Status = strings.Join(violations, ", ")
		}

		details = append(details, detail)
	}

	return totalCost + penalty, details
}

// evaluateHydraulics resolves the Manning state for (q, d, s) through
// e.Cache when one is attached, falling back to e.Hydraulics on a miss
// and populating the cache with the result. A cache read/write error
// is treated as a miss — it degrades to a direct hydraulics call, it
// never fails the design evaluation.
func (e *Evaluator) evaluateHydraulics(ctx context.Context, q, d, s float64) (hydraulics.State, bool) {
	if e.Cache == nil {
		return e.Hydraulics.Evaluate(q, d, s)
	}

	if cached, hit, err := e.Cache.Get(ctx, q, d, s, e.Hydraulics.ManningN); err == nil && hit {
		if !cached.Feasible {
			return hydraulics.State{}, false
		}
		return hydraulics.State{
			K:          cached.K,
			Theta:      cached.Theta,
			DepthRatio: cached.DepthRatio,
			Radius:     cached.Radius,
			Velocity:   cached.Velocity,
			Depth:      cached.Depth,
		}, true
	}

	state, ok := e.Hydraulics.Evaluate(q, d, s)

	result := &cache.CachedHydraulicResult{Feasible: ok}
	if ok {
		result.K = state.K
		result.Theta = state.Theta
		result.DepthRatio = state.DepthRatio
		result.Radius = state.Radius
		result.Velocity = state.Velocity
		result.Depth = state.Depth
	}
	_ = e.Cache.Set(ctx, q, d, s, e.Hydraulics.ManningN, result)

	return state, ok
}

// smallestAtLeast returns the smallest catalog diameter >= target, or
// the largest catalog diameter if target exceeds every entry.
func (e *Evaluator) smallestAtLeast(target float64) float64 {
	for _, d := range e.Diameters {
		if d >= target {
			return d
		}
	}
	return e.Diameters[len(e.Diameters)-1]
}

// clipIndex rounds a continuous sizer coordinate to the nearest valid
// diameter-catalog index.
func clipIndex(raw float64, n int) int {
	idx := int(math.Round(raw))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// slopeRatio renders a slope as the "1 in N" convention used on
// drawings and in the exported report (spec.md §6.3).
func slopeRatio(slope float64) string {
	if slope <= 0 {
		return "1 in inf"
	}
	return fmt.Sprintf("1 in %d", int(1/slope))
}
