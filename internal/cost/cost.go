// Package cost holds the three piecewise-constant lookup tables used
// by the design evaluator (spec.md §4.5): pipe unit cost by
// commercial diameter, manhole cost by trench-depth bracket, and
// earthwork cost per cubic metre by depth bracket. The tables are
// immutable constants; the actual monetary figures are tuning
// parameters owned by the deployment (spec.md §4.5). internal/config
// has no setting that overrides them; the driver always uses
// DefaultTables.
package cost

import "sort"

// Diameters is the finite ordered commercial diameter set 𝒟, in
// metres (spec.md §3).
var Diameters = []float64{
	0.20, 0.25, 0.30, 0.35, 0.40, 0.45, 0.50,
	0.60, 0.70, 0.80, 0.90, 1.00, 1.50,
}

type depthBracket struct {
	min, max float64 // (min, max]
	cost     float64
}

// Tables bundles the three lookup tables. A zero-value Tables is
// invalid; use DefaultTables.
type Tables struct {
	pipePerMetre  map[float64]float64
	manholeBrackets   []depthBracket
	earthworkBrackets []depthBracket
}

// DefaultTables returns the stock cost figures from the reference
// deployment.
func DefaultTables() *Tables {
	return &Tables{
		pipePerMetre: map[float64]float64{
			0.20: 518, 0.25: 724, 0.30: 973, 0.35: 1600,
			0.40: 1850, 0.45: 2150, 0.50: 2520, 0.60: 2600,
			0.70: 2900, 0.80: 3500, 0.90: 4000, 1.00: 5000,
			1.50: 10000,
		},
		manholeBrackets: []depthBracket{
			{0, 1, 11800},
			{1, 2, 23100},
			{2, 3, 40000},
			{3, 4, 54600},
			{4, 5, 69200},
			{5, 6, 77500},
		},
		earthworkBrackets: []depthBracket{
			{0, 1.5, 203},
			{1.5, 3.0, 233.5},
			{3.0, 4.5, 299},
			{4.5, 6.0, 405},
		},
	}
}

// PipeCost returns the cost of a pipe section of the given diameter
// and length. Per spec.md §4.5, the nearest tabulated key ≥ requested
// diameter is used (ceiling behaviour) — diameter itself is always one
// of the values in Diameters after progressive-diameter resolution, so
// this is an exact lookup in practice; the ceiling search is retained
// for robustness against an out-of-table diameter.
func (t *Tables) PipeCost(diameter, length float64) float64 {
	keys := make([]float64, 0, len(t.pipePerMetre))
	for d := range t.pipePerMetre {
		keys = append(keys, d)
	}
	sort.Float64s(keys)

	selected := keys[len(keys)-1]
	for _, d := range keys {
		if d >= diameter {
			selected = d
			break
		}
	}
	return t.pipePerMetre[selected] * length
}

// ManholeCost returns the manhole cost for a trench of the given
// depth, in metres.
func (t *Tables) ManholeCost(depth float64) float64 {
	return lookupBracket(t.manholeBrackets, depth)
}

// EarthworkCost returns the earthwork cost for a given depth and
// excavated volume.
func (t *Tables) EarthworkCost(depth, volume float64) float64 {
	return lookupBracket(t.earthworkBrackets, depth) * volume
}

func lookupBracket(brackets []depthBracket, depth float64) float64 {
	for _, b := range brackets {
		if depth > b.min && depth <= b.max {
			return b.cost
		}
	}
	return brackets[len(brackets)-1].cost
}
