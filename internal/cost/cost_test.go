package cost

import "testing"

func TestPipeCostExactDiameter(t *testing.T) {
	tb := DefaultTables()
	got := tb.PipeCost(0.20, 100)
	want := 518.0 * 100
	if got != want {
		t.Errorf("PipeCost = %v, want %v", got, want)
	}
}

func TestPipeCostCeiling(t *testing.T) {
	tb := DefaultTables()
	got := tb.PipeCost(0.22, 10)
	want := 724.0 * 10 // next tabulated size >= 0.22 is 0.25
	if got != want {
		t.Errorf("PipeCost = %v, want %v", got, want)
	}
}

func TestPipeCostAboveMax(t *testing.T) {
	tb := DefaultTables()
	got := tb.PipeCost(2.0, 1)
	want := 10000.0
	if got != want {
		t.Errorf("PipeCost = %v, want %v", got, want)
	}
}

func TestManholeCostBrackets(t *testing.T) {
	tb := DefaultTables()
	cases := []struct {
		depth float64
		want  float64
	}{
		{0.5, 11800},
		{1.0, 11800},
		{1.5, 23100},
		{6.0, 77500},
		{9.0, 77500},
	}
	for _, c := range cases {
		if got := tb.ManholeCost(c.depth); got != c.want {
			t.Errorf("ManholeCost(%v) = %v, want %v", c.depth, got, c.want)
		}
	}
}

func TestEarthworkCostBrackets(t *testing.T) {
	tb := DefaultTables()
	got := tb.EarthworkCost(1.5, 10)
	want := 203.0 * 10
	if got != want {
		t.Errorf("EarthworkCost = %v, want %v", got, want)
	}
}

func TestEarthworkCostAboveMax(t *testing.T) {
	tb := DefaultTables()
	got := tb.EarthworkCost(100, 2)
	want := 405.0 * 2
	if got != want {
		t.Errorf("EarthworkCost = %v, want %v", got, want)
	}
}
