package parse

import (
	"strings"
	"testing"

	"sewernet/internal/apperror"
)

const sampleNoHeader = `
Manholes 3
1 0 0 10 5
2 100 0 10 5
3 200 0 8 -10
Sections 2
1 3
2 3
`

const sampleWithHeader = `
Manholes 3
ID X Y Z INFLOW
1 0 0 10 5
2 100 0 10 5
3 200 0 8 -10
Sections 2
U V EXTRA
1 3 0.01
2 3 0.01
`

func TestParse_NoHeader(t *testing.T) {
	g, validation, err := Parse(strings.NewReader(sampleNoHeader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(g.Edges))
	}
	if g.OutletID != 3 {
		t.Errorf("expected outlet 3, got %d", g.OutletID)
	}
	if validation.HasWarnings() {
		t.Errorf("expected no warnings for a balanced network, got %v", validation.WarningMessages())
	}
}

func TestParse_ToleratesHeaderRow(t *testing.T) {
	g, _, err := Parse(strings.NewReader(sampleWithHeader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Fatalf("header row should be skipped, not counted as data: nodes=%d edges=%d", len(g.Nodes), len(g.Edges))
	}

	n, ok := g.GetNode(1)
	if !ok {
		t.Fatal("expected node 1 to exist")
	}
	if n.X != 0 || n.Y != 0 || n.Z != 10 || n.Q != 5 {
		t.Errorf("unexpected node 1 fields: %+v", n)
	}
}

func TestParse_SkipsBlankLines(t *testing.T) {
	input := "\n\n" + sampleNoHeader + "\n\n"
	g, _, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes))
	}
}

func TestParse_MissingManholesBlockIsFatal(t *testing.T) {
	_, _, err := Parse(strings.NewReader("Sections 1\n1 2\n"))
	if err == nil {
		t.Fatal("expected a fatal error for a missing Manholes block")
	}
	if apperror.Code(err) != apperror.CodeMalformedInput {
		t.Errorf("expected CodeMalformedInput, got %v", apperror.Code(err))
	}
}

func TestParse_TruncatedManholeRowsIsFatal(t *testing.T) {
	input := "Manholes 3\n1 0 0 10 5\nSections 0\n"
	_, _, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected a fatal error for fewer manhole rows than declared")
	}
}

func TestParse_FlowImbalanceIsAWarningNotFatal(t *testing.T) {
	input := `
Manholes 2
1 0 0 10 5
2 100 0 8 -100
Sections 1
1 2
`
	g, validation, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("flow imbalance must not be fatal, got error: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes despite imbalance, got %d", len(g.Nodes))
	}
	if !validation.HasWarnings() {
		t.Fatal("expected a flow imbalance warning")
	}
}

func TestParse_ExtraSectionColumnsIgnored(t *testing.T) {
	input := `
Manholes 2
1 0 0 10 5
2 100 0 8 -5
Sections 1
1 2 0.01 99.0 extra
`
	g, _, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
}
