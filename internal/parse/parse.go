// Package parse reads the network input file format (spec.md §6): a
// "Manholes <N>" block of nodes followed by a "Sections <M>" block of
// candidate trenches, each block tolerating an optional alphabetic
// header row. Grounded on original_source/sewer_opt/parsers.py's
// parse_sewer_file_1, the version of the reference parser that
// tolerates the header row.
package parse

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"sewernet/internal/apperror"
	"sewernet/internal/domain"
)

// flowImbalanceTolerance is the maximum allowed |Σq_in - |q_outlet||
// in l/s before FlowImbalance is raised as a warning (spec.md §7).
const flowImbalanceTolerance = 1.0

var alphabetic = regexp.MustCompile(`[A-Za-z]`)

// ParseFile reads and parses the network input file at path. The
// returned *apperror.ValidationErrors carries non-fatal findings (a
// flow imbalance) even on success; a non-nil error means the file
// could not be parsed into a graph at all.
func ParseFile(path string) (*domain.Graph, *apperror.ValidationErrors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeMalformedInput, "cannot open input file").WithField(path)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads the network input format from r.
func Parse(r io.Reader) (*domain.Graph, *apperror.ValidationErrors, error) {
	lines, err := readNonBlankLines(r)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeMalformedInput, "failed to read input")
	}

	nodes, cursor, err := parseManholes(lines)
	if err != nil {
		return nil, nil, err
	}

	edges, err := parseSections(lines, cursor)
	if err != nil {
		return nil, nil, err
	}

	g := domain.NewGraph()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for _, e := range edges {
		g.AddEdge(e)
	}

	validation := apperror.NewValidationErrors()
	if err := checkFlowBalance(nodes); err != nil {
		validation.Add(err)
	}

	return g, validation, nil
}

func readNonBlankLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func splitCols(line string) []string {
	return strings.Fields(line)
}

// parseManholes locates the "Manholes <N>" block (skipping any
// preceding lines), skips an optional header row, and parses N node
// rows as <id> <x> <y> <z> <flow_lps>. It returns the nodes and the
// line index immediately after the block.
func parseManholes(lines []string) ([]*domain.Node, int, error) {
	idx := 0
	for idx < len(lines) && !strings.HasPrefix(strings.ToLower(lines[idx]), "manholes") {
		idx++
	}
	if idx >= len(lines) {
		return nil, 0, apperror.New(apperror.CodeMalformedInput, "file must contain a 'Manholes <count>' block")
	}

	cols := splitCols(lines[idx])
	if len(cols) < 2 {
		return nil, 0, apperror.New(apperror.CodeMalformedInput, "'Manholes' line must include a count")
	}
	count, err := strconv.Atoi(cols[1])
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid manhole count")
	}

	start := idx + 1
	if start < len(lines) && alphabetic.MatchString(splitCols(lines[start])[0]) {
		start++ // skip the optional header row
	}
	end := start + count
	if end > len(lines) {
		return nil, 0, apperror.New(apperror.CodeMalformedInput, "fewer manhole rows than declared")
	}

	nodes := make([]*domain.Node, 0, count)
	for _, line := range lines[start:end] {
		cols := splitCols(line)
		if len(cols) < 5 {
			return nil, 0, apperror.NewWithField(apperror.CodeMalformedInput, "expected 5 columns in a manhole row", line)
		}

		id, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			return nil, 0, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid manhole id").WithField(line)
		}
		x, err := strconv.ParseFloat(cols[1], 64)
		if err != nil {
			return nil, 0, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid manhole x").WithField(line)
		}
		y, err := strconv.ParseFloat(cols[2], 64)
		if err != nil {
			return nil, 0, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid manhole y").WithField(line)
		}
		z, err := strconv.ParseFloat(cols[3], 64)
		if err != nil {
			return nil, 0, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid manhole z").WithField(line)
		}
		flow, err := strconv.ParseFloat(cols[4], 64)
		if err != nil {
			return nil, 0, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid manhole flow").WithField(line)
		}

		nodes = append(nodes, &domain.Node{ID: id, X: x, Y: y, Z: z, Q: flow})
	}

	return nodes, end, nil
}

// parseSections locates the "Sections <M>" block at or after from,
// skips an optional header row, and parses M section rows as
// <u> <v> [extra columns ignored].
func parseSections(lines []string, from int) ([]*domain.Edge, error) {
	idx := from
	for idx < len(lines) && !strings.HasPrefix(strings.ToLower(lines[idx]), "sections") {
		idx++
	}
	if idx >= len(lines) {
		return nil, apperror.New(apperror.CodeMalformedInput, "file must contain a 'Sections <count>' block")
	}

	cols := splitCols(lines[idx])
	if len(cols) < 2 {
		return nil, apperror.New(apperror.CodeMalformedInput, "'Sections' line must include a count")
	}
	count, err := strconv.Atoi(cols[1])
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid section count")
	}

	start := idx + 1
	if start < len(lines) && alphabetic.MatchString(splitCols(lines[start])[0]) {
		start++
	}
	end := start + count
	if end > len(lines) {
		return nil, apperror.New(apperror.CodeMalformedInput, "fewer section rows than declared")
	}

	edges := make([]*domain.Edge, 0, count)
	for _, line := range lines[start:end] {
		cols := splitCols(line)
		if len(cols) < 2 {
			continue
		}

		u, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid section endpoint").WithField(line)
		}
		v, err := strconv.ParseInt(cols[1], 10, 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeMalformedInput, "invalid section endpoint").WithField(line)
		}

		edges = append(edges, &domain.Edge{From: u, To: v})
	}

	return edges, nil
}

// checkFlowBalance verifies exactly one outlet (negative flow) exists
// and that the sum of positive contributions balances it within
// flowImbalanceTolerance (spec.md §7, "FlowImbalance").
func checkFlowBalance(nodes []*domain.Node) *apperror.Error {
	var inflow, outflow float64
	outlets := 0
	for _, n := range nodes {
		if n.Q < 0 {
			outflow += -n.Q
			outlets++
		} else {
			inflow += n.Q
		}
	}

	if outlets != 1 {
		return apperror.NewWarning(apperror.CodeFlowImbalance, "expected exactly one outlet node (negative flow)").
			WithDetails("outlet_count", outlets)
	}

	delta := inflow - outflow
	if delta < 0 {
		delta = -delta
	}
	if delta > flowImbalanceTolerance {
		return apperror.NewWarning(apperror.CodeFlowImbalance, "nodal inflow does not balance the outlet within tolerance").
			WithDetails("inflow_lps", inflow).
			WithDetails("outflow_lps", outflow).
			WithDetails("delta_lps", delta)
	}

	return nil
}
