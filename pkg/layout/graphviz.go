package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// pointsPerInch converts diagram units to graphviz inches.
const pointsPerInch = 72.0

// Graphviz lays out the request with the dot engine. Node boxes are fixed
// to the hinted sizes so the computed positions match what is drawn.
type Graphviz struct{}

// Name implements [Engine].
func (Graphviz) Name() string { return EngineGraphviz }

// Layout implements [Engine].
func (Graphviz) Layout(ctx context.Context, req Request) (Response, error) {
	if len(req.Nodes) == 0 {
		return Response{}, nil
	}

	dot := ToDOT(req)
	out, err := renderDOT(ctx, dot)
	if err != nil {
		return Response{}, err
	}
	return parsePositions(out, req)
}

func renderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// ToDOT converts a request to DOT. Nodes are named n0, n1, ... by request
// index so arbitrary ids never need quoting.
func ToDOT(req Request) string {
	spacing := req.Spacing
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	rankdir := "TB"
	if req.Direction == DirectionRight {
		rankdir = "LR"
	}

	index := make(map[flow.NodeID]int, len(req.Nodes))
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	fmt.Fprintf(&buf, "  nodesep=%.3f;\n", spacing/pointsPerInch)
	fmt.Fprintf(&buf, "  ranksep=%.3f;\n", spacing/pointsPerInch)
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i, n := range req.Nodes {
		index[n.ID] = i
		fmt.Fprintf(&buf, "  n%d [width=%.4f, height=%.4f];\n", i, n.Width/pointsPerInch, n.Height/pointsPerInch)
	}

	buf.WriteString("\n")
	for _, e := range req.Edges {
		from, ok := index[e.Source]
		if !ok {
			continue
		}
		to, ok := index[e.Target]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

var (
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*"?n(\d+)"?\s*\[([^\]]*)\]`)
	posRe      = regexp.MustCompile(`\bpos="([-0-9.e+]+),([-0-9.e+]+)!?"`)
	bbRe       = regexp.MustCompile(`\bbb="([-0-9.e+]+),([-0-9.e+]+),([-0-9.e+]+),([-0-9.e+]+)"`)
)

// parsePositions reads node centers from laid-out DOT and converts them to
// top-left positions with y growing downwards.
func parsePositions(out []byte, req Request) (Response, error) {
	bb := bbRe.FindSubmatch(out)
	if bb == nil {
		return Response{}, fmt.Errorf("graphviz output has no bounding box")
	}
	top, err := strconv.ParseFloat(string(bb[4]), 64)
	if err != nil {
		return Response{}, fmt.Errorf("parse bounding box: %w", err)
	}

	resp := Response{Nodes: make([]Placement, 0, len(req.Nodes))}
	seen := make(map[int]bool, len(req.Nodes))
	for _, m := range nodeStmtRe.FindAllSubmatch(out, -1) {
		i, err := strconv.Atoi(string(m[1]))
		if err != nil || i >= len(req.Nodes) || seen[i] {
			continue
		}
		pos := posRe.FindSubmatch(m[2])
		if pos == nil {
			continue
		}
		cx, err := strconv.ParseFloat(string(pos[1]), 64)
		if err != nil {
			continue
		}
		cy, err := strconv.ParseFloat(string(pos[2]), 64)
		if err != nil {
			continue
		}
		seen[i] = true

		h := req.Nodes[i]
		p := flow.Point{X: cx - h.Width/2, Y: top - cy - h.Height/2}.Clamp()
		resp.Nodes = append(resp.Nodes, Placement{ID: h.ID, X: p.X, Y: p.Y})
	}
	return resp, nil
}

var _ Engine = Graphviz{}
