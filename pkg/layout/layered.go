package layout

import (
	"context"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// Layered places nodes in rows by longest path from the sources. Each node
// sits one row below its deepest parent; rows are centered on the widest
// row. Nodes on a cycle are pulled into the ordering in request order, so
// every requested node is placed.
type Layered struct{}

// Name implements [Engine].
func (Layered) Name() string { return EngineLayered }

// Layout implements [Engine].
func (Layered) Layout(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	spacing := req.Spacing
	if spacing <= 0 {
		spacing = DefaultSpacing
	}

	rows := assignRows(req)
	byRow := make([][]int, 0)
	for i, r := range rows {
		for len(byRow) <= r {
			byRow = append(byRow, nil)
		}
		byRow[r] = append(byRow[r], i)
	}

	horizontal := req.Direction == DirectionRight
	// main runs along the flow, cross across it.
	mainSize := func(h NodeHint) float64 {
		if horizontal {
			return h.Width
		}
		return h.Height
	}
	crossSize := func(h NodeHint) float64 {
		if horizontal {
			return h.Height
		}
		return h.Width
	}

	extents := make([]float64, len(byRow))
	widest := 0.0
	for r, members := range byRow {
		for j, i := range members {
			if j > 0 {
				extents[r] += spacing
			}
			extents[r] += crossSize(req.Nodes[i])
		}
		widest = max(widest, extents[r])
	}

	resp := Response{Nodes: make([]Placement, 0, len(req.Nodes))}
	along := 0.0
	for r, members := range byRow {
		across := (widest - extents[r]) / 2
		depth := 0.0
		for _, i := range members {
			h := req.Nodes[i]
			p := Placement{ID: h.ID, X: across, Y: along}
			if horizontal {
				p.X, p.Y = along, across
			}
			resp.Nodes = append(resp.Nodes, p)
			across += crossSize(h) + spacing
			depth = max(depth, mainSize(h))
		}
		along += depth + spacing
	}
	return resp, nil
}

// assignRows returns the row index of each request node, by position in
// req.Nodes.
func assignRows(req Request) []int {
	index := make(map[flow.NodeID]int, len(req.Nodes))
	for i, n := range req.Nodes {
		index[n.ID] = i
	}

	children := make([][]int, len(req.Nodes))
	inDegree := make([]int, len(req.Nodes))
	for _, e := range req.Edges {
		from, ok := index[e.Source]
		if !ok {
			continue
		}
		to, ok := index[e.Target]
		if !ok || from == to {
			continue
		}
		children[from] = append(children[from], to)
		inDegree[to]++
	}

	rows := make([]int, len(req.Nodes))
	done := make([]bool, len(req.Nodes))
	queue := make([]int, 0, len(req.Nodes))
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}

	processed := 0
	next := 0
	for processed < len(req.Nodes) {
		if len(queue) == 0 {
			// Cycle: release the first node still waiting.
			for done[next] || inDegree[next] == 0 {
				next++
			}
			inDegree[next] = 0
			queue = append(queue, next)
		}
		curr := queue[0]
		queue = queue[1:]
		if done[curr] {
			continue
		}
		done[curr] = true
		processed++

		for _, child := range children[curr] {
			if done[child] {
				continue
			}
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return rows
}

var _ Engine = Layered{}
