package layout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// Layout directions.
const (
	DirectionDown  = "DOWN"
	DirectionRight = "RIGHT"
)

// DefaultSpacing is the gap between neighboring boxes, in diagram units.
const DefaultSpacing = 80.0

// ErrEmptyResponse is returned when an engine places none of the requested
// nodes.
var ErrEmptyResponse = errors.New("layout engine returned no positions")

// NodeHint is a node as seen by an engine: an id and a fixed box size.
type NodeHint struct {
	ID     flow.NodeID `json:"id"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
}

// EdgeHint is a directed edge between two hinted nodes.
type EdgeHint struct {
	Source flow.NodeID `json:"source"`
	Target flow.NodeID `json:"target"`
}

// Request is the input to an [Engine].
type Request struct {
	Nodes     []NodeHint `json:"nodes"`
	Edges     []EdgeHint `json:"edges"`
	Direction string     `json:"direction"`
	Spacing   float64    `json:"spacing"`
}

// Placement is the top-left position an engine chose for a node.
type Placement struct {
	ID flow.NodeID `json:"id"`
	X  float64     `json:"x"`
	Y  float64     `json:"y"`
}

// Response is an engine's output.
type Response struct {
	Nodes []Placement `json:"nodes"`
}

// Engine computes positions for a request. Engines may block; they must
// not touch the graph the request was built from.
type Engine interface {
	Name() string
	Layout(ctx context.Context, req Request) (Response, error)
}

// NewRequest builds a top-down request from snap. Non-positive spacing
// selects [DefaultSpacing].
func NewRequest(snap flow.Snapshot, spacing float64) Request {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	req := Request{
		Nodes:     make([]NodeHint, len(snap.Nodes)),
		Edges:     make([]EdgeHint, len(snap.Edges)),
		Direction: DirectionDown,
		Spacing:   spacing,
	}
	for i, n := range snap.Nodes {
		req.Nodes[i] = NodeHint{ID: n.ID, Width: n.Size.Width, Height: n.Size.Height}
	}
	for i, e := range snap.Edges {
		req.Edges[i] = EdgeHint{Source: e.Source, Target: e.Target}
	}
	return req
}

// Compute runs e on req and reports the run to the layout hooks.
// An engine that places none of a non-empty request's nodes yields
// [ErrEmptyResponse].
func Compute(ctx context.Context, e Engine, req Request) (Response, error) {
	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, e.Name(), len(req.Nodes))

	resp, err := e.Layout(ctx, req)
	if err == nil && len(req.Nodes) > 0 && len(resp.Nodes) == 0 {
		err = ErrEmptyResponse
	}
	if err != nil {
		err = fmt.Errorf("%s layout: %w", e.Name(), err)
	}
	observability.Layout().OnLayoutComplete(ctx, e.Name(), len(resp.Nodes), time.Since(start), err)
	return resp, err
}

// Apply writes the positions in resp into g and returns how many nodes
// moved. The response is checked against the graph as it is now, not as
// it was when the request was built: placements for nodes deleted in the
// meantime are dropped and nodes added since keep their position. Edges
// are carried over unchanged. When nothing matches, g is left untouched.
func Apply(g *flow.Graph, resp Response) int {
	placed := make(map[flow.NodeID]flow.Point, len(resp.Nodes))
	for _, p := range resp.Nodes {
		placed[p.ID] = flow.Point{X: p.X, Y: p.Y}
	}

	snap := g.Snapshot()
	applied := 0
	for i, n := range snap.Nodes {
		if p, ok := placed[n.ID]; ok {
			snap.Nodes[i].Position = p.Clamp()
			applied++
		}
	}
	if applied == 0 {
		return 0
	}
	g.Replace(snap.Nodes, snap.Edges)
	return applied
}

// Engine names accepted by [NewEngine].
const (
	EngineGraphviz = "graphviz"
	EngineLayered  = "layered"
)

// NewEngine returns the engine registered under name. An empty name
// selects graphviz.
func NewEngine(name string) (Engine, error) {
	switch name {
	case "", EngineGraphviz:
		return Graphviz{}, nil
	case EngineLayered:
		return Layered{}, nil
	default:
		return nil, fmt.Errorf("unknown layout engine %q", name)
	}
}
