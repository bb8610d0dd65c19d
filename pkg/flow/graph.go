package flow

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// scatterExtent bounds the random placement used by [Graph.ScatterPosition].
const scatterExtent = 400

// ChangeOp names the kind of committed mutation reported to observers.
type ChangeOp int

const (
	NodeAdded ChangeOp = iota + 1
	NodeRemoved
	NodeMoved
	NodeRenamed
	EdgeAdded
	EdgeRemoved
	Replaced
)

func (op ChangeOp) String() string {
	switch op {
	case NodeAdded:
		return "node-added"
	case NodeRemoved:
		return "node-removed"
	case NodeMoved:
		return "node-moved"
	case NodeRenamed:
		return "node-renamed"
	case EdgeAdded:
		return "edge-added"
	case EdgeRemoved:
		return "edge-removed"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Change describes one committed mutation. Node and Edge are set when the
// mutation concerns a single element.
type Change struct {
	Op   ChangeOp
	Node NodeID
	Edge EdgeID
}

// Observer is notified after every committed mutation. No-ops are never
// reported.
type Observer func(Change)

// Graph owns the canonical node and edge sets of a diagram and enforces the
// structural invariants:
//   - node IDs are unique
//   - node positions are non-negative
//   - every edge references two distinct nodes that are present
//   - capped kinds never exceed their fan-out
//
// The zero value is not usable - use [New].
// Graph is not safe for concurrent use; callers serialize access.
type Graph struct {
	nodes     map[NodeID]*Node
	order     []NodeID
	edges     []Edge
	newID     func() string
	random    func() float64
	observers []Observer
	version   uint64
}

// Option configures a [Graph].
type Option func(*Graph)

// WithIDGenerator replaces the default UUID source for node and edge IDs.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) { g.newID = fn }
}

// WithRandom replaces the source used by [Graph.ScatterPosition].
// fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(g *Graph) { g.random = fn }
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:  make(map[NodeID]*Node),
		newID:  uuid.NewString,
		random: rand.Float64,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Observe registers fn to be called after each committed mutation.
func (g *Graph) Observe(fn Observer) {
	g.observers = append(g.observers, fn)
}

// Version counts committed mutations since creation.
func (g *Graph) Version() uint64 { return g.version }

func (g *Graph) commit(c Change) {
	g.version++
	for _, fn := range g.observers {
		fn(c)
	}
}

// ScatterPosition returns a pseudo-random position in the default placement
// area, used when a node is added without an explicit location.
func (g *Graph) ScatterPosition() Point {
	return Point{X: g.random() * scatterExtent, Y: g.random() * scatterExtent}
}

// AddNode creates a node of the given kind with a fresh unique ID and the
// kind's default size. Aliased kinds are stored under their registry name.
// An empty label is replaced with [DefaultLabel]. Negative coordinates are
// clamped to zero. AddNode always succeeds.
func (g *Graph) AddNode(kind Kind, pos Point, label string) NodeID {
	kind = kind.Canonical()
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultLabel(kind)
	}
	id := g.freshNodeID()
	g.nodes[id] = &Node{
		ID:       id,
		Kind:     kind,
		Label:    label,
		Position: pos.Clamp(),
		Size:     kind.Size(),
	}
	g.order = append(g.order, id)
	g.commit(Change{Op: NodeAdded, Node: id})
	return id
}

// DeleteNode removes the node and every edge incident to it.
// Deleting an unknown ID is a no-op.
func (g *Graph) DeleteNode(id NodeID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(n NodeID) bool { return n == id })
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.Source == id || e.Target == id })
	g.commit(Change{Op: NodeRemoved, Node: id})
}

// DeleteEdge removes the edge with the given ID. Unknown IDs are a no-op.
// Roles of the remaining edges are left untouched.
func (g *Graph) DeleteEdge(id EdgeID) {
	i := slices.IndexFunc(g.edges, func(e Edge) bool { return e.ID == id })
	if i < 0 {
		return
	}
	g.edges = slices.Delete(g.edges, i, i+1)
	g.commit(Change{Op: EdgeRemoved, Edge: id})
}

// UpdateNodePosition moves a node, clamping each axis to zero.
// Unknown IDs and unchanged positions are no-ops.
func (g *Graph) UpdateNodePosition(id NodeID, pos Point) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	pos = pos.Clamp()
	if n.Position == pos {
		return
	}
	n.Position = pos
	g.commit(Change{Op: NodeMoved, Node: id})
}

// RenameNode replaces a node's label with the trimmed newLabel. It reports
// whether the label changed: empty labels, unchanged labels and unknown
// IDs are rejected.
func (g *Graph) RenameNode(id NodeID, newLabel string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	label := strings.TrimSpace(newLabel)
	if label == "" || label == n.Label {
		return false
	}
	n.Label = label
	g.commit(Change{Op: NodeRenamed, Node: id})
	return true
}

// Connect adds an edge source→target. Legality and the edge role come from
// [Validate]; on failure the graph is unchanged and the error wraps one of
// [ErrSelfLoop], [ErrMissingEndpoint] or [ErrCapacityExceeded].
func (g *Graph) Connect(source, target NodeID) (EdgeID, error) {
	role, err := Validate(g, source, target)
	if err != nil {
		return "", fmt.Errorf("connect %s -> %s: %w", source, target, err)
	}
	id := g.freshEdgeID()
	g.edges = append(g.edges, Edge{ID: id, Source: source, Target: target, Role: role})
	g.commit(Change{Op: EdgeAdded, Edge: id})
	return id, nil
}

// Snapshot returns a deep copy of the current nodes and edges.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: make([]Node, 0, len(g.order)),
		Edges: slices.Clone(g.edges),
	}
	for _, id := range g.order {
		s.Nodes = append(s.Nodes, *g.nodes[id])
	}
	if s.Edges == nil {
		s.Edges = []Edge{}
	}
	return s
}

// Replace atomically swaps in a new node and edge set. Incoming data is
// sanitized rather than rejected:
//   - nodes with empty or duplicate IDs are dropped
//   - aliased kinds are canonicalized, negative positions are clamped and
//     every node takes its kind's fixed size
//   - edges that are self-loops, reference unknown nodes, or overflow the
//     source's fan-out cap are dropped
//   - edges without an ID get a fresh one; edges without a role get the role
//     [Validate] would assign
func (g *Graph) Replace(nodes []Node, edges []Edge) {
	next := make(map[NodeID]*Node, len(nodes))
	order := make([]NodeID, 0, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			continue
		}
		if _, dup := next[n.ID]; dup {
			continue
		}
		n.Kind = n.Kind.Canonical()
		n.Position = n.Position.Clamp()
		n.Size = n.Kind.Size()
		node := n
		next[n.ID] = &node
		order = append(order, n.ID)
	}

	kept := make([]Edge, 0, len(edges))
	seen := make(map[EdgeID]bool, len(edges))
	outgoing := make(map[NodeID]int)
	for _, e := range edges {
		src, ok := next[e.Source]
		if !ok || e.Source == e.Target {
			continue
		}
		if _, ok := next[e.Target]; !ok {
			continue
		}
		limit := src.Kind.FanOut()
		if limit > 0 && outgoing[e.Source] >= limit {
			continue
		}
		if e.Role == "" {
			e.Role = RolePrimary
			if limit > 0 {
				e.Role = roleFor(outgoing[e.Source])
			}
		}
		if e.ID == "" || seen[e.ID] {
			e.ID = EdgeID(g.newID())
		}
		seen[e.ID] = true
		outgoing[e.Source]++
		kept = append(kept, e)
	}

	g.nodes = next
	g.order = order
	g.edges = kept
	g.commit(Change{Op: Replaced})
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Has reports whether id is present.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id NodeID) int {
	count := 0
	for _, e := range g.edges {
		if e.Source == id {
			count++
		}
	}
	return count
}

// Incident returns the edges that touch id, in creation order.
func (g *Graph) Incident(id NodeID) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// NodeAt returns the topmost node whose box contains p. Later nodes are
// drawn above earlier ones, so the search runs back to front.
func (g *Graph) NodeAt(p Point) (NodeID, bool) {
	for i := len(g.order) - 1; i >= 0; i-- {
		if n := g.nodes[g.order[i]]; n.Contains(p) {
			return n.ID, true
		}
	}
	return "", false
}

func (g *Graph) freshNodeID() NodeID {
	for {
		id := NodeID(g.newID())
		if _, taken := g.nodes[id]; !taken && id != "" {
			return id
		}
	}
}

func (g *Graph) freshEdgeID() EdgeID {
	for {
		id := EdgeID(g.newID())
		if id != "" && !slices.ContainsFunc(g.edges, func(e Edge) bool { return e.ID == id }) {
			return id
		}
	}
}
