package flow

// NodeID identifies a node for its whole lifetime.
type NodeID string

// EdgeID identifies an edge.
type EdgeID string

// Point is a 2D coordinate in diagram units (pixels).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Clamp returns p with each negative axis raised to zero.
func (p Point) Clamp() Point {
	return Point{X: max(p.X, 0), Y: max(p.Y, 0)}
}

// Size is a width/height pair in diagram units.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Node is a typed, labeled, positioned vertex. Position is the top-left
// corner of the node's bounding box.
type Node struct {
	ID       NodeID `json:"id" bson:"id"`
	Kind     Kind   `json:"kind" bson:"kind"`
	Label    string `json:"label" bson:"label"`
	Position Point  `json:"position" bson:"position"`
	Size     Size   `json:"size" bson:"size"`
}

// Contains reports whether p lies inside the node's bounding box.
func (n Node) Contains(p Point) bool {
	return p.X >= n.Position.X && p.X <= n.Position.X+n.Size.Width &&
		p.Y >= n.Position.Y && p.Y <= n.Position.Y+n.Size.Height
}

// BottomCenter is the anchor for outgoing edges.
func (n Node) BottomCenter() Point {
	return Point{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height}
}

// TopCenter is the anchor for incoming edges.
func (n Node) TopCenter() Point {
	return Point{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y}
}

// Role classifies an edge for rendering. It is assigned once when the edge
// is created and has no effect on graph semantics.
type Role string

// Edge roles.
const (
	RolePrimary   Role = "primary"
	RoleAlternate Role = "alternate"
)

// Edge is a directed connection between two nodes.
type Edge struct {
	ID     EdgeID `json:"id" bson:"id"`
	Source NodeID `json:"source" bson:"source"`
	Target NodeID `json:"target" bson:"target"`
	Role   Role   `json:"role" bson:"role"`
}

// Snapshot is a complete, consistent copy of a graph's nodes and edges.
// Nodes appear in insertion order and edges in creation order.
type Snapshot struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node looks up a node by ID.
func (s Snapshot) Node(id NodeID) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// OutDegree counts the edges leaving id.
func (s Snapshot) OutDegree(id NodeID) int {
	count := 0
	for _, e := range s.Edges {
		if e.Source == id {
			count++
		}
	}
	return count
}

// IDs returns the set of node IDs present in the snapshot.
func (s Snapshot) IDs() map[NodeID]bool {
	ids := make(map[NodeID]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		ids[n.ID] = true
	}
	return ids
}
