package editor

import "github.com/matzehuels/flowcanvas/pkg/flow"

// DragState is the state of a [Drag].
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Drag moves one node with the pointer. The offset between the pointer and
// the node's top-left corner is captured when the drag starts so the node
// does not jump under the cursor.
type Drag struct {
	state  DragState
	node   flow.NodeID
	offset flow.Point
}

// State returns the current state.
func (d *Drag) State() DragState { return d.state }

// Node returns the node being dragged, or "" when idle.
func (d *Drag) Node() flow.NodeID { return d.node }

// Offset returns the pointer offset captured at the start of the drag.
func (d *Drag) Offset() flow.Point { return d.offset }

// Begin starts dragging id with the pointer at p. It reports false, and
// stays idle, if id is not in g.
func (d *Drag) Begin(g *flow.Graph, id flow.NodeID, p flow.Point) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	d.state = Dragging
	d.node = id
	d.offset = p.Sub(n.Position)
	return true
}

// Move repositions the dragged node so it keeps its offset from p. The
// graph clamps negative coordinates. Moving while idle does nothing; a drag
// whose node has disappeared ends.
func (d *Drag) Move(g *flow.Graph, p flow.Point) {
	if d.state != Dragging {
		return
	}
	if !g.Has(d.node) {
		d.End()
		return
	}
	g.UpdateNodePosition(d.node, p.Sub(d.offset))
}

// End returns to idle. It is used for both pointer-up and pointer-cancel.
func (d *Drag) End() {
	*d = Drag{}
}
