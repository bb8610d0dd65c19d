package flow

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
)

func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestAddNode(t *testing.T) {
	g := New(seqIDs())

	id := g.AddNode(KindMessage, Point{X: 10, Y: 20}, "  hello  ")
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	if n.Label != "hello" {
		t.Errorf("label = %q, want %q", n.Label, "hello")
	}
	if n.Size != KindMessage.Size() {
		t.Errorf("size = %+v, want %+v", n.Size, KindMessage.Size())
	}

	other := g.AddNode(KindSplit, Point{X: -5, Y: 3}, "")
	if other == id {
		t.Fatal("ids must be unique")
	}
	n, _ = g.Node(other)
	if n.Position != (Point{X: 0, Y: 3}) {
		t.Errorf("position = %+v, want clamped (0,3)", n.Position)
	}
	if n.Label != "split node" {
		t.Errorf("default label = %q", n.Label)
	}
}

func TestAddNodeSkipsTakenIDs(t *testing.T) {
	ids := []string{"a", "a", "b"}
	i := 0
	g := New(WithIDGenerator(func() string {
		id := ids[i]
		i++
		return id
	}))

	first := g.AddNode(KindCheck, Point{}, "")
	second := g.AddNode(KindCheck, Point{}, "")
	if first != "a" || second != "b" {
		t.Errorf("got ids %s, %s; want a, b", first, second)
	}
}

func TestDeleteNodePrunesIncidentEdges(t *testing.T) {
	g := New(seqIDs())
	a := g.AddNode(KindMessage, Point{}, "a")
	x := g.AddNode(KindMessage, Point{}, "x")
	b := g.AddNode(KindMessage, Point{}, "b")
	c := g.AddNode(KindMessage, Point{}, "c")

	mustConnect(t, g, a, x)
	mustConnect(t, g, x, b)
	keep := mustConnect(t, g, b, c)

	g.DeleteNode(x)

	if g.Has(x) {
		t.Fatal("node still present")
	}
	edges := g.Snapshot().Edges
	if len(edges) != 1 || edges[0].ID != keep {
		t.Errorf("edges = %+v, want only %s", edges, keep)
	}
}

func TestDeleteUnknownNodeIsNoop(t *testing.T) {
	g := New(seqIDs())
	g.AddNode(KindMessage, Point{}, "")

	var changes int
	g.Observe(func(Change) { changes++ })
	before := g.Version()

	g.DeleteNode("missing")

	if changes != 0 || g.Version() != before {
		t.Errorf("no-op delete reported %d changes", changes)
	}
}

func TestUpdateNodePosition(t *testing.T) {
	tests := []struct {
		name string
		pos  Point
		want Point
	}{
		{"Positive", Point{X: 45, Y: 45}, Point{X: 45, Y: 45}},
		{"NegativeX", Point{X: -1, Y: 7}, Point{X: 0, Y: 7}},
		{"BothNegative", Point{X: -100, Y: -100}, Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(seqIDs())
			id := g.AddNode(KindDelay, Point{X: 10, Y: 10}, "")
			g.UpdateNodePosition(id, tt.pos)
			n, _ := g.Node(id)
			if n.Position != tt.want {
				t.Errorf("position = %+v, want %+v", n.Position, tt.want)
			}
		})
	}
}

func TestUpdateNodePositionUnknownOrUnchanged(t *testing.T) {
	g := New(seqIDs())
	id := g.AddNode(KindDelay, Point{X: 10, Y: 10}, "")
	before := g.Version()

	g.UpdateNodePosition("missing", Point{X: 1, Y: 1})
	g.UpdateNodePosition(id, Point{X: 10, Y: 10})

	if g.Version() != before {
		t.Error("no-op moves must not commit")
	}
}

func TestRenameNode(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		wantOK    bool
		wantLabel string
	}{
		{"Replaces", "Send email", true, "Send email"},
		{"Trims", "  Wait  ", true, "Wait"},
		{"RejectsEmpty", "   ", false, "original"},
		{"RejectsUnchanged", " original ", false, "original"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(seqIDs())
			id := g.AddNode(KindMessage, Point{}, "original")
			if got := g.RenameNode(id, tt.label); got != tt.wantOK {
				t.Errorf("RenameNode = %v, want %v", got, tt.wantOK)
			}
			n, _ := g.Node(id)
			if n.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", n.Label, tt.wantLabel)
			}
		})
	}

	g := New(seqIDs())
	if g.RenameNode("missing", "x") {
		t.Error("renaming unknown node should be rejected")
	}
}

func TestConnectSelfLoop(t *testing.T) {
	g := New(seqIDs())
	a := g.AddNode(KindProcess, Point{}, "")

	_, err := g.Connect(a, a)
	if !errors.Is(err, ErrSelfLoop) {
		t.Errorf("err = %v, want ErrSelfLoop", err)
	}
	// Self-loop wins even when the node is missing.
	_, err = g.Connect("ghost", "ghost")
	if !errors.Is(err, ErrSelfLoop) {
		t.Errorf("err = %v, want ErrSelfLoop for missing node", err)
	}
	if g.EdgeCount() != 0 {
		t.Error("failed connect must not add edges")
	}
}

func TestConnectMissingEndpoint(t *testing.T) {
	g := New(seqIDs())
	a := g.AddNode(KindProcess, Point{}, "")

	for _, pair := range [][2]NodeID{{a, "ghost"}, {"ghost", a}} {
		if _, err := g.Connect(pair[0], pair[1]); !errors.Is(err, ErrMissingEndpoint) {
			t.Errorf("Connect(%s, %s) err = %v, want ErrMissingEndpoint", pair[0], pair[1], err)
		}
	}
}

func TestConnectSplitCapacity(t *testing.T) {
	g := New(seqIDs())
	split := g.AddNode(KindSplit, Point{}, "")
	a := g.AddNode(KindMessage, Point{}, "")
	b := g.AddNode(KindMessage, Point{}, "")
	c := g.AddNode(KindMessage, Point{}, "")

	first := mustConnect(t, g, split, a)
	second := mustConnect(t, g, split, b)

	roles := map[EdgeID]Role{}
	for _, e := range g.Snapshot().Edges {
		roles[e.ID] = e.Role
	}
	if roles[first] != RolePrimary {
		t.Errorf("first role = %s, want primary", roles[first])
	}
	if roles[second] != RoleAlternate {
		t.Errorf("second role = %s, want alternate", roles[second])
	}

	before := g.Snapshot()
	_, err := g.Connect(split, c)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
	after := g.Snapshot()
	if len(after.Edges) != len(before.Edges) {
		t.Errorf("edges changed on failed connect: %d -> %d", len(before.Edges), len(after.Edges))
	}
}

func TestConnectUncappedAlwaysPrimary(t *testing.T) {
	g := New(seqIDs())
	src := g.AddNode(KindMessage, Point{}, "")
	for i := 0; i < 4; i++ {
		dst := g.AddNode(KindCheck, Point{}, "")
		mustConnect(t, g, src, dst)
	}
	for _, e := range g.Snapshot().Edges {
		if e.Role != RolePrimary {
			t.Errorf("edge %s role = %s, want primary", e.ID, e.Role)
		}
	}
}

func TestRolesAreNotRecomputed(t *testing.T) {
	g := New(seqIDs())
	split := g.AddNode(KindSplit, Point{}, "")
	a := g.AddNode(KindMessage, Point{}, "")
	b := g.AddNode(KindMessage, Point{}, "")
	first := mustConnect(t, g, split, a)
	second := mustConnect(t, g, split, b)

	g.DeleteEdge(first)

	edges := g.Snapshot().Edges
	if len(edges) != 1 || edges[0].ID != second || edges[0].Role != RoleAlternate {
		t.Errorf("remaining edge = %+v, want %s with role alternate", edges, second)
	}

	// The freed slot is reused with the role derived from the current count.
	c := g.AddNode(KindMessage, Point{}, "")
	third := mustConnect(t, g, split, c)
	for _, e := range g.Snapshot().Edges {
		if e.ID == third && e.Role != RoleAlternate {
			t.Errorf("third role = %s, want alternate", e.Role)
		}
	}
}

func TestReplaceSanitizes(t *testing.T) {
	g := New(seqIDs())
	nodes := []Node{
		{ID: "a", Kind: KindSplit, Label: "a", Position: Point{X: -3, Y: 4}},
		{ID: "b", Kind: KindMessage, Label: "b", Size: Size{Width: 1, Height: 1}},
		{ID: "c", Kind: KindMessage, Label: "c"},
		{ID: "d", Kind: KindMessage, Label: "d"},
		{ID: "a", Kind: KindMessage, Label: "dup"},
		{ID: "", Kind: KindMessage, Label: "anon"},
	}
	edges := []Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "a", Target: "ghost"},
		{ID: "e3", Source: "b", Target: "b"},
		{ID: "e4", Source: "a", Target: "c"},
		{ID: "e5", Source: "a", Target: "d"},
		{ID: "e1", Source: "b", Target: "c", Role: RolePrimary},
	}

	g.Replace(nodes, edges)

	if g.NodeCount() != 4 {
		t.Errorf("nodes = %d, want 4", g.NodeCount())
	}
	a, _ := g.Node("a")
	if a.Label != "a" || a.Position != (Point{X: 0, Y: 4}) {
		t.Errorf("node a = %+v", a)
	}
	if a.Size != KindSplit.Size() {
		t.Errorf("zero size should default to kind size, got %+v", a.Size)
	}
	if b, _ := g.Node("b"); b.Size != KindMessage.Size() {
		t.Errorf("stored size should be replaced by kind size, got %+v", b.Size)
	}

	snap := g.Snapshot()
	if len(snap.Edges) != 3 {
		t.Fatalf("edges = %+v, want 3", snap.Edges)
	}
	if snap.Edges[0].Role != RolePrimary || snap.Edges[1].Role != RoleAlternate {
		t.Errorf("roles = %s, %s", snap.Edges[0].Role, snap.Edges[1].Role)
	}
	if snap.Edges[2].ID == "e1" {
		t.Error("duplicate edge ID should be reassigned")
	}
	assertIntegrity(t, g)
}

func TestReplaceResolvesKindAliases(t *testing.T) {
	g := New(seqIDs())
	g.Replace([]Node{
		{ID: "d", Kind: "generic-decision", Label: "d"},
		{ID: "x", Kind: KindProcess, Label: "x"},
		{ID: "y", Kind: KindProcess, Label: "y"},
		{ID: "z", Kind: KindProcess, Label: "z"},
	}, nil)

	d, _ := g.Node("d")
	if d.Kind != KindDecision {
		t.Errorf("kind = %q, want %q", d.Kind, KindDecision)
	}
	if d.Size != KindDecision.Size() {
		t.Errorf("size = %+v, want decision size", d.Size)
	}

	for _, target := range []NodeID{"x", "y"} {
		if _, err := g.Connect("d", target); err != nil {
			t.Fatalf("Connect(d, %s): %v", target, err)
		}
	}
	if _, err := g.Connect("d", "z"); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("third edge err = %v, want ErrCapacityExceeded", err)
	}
}

func TestAddNodeResolvesKindAliases(t *testing.T) {
	g := New(seqIDs())
	id := g.AddNode("Generic-Output", Point{}, "")
	n, _ := g.Node(id)
	if n.Kind != KindOutput {
		t.Errorf("kind = %q, want %q", n.Kind, KindOutput)
	}
	if n.Label != DefaultLabel(KindOutput) {
		t.Errorf("label = %q", n.Label)
	}
}

func TestNodeAt(t *testing.T) {
	g := New(seqIDs())
	below := g.AddNode(KindMessage, Point{X: 0, Y: 0}, "below")
	above := g.AddNode(KindMessage, Point{X: 50, Y: 10}, "above")

	if id, ok := g.NodeAt(Point{X: 60, Y: 20}); !ok || id != above {
		t.Errorf("NodeAt overlap = %s, want %s", id, above)
	}
	if id, ok := g.NodeAt(Point{X: 5, Y: 5}); !ok || id != below {
		t.Errorf("NodeAt = %s, want %s", id, below)
	}
	if _, ok := g.NodeAt(Point{X: 900, Y: 900}); ok {
		t.Error("background should not hit a node")
	}
}

func TestObserverReportsCommittedChanges(t *testing.T) {
	g := New(seqIDs())
	var ops []ChangeOp
	g.Observe(func(c Change) { ops = append(ops, c.Op) })

	a := g.AddNode(KindSplit, Point{}, "")
	b := g.AddNode(KindCheck, Point{}, "")
	g.UpdateNodePosition(a, Point{X: 5})
	g.RenameNode(b, "renamed")
	g.Connect(a, a) // rejected
	g.Connect(a, b)
	g.DeleteNode(b)
	g.Replace(nil, nil)

	want := []ChangeOp{NodeAdded, NodeAdded, NodeMoved, NodeRenamed, EdgeAdded, NodeRemoved, Replaced}
	if fmt.Sprint(ops) != fmt.Sprint(want) {
		t.Errorf("ops = %v, want %v", ops, want)
	}
	if g.Version() != uint64(len(want)) {
		t.Errorf("version = %d, want %d", g.Version(), len(want))
	}
}

func TestReferentialIntegrityUnderRandomOps(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g := New(seqIDs())
	kinds := Kinds()
	var ids []NodeID

	for i := 0; i < 500; i++ {
		switch op := r.IntN(4); {
		case op == 0 || len(ids) < 2:
			ids = append(ids, g.AddNode(kinds[r.IntN(len(kinds))], Point{}, ""))
		case op == 1:
			g.DeleteNode(ids[r.IntN(len(ids))])
		default:
			g.Connect(ids[r.IntN(len(ids))], ids[r.IntN(len(ids))])
		}
		assertIntegrity(t, g)
	}
}

func TestScatterPosition(t *testing.T) {
	g := New(WithRandom(func() float64 { return 0.5 }))
	if p := g.ScatterPosition(); p != (Point{X: 200, Y: 200}) {
		t.Errorf("ScatterPosition = %+v", p)
	}
}

func mustConnect(t *testing.T, g *Graph, from, to NodeID) EdgeID {
	t.Helper()
	id, err := g.Connect(from, to)
	if err != nil {
		t.Fatalf("Connect(%s, %s): %v", from, to, err)
	}
	return id
}

func assertIntegrity(t *testing.T, g *Graph) {
	t.Helper()
	snap := g.Snapshot()
	ids := snap.IDs()
	out := map[NodeID]int{}
	for _, e := range snap.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			t.Fatalf("dangling edge %+v", e)
		}
		if e.Source == e.Target {
			t.Fatalf("self-loop %+v", e)
		}
		out[e.Source]++
	}
	for _, n := range snap.Nodes {
		if limit := n.Kind.FanOut(); limit > 0 && out[n.ID] > limit {
			t.Fatalf("node %s has %d outgoing edges, cap %d", n.ID, out[n.ID], limit)
		}
		if n.Position.X < 0 || n.Position.Y < 0 {
			t.Fatalf("negative position on %s", n.ID)
		}
	}
}
