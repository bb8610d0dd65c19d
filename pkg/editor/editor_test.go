package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

func newTestEditor(opts ...Option) *Editor {
	n := 0
	g := flow.New(flow.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}))
	return New(append([]Option{WithGraph(g)}, opts...)...)
}

// memPersister is an in-memory Persister that records saves.
type memPersister struct {
	mu      sync.Mutex
	stored  *flow.Snapshot
	saves   int
	loadErr error
	saveErr error
}

func (m *memPersister) Save(_ context.Context, snap flow.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.stored = &snap
	return nil
}

func (m *memPersister) Load(context.Context) (flow.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return flow.Snapshot{}, false, m.loadErr
	}
	if m.stored == nil {
		return flow.Snapshot{}, false, nil
	}
	return *m.stored, true, nil
}

func (m *memPersister) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func TestDragKeepsPointerOffset(t *testing.T) {
	e := newTestEditor()
	id := e.AddNodeAt(flow.KindMessage, flow.Point{X: 10, Y: 10}, "")

	if !e.PointerDown(id, flow.Point{X: 15, Y: 15}) {
		t.Fatal("drag did not start")
	}
	if got := e.Drag().Offset(); got != (flow.Point{X: 5, Y: 5}) {
		t.Errorf("offset = %+v, want (5,5)", got)
	}

	tests := []struct {
		name    string
		pointer flow.Point
		want    flow.Point
	}{
		{"move", flow.Point{X: 50, Y: 50}, flow.Point{X: 45, Y: 45}},
		{"clamp", flow.Point{X: -100, Y: -100}, flow.Point{X: 0, Y: 0}},
		{"clamp one axis", flow.Point{X: 3, Y: 80}, flow.Point{X: 0, Y: 75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.PointerMove(tt.pointer)
			n, _ := e.Graph().Node(id)
			if n.Position != tt.want {
				t.Errorf("position = %+v, want %+v", n.Position, tt.want)
			}
		})
	}
}

func TestDragLifecycle(t *testing.T) {
	e := newTestEditor()
	id := e.AddNodeAt(flow.KindMessage, flow.Point{X: 10, Y: 10}, "")

	e.PointerDown(id, flow.Point{X: 10, Y: 10})
	if e.Drag().State() != Dragging {
		t.Fatalf("state = %s, want dragging", e.Drag().State())
	}
	if sel, _ := e.Selected(); sel != id {
		t.Errorf("starting a drag should select the node, selected %q", sel)
	}

	e.PointerUp()
	if e.Drag().State() != Idle {
		t.Fatalf("state = %s, want idle", e.Drag().State())
	}

	before := e.Graph().Version()
	e.PointerMove(flow.Point{X: 200, Y: 200})
	if e.Graph().Version() != before {
		t.Error("moving while idle must not mutate")
	}
	if sel, _ := e.Selected(); sel != id {
		t.Error("selection survives the end of a drag")
	}

	e.PointerDown(id, flow.Point{X: 10, Y: 10})
	e.PointerCancel()
	if e.Drag().State() != Idle {
		t.Error("cancel should return to idle")
	}
}

func TestPointerDownUnknownNode(t *testing.T) {
	e := newTestEditor()
	if e.PointerDown("ghost", flow.Point{}) {
		t.Error("drag started on unknown node")
	}
	if _, ok := e.Selected(); ok {
		t.Error("unknown node selected")
	}
}

func TestDragEndsWhenNodeDeleted(t *testing.T) {
	e := newTestEditor()
	id := e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	e.PointerDown(id, flow.Point{X: 1, Y: 1})

	e.DeleteNode(id)

	if e.Drag().State() != Idle {
		t.Error("drag should end when its node disappears")
	}
	if _, ok := e.Selected(); ok {
		t.Error("selection should clear when its node disappears")
	}
}

func TestPointerDownAtBackgroundClearsSelection(t *testing.T) {
	e := newTestEditor()
	id := e.AddNodeAt(flow.KindMessage, flow.Point{X: 100, Y: 100}, "")

	got, hit := e.PointerDownAt(flow.Point{X: 120, Y: 110})
	if !hit || got != id {
		t.Fatalf("PointerDownAt = %q, %v; want %q", got, hit, id)
	}
	e.PointerUp()

	if _, hit := e.PointerDownAt(flow.Point{X: 5, Y: 5}); hit {
		t.Fatal("background click hit a node")
	}
	if _, ok := e.Selected(); ok {
		t.Error("background click should clear the selection")
	}
}

func TestDeleteSelected(t *testing.T) {
	e := newTestEditor()
	a := e.AddNodeAt(flow.KindSplit, flow.Point{}, "")
	b := e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	if _, err := e.Connect(a, b); err != nil {
		t.Fatal(err)
	}

	if e.DeleteSelected() {
		t.Error("nothing selected, nothing to delete")
	}

	e.Select(a)
	if !e.HandleKey(KeyDelete) {
		t.Fatal("delete key not handled")
	}
	if e.Graph().Has(a) || e.Graph().EdgeCount() != 0 {
		t.Error("selected node and its edge should be gone")
	}
	if _, ok := e.Selected(); ok {
		t.Error("selection should be cleared after delete")
	}

	e.Select(b)
	if !e.HandleKey(KeyBackspace) || e.Graph().Has(b) {
		t.Error("backspace should delete too")
	}
}

func TestDeleteSuppressedWhileEditingLabel(t *testing.T) {
	e := newTestEditor()
	id := e.AddNodeAt(flow.KindMessage, flow.Point{}, "Hello")
	e.Select(id)
	e.BeginEdit(id)

	if e.HandleKey(KeyBackspace) {
		t.Error("backspace must go to the text field")
	}
	if !e.Graph().Has(id) {
		t.Fatal("node deleted during label edit")
	}
}

func TestLabelEdit(t *testing.T) {
	tests := []struct {
		name  string
		run   func(e *Editor, id flow.NodeID)
		label string
	}{
		{"enter commits", func(e *Editor, id flow.NodeID) {
			e.BeginEdit(id)
			e.SetEditText("  Renamed ")
			e.HandleKey(KeyEnter)
		}, "Renamed"},
		{"escape cancels", func(e *Editor, id flow.NodeID) {
			e.BeginEdit(id)
			e.SetEditText("Discarded")
			e.HandleKey(KeyEscape)
		}, "Hello"},
		{"empty rejected", func(e *Editor, id flow.NodeID) {
			e.BeginEdit(id)
			e.CommitEdit("   ")
		}, "Hello"},
		{"background click commits", func(e *Editor, id flow.NodeID) {
			e.BeginEdit(id)
			e.SetEditText("Blurred")
			e.PointerDownAt(flow.Point{X: 900, Y: 900})
		}, "Blurred"},
		{"enter on selection opens edit", func(e *Editor, id flow.NodeID) {
			e.Select(id)
			e.HandleKey(KeyEnter)
			e.SetEditText("Opened")
			e.HandleKey(KeyEnter)
		}, "Opened"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor()
			id := e.AddNodeAt(flow.KindMessage, flow.Point{}, "Hello")
			tt.run(e, id)
			n, _ := e.Graph().Node(id)
			if n.Label != tt.label {
				t.Errorf("label = %q, want %q", n.Label, tt.label)
			}
			if _, editing := e.Editing(); editing {
				t.Error("edit should be closed")
			}
		})
	}
}

func TestHydrateLoadsBeforeSaving(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	stored := flow.Snapshot{
		Nodes: []flow.Node{{ID: "saved", Kind: flow.KindCheck, Label: "Stored"}},
		Edges: []flow.Edge{},
	}
	p.stored = &stored

	e := newTestEditor(WithPersister(p))

	// Mutations before hydration are not saved.
	e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	if p.saveCount() != 0 {
		t.Fatal("saved before hydration")
	}

	if err := e.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if !e.Graph().Has("saved") || e.Graph().NodeCount() != 1 {
		t.Fatalf("graph = %+v, want the stored snapshot", e.Snapshot())
	}
	if p.saveCount() != 0 {
		t.Error("hydration itself must not save")
	}

	e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	if p.saveCount() != 1 {
		t.Errorf("saves = %d, want 1 after a mutation", p.saveCount())
	}
	if len(p.stored.Nodes) != 2 {
		t.Errorf("stored nodes = %d, want 2", len(p.stored.Nodes))
	}
}

func TestHydrateError(t *testing.T) {
	p := &memPersister{loadErr: errors.New("backend down")}
	e := newTestEditor(WithPersister(p))

	if err := e.Hydrate(context.Background()); err == nil {
		t.Fatal("expected hydration error")
	}
	if e.Hydrated() {
		t.Error("failed hydration must keep saving disabled")
	}
	e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	if p.saveCount() != 0 {
		t.Error("saved without hydration")
	}
}

func TestNoOpsDoNotSave(t *testing.T) {
	p := &memPersister{}
	e := newTestEditor(WithPersister(p))
	if err := e.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	id := e.AddNodeAt(flow.KindMessage, flow.Point{X: 1, Y: 1}, "x")
	saves := p.saveCount()

	e.DeleteNode("ghost")
	e.MoveNode(id, flow.Point{X: 1, Y: 1})
	e.Rename(id, "x")

	if p.saveCount() != saves {
		t.Errorf("no-ops triggered %d saves", p.saveCount()-saves)
	}
}

func TestMutationSaveFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{saveErr: errors.New("disk full")}
	e := newTestEditor(WithPersister(p))
	if err := e.Hydrate(ctx); err != nil {
		t.Fatal(err)
	}

	e.AddNode(flow.KindMessage, "a")
	if e.Autosaver().Err() == nil || !e.Autosaver().Pending() {
		t.Fatal("failed autosave should be recorded and kept pending")
	}

	p.mu.Lock()
	p.saveErr = nil
	p.mu.Unlock()

	e.AddNode(flow.KindMessage, "b")
	if err := e.Autosaver().Err(); err != nil {
		t.Errorf("Err() = %v after a successful save", err)
	}
	if p.saveCount() != 1 {
		t.Errorf("saves = %d, want 1", p.saveCount())
	}
	snap, ok, _ := p.Load(ctx)
	if !ok || len(snap.Nodes) != 2 {
		t.Errorf("stored %d nodes, want 2", len(snap.Nodes))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := &memPersister{}
	e := newTestEditor(WithPersister(p))
	if err := e.Hydrate(ctx); err != nil {
		t.Fatal(err)
	}
	a := e.AddNodeAt(flow.KindSplit, flow.Point{X: 10, Y: 20}, "Split")
	b := e.AddNodeAt(flow.KindMessage, flow.Point{X: 0, Y: 120}, "Left")
	c := e.AddNodeAt(flow.KindDelay, flow.Point{X: 200, Y: 120}, "Right")
	for _, target := range []flow.NodeID{b, c} {
		if _, err := e.Connect(a, target); err != nil {
			t.Fatal(err)
		}
	}
	want := e.Snapshot()

	restored := newTestEditor(WithPersister(p))
	if err := restored.Hydrate(ctx); err != nil {
		t.Fatal(err)
	}
	got := restored.Snapshot()

	if fmt.Sprint(got.Nodes) != fmt.Sprint(want.Nodes) {
		t.Errorf("nodes = %+v, want %+v", got.Nodes, want.Nodes)
	}
	if fmt.Sprint(got.Edges) != fmt.Sprint(want.Edges) {
		t.Errorf("edges = %+v, want %+v", got.Edges, want.Edges)
	}
}

func TestLayoutGating(t *testing.T) {
	e := newTestEditor()
	a := e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	b := e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	e.Connect(a, b)

	e.PointerDown(a, flow.Point{})
	req, err := e.BeginLayout()
	if err != nil {
		t.Fatal(err)
	}
	if e.Drag().State() != Idle {
		t.Error("beginning a layout should end the drag")
	}
	if _, err := e.BeginLayout(); !errors.Is(err, ErrLayoutPending) {
		t.Errorf("second BeginLayout err = %v, want ErrLayoutPending", err)
	}
	if e.PointerDown(a, flow.Point{}) {
		t.Error("drag started while layout pending")
	}

	resp, err := layout.Layered{}.Layout(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.CompleteLayout(resp, nil); err != nil {
		t.Fatal(err)
	}
	if e.LayoutPending() {
		t.Error("layout should be complete")
	}
	if !e.PointerDown(a, flow.Point{}) {
		t.Error("drag should work again after layout")
	}
}

func TestLayoutDoesNotResurrectDeletedNode(t *testing.T) {
	e := newTestEditor()
	a := e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	b := e.AddNodeAt(flow.KindMessage, flow.Point{}, "")

	req, err := e.BeginLayout()
	if err != nil {
		t.Fatal(err)
	}
	e.DeleteNode(b)

	resp := layout.Response{Nodes: []layout.Placement{
		{ID: a, X: 100, Y: 100},
		{ID: b, X: 300, Y: 100},
	}}
	if len(req.Nodes) != 2 {
		t.Fatalf("request nodes = %d", len(req.Nodes))
	}
	n, err := e.CompleteLayout(resp, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("placed = %d, want 1", n)
	}
	if e.Graph().Has(b) {
		t.Error("deleted node came back")
	}
	na, _ := e.Graph().Node(a)
	if na.Position != (flow.Point{X: 100, Y: 100}) {
		t.Errorf("a position = %+v", na.Position)
	}
}

func TestLayoutRunsFit(t *testing.T) {
	fitted := 0
	e := newTestEditor(WithFit(func() { fitted++ }), WithEngine(layout.Layered{}))
	e.AddNodeAt(flow.KindMessage, flow.Point{X: 40, Y: 40}, "")

	if _, err := e.Layout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fitted != 1 {
		t.Errorf("fit called %d times, want 1", fitted)
	}
}

func TestLayoutFailureReleasesGate(t *testing.T) {
	e := newTestEditor()
	e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	if _, err := e.BeginLayout(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CompleteLayout(layout.Response{}, errors.New("engine crashed")); err == nil {
		t.Error("expected engine error")
	}
	if e.LayoutPending() {
		t.Error("a failed layout must release the gate")
	}
}

func TestSceneMarksSelection(t *testing.T) {
	e := newTestEditor()
	a := e.AddNodeAt(flow.KindMessage, flow.Point{}, "")
	e.AddNodeAt(flow.KindMessage, flow.Point{X: 200}, "")
	e.Select(a)

	s := e.Scene()
	if len(s.Boxes) != 2 || !s.Boxes[0].Selected || s.Boxes[1].Selected {
		t.Errorf("boxes = %+v", s.Boxes)
	}
}
