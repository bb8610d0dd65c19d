package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flowcanvas/pkg/editor"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

func newTestModel(t *testing.T) (*EditModel, *editor.Editor) {
	t.Helper()
	ed := editor.New(editor.WithLogger(newLogger(&strings.Builder{}, 0)))
	m := NewEditModel(context.Background(), ed, 0)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, ed
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestEditModelDrag(t *testing.T) {
	m, ed := newTestModel(t)
	id := ed.AddNodeAt(flow.KindProcess, flow.Point{X: 10, Y: 10}, "")

	// Cell (2, 2) is below the header, at diagram point (25, 18).
	m.Update(mouse(2, 2, tea.MouseActionPress))
	if sel, _ := ed.Selected(); sel != id {
		t.Fatalf("selected = %q, want %q", sel, id)
	}
	if got := ed.Drag().Offset(); got != (flow.Point{X: 15, Y: 8}) {
		t.Fatalf("offset = %+v", got)
	}

	m.Update(mouse(6, 5, tea.MouseActionMotion))
	n, _ := ed.Graph().Node(id)
	if n.Position != (flow.Point{X: 50, Y: 46}) {
		t.Errorf("position after move = %+v", n.Position)
	}

	m.Update(mouse(0, 1, tea.MouseActionMotion))
	n, _ = ed.Graph().Node(id)
	if n.Position != (flow.Point{}) {
		t.Errorf("position should clamp to origin, got %+v", n.Position)
	}

	m.Update(tea.MouseMsg{X: 0, Y: 1, Action: tea.MouseActionRelease})
	if ed.Drag().State() != editor.Idle {
		t.Error("drag should end on release")
	}
}

func TestEditModelBackgroundClickClearsSelection(t *testing.T) {
	m, ed := newTestModel(t)
	id := ed.AddNodeAt(flow.KindProcess, flow.Point{}, "")
	ed.Select(id)

	m.Update(mouse(60, 20, tea.MouseActionPress))
	if _, ok := ed.Selected(); ok {
		t.Error("background click should clear the selection")
	}
}

func TestEditModelRename(t *testing.T) {
	m, ed := newTestModel(t)
	id := ed.AddNodeAt(flow.KindProcess, flow.Point{}, "ab")
	ed.Select(id)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, editing := ed.Editing(); !editing {
		t.Fatal("enter should open a label edit")
	}

	// Typing goes to the label, not to shortcuts.
	m.Update(runeKey("q"))
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(runeKey("!"))
	if !strings.Contains(m.View(), "ab!") {
		t.Error("view should show the draft label")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	n, _ := ed.Graph().Node(id)
	if n.Label != "ab!" {
		t.Errorf("label = %q", n.Label)
	}
	if _, editing := ed.Editing(); editing {
		t.Error("enter should close the edit")
	}
}

func TestEditModelCancelRename(t *testing.T) {
	m, ed := newTestModel(t)
	id := ed.AddNodeAt(flow.KindProcess, flow.Point{}, "keep")
	ed.Select(id)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(runeKey("xyz"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	n, _ := ed.Graph().Node(id)
	if n.Label != "keep" {
		t.Errorf("label = %q, want keep", n.Label)
	}
}

func TestEditModelDelete(t *testing.T) {
	m, ed := newTestModel(t)
	id := ed.AddNodeAt(flow.KindProcess, flow.Point{}, "")
	ed.Select(id)

	m.Update(tea.KeyMsg{Type: tea.KeyDelete})
	if ed.Graph().Has(id) {
		t.Error("delete should remove the selected node")
	}
	if _, ok := ed.Selected(); ok {
		t.Error("selection should be cleared")
	}
}

func TestEditModelConnect(t *testing.T) {
	m, ed := newTestModel(t)
	a := ed.AddNodeAt(flow.KindProcess, flow.Point{}, "")
	b := ed.AddNodeAt(flow.KindProcess, flow.Point{Y: 120}, "")

	m.Update(runeKey("c"))
	if m.connectFrom != "" {
		t.Fatal("connect without a selection should not start")
	}

	ed.Select(a)
	m.Update(runeKey("c"))
	if m.connectFrom != a {
		t.Fatalf("connectFrom = %q, want %q", m.connectFrom, a)
	}

	// Cell (2, 11) is diagram point (25, 126), inside b.
	m.Update(mouse(2, 11, tea.MouseActionPress))
	snap := ed.Snapshot()
	if len(snap.Edges) != 1 || snap.Edges[0].Source != a || snap.Edges[0].Target != b {
		t.Fatalf("edges = %+v", snap.Edges)
	}
	if sel, _ := ed.Selected(); sel != b {
		t.Errorf("target should be selected, got %q", sel)
	}

	// A self-loop is rejected and reported.
	ed.Select(a)
	m.Update(runeKey("c"))
	m.Update(mouse(2, 2, tea.MouseActionPress))
	if ed.Graph().EdgeCount() != 1 {
		t.Error("self-loop should be rejected")
	}
	if !m.statusErr {
		t.Error("rejected connection should set an error status")
	}
}

func TestEditModelConnectCancel(t *testing.T) {
	m, ed := newTestModel(t)
	a := ed.AddNodeAt(flow.KindProcess, flow.Point{}, "")
	ed.Select(a)

	m.Update(runeKey("c"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.connectFrom != "" {
		t.Error("esc should cancel connect mode")
	}
	if sel, _ := ed.Selected(); sel != a {
		t.Error("cancelling connect should keep the selection")
	}
}

func TestEditModelAddNode(t *testing.T) {
	m, ed := newTestModel(t)

	m.Update(runeKey("2"))
	snap := ed.Snapshot()
	if len(snap.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(snap.Nodes))
	}
	if snap.Nodes[0].Kind != flow.Kinds()[1] {
		t.Errorf("kind = %q, want %q", snap.Nodes[0].Kind, flow.Kinds()[1])
	}
	if sel, _ := ed.Selected(); sel != snap.Nodes[0].ID {
		t.Error("new node should be selected")
	}

	m.Update(runeKey("9"))
	if ed.Graph().NodeCount() != 1 {
		t.Error("key past the kind list should add nothing")
	}
}

func TestEditModelLayout(t *testing.T) {
	m, ed := newTestModel(t)
	a := ed.AddNodeAt(flow.KindProcess, flow.Point{X: 400, Y: 400}, "")
	b := ed.AddNodeAt(flow.KindProcess, flow.Point{X: 10, Y: 10}, "")
	if _, err := ed.Connect(a, b); err != nil {
		t.Fatal(err)
	}

	_, cmd := m.Update(runeKey("l"))
	if cmd == nil {
		t.Fatal("layout key should return a command")
	}
	if !ed.LayoutPending() {
		t.Fatal("layout should be pending until the result arrives")
	}

	// A second request while pending is refused.
	if _, again := m.Update(runeKey("l")); again != nil {
		t.Error("second layout should not start")
	}

	m.Update(cmd())
	if ed.LayoutPending() {
		t.Error("layout should complete")
	}
	if m.statusErr {
		t.Errorf("unexpected error status %q", m.status)
	}
	na, _ := ed.Graph().Node(a)
	nb, _ := ed.Graph().Node(b)
	if na.Position.Y >= nb.Position.Y {
		t.Errorf("source should be above target: %+v %+v", na.Position, nb.Position)
	}
}

func TestEditModelScrollAndFit(t *testing.T) {
	m, ed := newTestModel(t)
	ed.AddNodeAt(flow.KindProcess, flow.Point{X: 500, Y: 300}, "")

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.origin != (flow.Point{}) {
		t.Errorf("scroll should not pass the origin, got %+v", m.origin)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.origin.X != 8*cellW {
		t.Errorf("origin.X = %v", m.origin.X)
	}

	m.Update(runeKey("f"))
	if m.origin != (flow.Point{X: 500 - 2*cellW, Y: 300 - cellH}) {
		t.Errorf("fit origin = %+v", m.origin)
	}
}

func TestEditModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestEditModelView(t *testing.T) {
	m, ed := newTestModel(t)
	ed.AddNodeAt(flow.KindProcess, flow.Point{}, "Start")

	view := m.View()
	if !strings.Contains(view, appName) {
		t.Error("view should have a header")
	}
	if !strings.Contains(view, "Start") {
		t.Error("view should draw node labels")
	}
	if lines := strings.Split(view, "\n"); len(lines) != 24 {
		t.Errorf("view lines = %d, want 24", len(lines))
	}
}
