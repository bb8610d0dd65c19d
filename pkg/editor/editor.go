package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// ErrLayoutPending is returned when a layout is requested while another is
// still outstanding.
var ErrLayoutPending = errors.New("layout already in progress")

// Editor couples a [flow.Graph] with the interaction state around it:
// drag, selection, label editing, autosave and layout gating.
//
// Editor is not safe for concurrent use. Input events are expected to
// arrive one at a time; the HTTP server serializes them with a mutex.
type Editor struct {
	graph  *flow.Graph
	drag   Drag
	sel    Selection
	label  LabelEdit
	saver  *Autosaver
	engine layout.Engine
	logger *log.Logger

	persister Persister
	debounce  time.Duration
	spacing   float64
	direction string
	fit       func()

	hydrated      bool
	layoutPending bool
}

// Option configures an [Editor].
type Option func(*Editor)

// WithGraph uses g instead of a fresh graph.
func WithGraph(g *flow.Graph) Option {
	return func(e *Editor) { e.graph = g }
}

// WithPersister enables hydration and autosave against p.
func WithPersister(p Persister) Option {
	return func(e *Editor) { e.persister = p }
}

// WithAutosaveDebounce delays saves until edits pause for d. Zero saves
// after every mutation.
func WithAutosaveDebounce(d time.Duration) Option {
	return func(e *Editor) { e.debounce = d }
}

// WithEngine sets the layout engine used by [Editor.Layout].
func WithEngine(engine layout.Engine) Option {
	return func(e *Editor) { e.engine = engine }
}

// WithSpacing sets the spacing passed to layout requests.
func WithSpacing(spacing float64) Option {
	return func(e *Editor) { e.spacing = spacing }
}

// WithDirection sets the layout direction, [layout.DirectionDown] or
// [layout.DirectionRight].
func WithDirection(dir string) Option {
	return func(e *Editor) { e.direction = dir }
}

// WithFit registers the viewport-fit callback run after a layout is applied.
func WithFit(fn func()) Option {
	return func(e *Editor) { e.fit = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an editor. Without a persister the editor is hydrated
// immediately and never saves.
func New(opts ...Option) *Editor {
	e := &Editor{
		engine:  layout.Layered{},
		logger:  log.Default(),
		spacing: layout.DefaultSpacing,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.graph == nil {
		e.graph = flow.New()
	}
	if e.persister != nil {
		e.saver = NewAutosaver(e.persister, e.debounce, e.logger)
	} else {
		e.hydrated = true
	}
	e.graph.Observe(e.onChange)
	return e
}

// Graph returns the underlying graph. Mutate it only through the editor or
// the graph's own operations; both notify the editor.
func (e *Editor) Graph() *flow.Graph { return e.graph }

// Snapshot returns a copy of the current diagram.
func (e *Editor) Snapshot() flow.Snapshot { return e.graph.Snapshot() }

// Scene returns the drawable geometry for the current diagram.
func (e *Editor) Scene() render.Scene {
	selected, _ := e.sel.Current()
	return render.Present(e.graph.Snapshot(), selected)
}

// Engine returns the layout engine.
func (e *Editor) Engine() layout.Engine { return e.engine }

// Autosaver returns the autosaver, or nil when no persister is configured.
func (e *Editor) Autosaver() *Autosaver { return e.saver }

// =============================================================================
// Hydration
// =============================================================================

// Hydrate loads the stored diagram into the graph. Saves are enabled only
// after Hydrate succeeds, so an empty graph at startup can never overwrite
// a stored one. A missing or unreadable snapshot leaves the graph as is.
// A storage failure is returned and leaves saving disabled.
func (e *Editor) Hydrate(ctx context.Context) error {
	if e.hydrated {
		return nil
	}
	snap, ok, err := e.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	if ok {
		e.graph.Replace(snap.Nodes, snap.Edges)
	}
	e.hydrated = true
	e.logger.Info("hydrated", "nodes", e.graph.NodeCount(), "edges", e.graph.EdgeCount(), "found", ok)
	return nil
}

// Hydrated reports whether initial hydration has completed.
func (e *Editor) Hydrated() bool { return e.hydrated }

// Flush writes any pending autosave.
func (e *Editor) Flush(ctx context.Context) error {
	if e.saver == nil {
		return nil
	}
	return e.saver.Flush(ctx)
}

func (e *Editor) onChange(c flow.Change) {
	switch c.Op {
	case flow.NodeRemoved, flow.Replaced:
		if id, ok := e.sel.Current(); ok && !e.graph.Has(id) {
			e.sel.Clear()
		}
		if e.label.Active() && !e.graph.Has(e.label.Node()) {
			e.label.reset()
		}
		if e.drag.State() == Dragging && !e.graph.Has(e.drag.Node()) {
			e.drag.End()
		}
	}

	nodes, edges := e.graph.NodeCount(), e.graph.EdgeCount()
	observability.Editor().OnMutation(context.Background(), c.Op.String(), nodes, edges)
	e.logger.Debug("mutation", "op", c.Op, "node", c.Node, "edge", c.Edge, "nodes", nodes, "edges", edges)

	if e.hydrated && e.saver != nil {
		// A failed write is logged by the saver, kept for Autosaver.Err and
		// retried with the next snapshot or Flush.
		_ = e.saver.Schedule(e.graph.Snapshot())
	}
}

// =============================================================================
// Graph operations
// =============================================================================

// AddNode adds a node at a scattered position.
func (e *Editor) AddNode(kind flow.Kind, label string) flow.NodeID {
	return e.graph.AddNode(kind, e.graph.ScatterPosition(), label)
}

// AddNodeAt adds a node at p.
func (e *Editor) AddNodeAt(kind flow.Kind, p flow.Point, label string) flow.NodeID {
	return e.graph.AddNode(kind, p, label)
}

// Connect adds an edge. See [flow.Graph.Connect].
func (e *Editor) Connect(source, target flow.NodeID) (flow.EdgeID, error) {
	return e.graph.Connect(source, target)
}

// DeleteNode removes a node and its edges.
func (e *Editor) DeleteNode(id flow.NodeID) { e.graph.DeleteNode(id) }

// DeleteEdge removes an edge.
func (e *Editor) DeleteEdge(id flow.EdgeID) { e.graph.DeleteEdge(id) }

// MoveNode sets a node's position directly.
func (e *Editor) MoveNode(id flow.NodeID, p flow.Point) { e.graph.UpdateNodePosition(id, p) }

// Rename replaces a node's label. See [flow.Graph.RenameNode].
func (e *Editor) Rename(id flow.NodeID, label string) bool {
	return e.graph.RenameNode(id, label)
}

// =============================================================================
// Pointer and selection
// =============================================================================

// Selected returns the selected node.
func (e *Editor) Selected() (flow.NodeID, bool) { return e.sel.Current() }

// Select selects id. Unknown ids are ignored.
func (e *Editor) Select(id flow.NodeID) {
	if e.graph.Has(id) {
		e.sel.Select(id)
	}
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() { e.sel.Clear() }

// DeleteSelected deletes the selected node and clears the selection. It
// reports whether anything was deleted.
func (e *Editor) DeleteSelected() bool {
	id, ok := e.sel.Current()
	if !ok {
		return false
	}
	e.graph.DeleteNode(id)
	e.sel.Clear()
	return true
}

// Drag returns the drag state machine.
func (e *Editor) Drag() *Drag { return &e.drag }

// PointerDown starts dragging id with the pointer at p and selects it.
// While a layout is outstanding the node is selected but not dragged.
// Unknown ids are ignored. It reports whether a drag started.
func (e *Editor) PointerDown(id flow.NodeID, p flow.Point) bool {
	if !e.graph.Has(id) {
		return false
	}
	if e.label.Active() && e.label.Node() != id {
		e.CommitEdit(e.label.Text())
	}
	e.sel.Select(id)
	if e.layoutPending {
		return false
	}
	return e.drag.Begin(e.graph, id, p)
}

// PointerDownAt hit-tests p. A hit behaves like [Editor.PointerDown]; a
// click on the background commits any label edit and clears the
// selection.
func (e *Editor) PointerDownAt(p flow.Point) (flow.NodeID, bool) {
	id, hit := e.graph.NodeAt(p)
	if !hit {
		if e.label.Active() {
			e.CommitEdit(e.label.Text())
		}
		e.sel.Clear()
		return "", false
	}
	e.PointerDown(id, p)
	return id, true
}

// PointerMove moves the dragged node, if any.
func (e *Editor) PointerMove(p flow.Point) { e.drag.Move(e.graph, p) }

// PointerUp ends the drag.
func (e *Editor) PointerUp() { e.drag.End() }

// PointerCancel ends the drag without further mutation.
func (e *Editor) PointerCancel() { e.drag.End() }

// =============================================================================
// Label editing
// =============================================================================

// BeginEdit starts editing id's label. An edit already open on another
// node is committed first. It reports false for unknown ids.
func (e *Editor) BeginEdit(id flow.NodeID) bool {
	n, ok := e.graph.Node(id)
	if !ok {
		return false
	}
	if e.label.Active() && e.label.Node() != id {
		e.CommitEdit(e.label.Text())
	}
	e.label.begin(n)
	return true
}

// Editing returns the open label edit, if any.
func (e *Editor) Editing() (*LabelEdit, bool) {
	return &e.label, e.label.Active()
}

// SetEditText replaces the draft of the open edit.
func (e *Editor) SetEditText(text string) {
	if e.label.Active() {
		e.label.text = text
	}
}

// CommitEdit closes the open edit and renames the node to text. It
// reports whether the label changed; empty or unchanged text does not.
func (e *Editor) CommitEdit(text string) bool {
	if !e.label.Active() {
		return false
	}
	id := e.label.Node()
	e.label.reset()
	return e.graph.RenameNode(id, text)
}

// CancelEdit discards the open edit.
func (e *Editor) CancelEdit() { e.label.reset() }

// =============================================================================
// Keyboard
// =============================================================================

// Key names understood by [Editor.HandleKey].
const (
	KeyDelete    = "delete"
	KeyBackspace = "backspace"
	KeyEnter     = "enter"
	KeyEscape    = "esc"
)

// HandleKey applies a keyboard shortcut and reports whether it was used.
// While a label edit is open, delete and backspace belong to the text
// field and are ignored here; enter commits and escape cancels.
func (e *Editor) HandleKey(key string) bool {
	editing := e.label.Active()
	switch key {
	case KeyDelete, KeyBackspace:
		if editing {
			return false
		}
		return e.DeleteSelected()
	case KeyEnter:
		if editing {
			e.CommitEdit(e.label.Text())
			return true
		}
		if id, ok := e.sel.Current(); ok {
			return e.BeginEdit(id)
		}
	case KeyEscape:
		if editing {
			e.CancelEdit()
			return true
		}
		if _, ok := e.sel.Current(); ok {
			e.sel.Clear()
			return true
		}
	}
	return false
}

// =============================================================================
// Layout
// =============================================================================

// LayoutPending reports whether a layout request is outstanding.
func (e *Editor) LayoutPending() bool { return e.layoutPending }

// BeginLayout snapshots the graph into a layout request and blocks drags
// until [Editor.CompleteLayout] is called. Any drag in progress ends.
func (e *Editor) BeginLayout() (layout.Request, error) {
	if e.layoutPending {
		return layout.Request{}, ErrLayoutPending
	}
	e.drag.End()
	e.layoutPending = true
	req := layout.NewRequest(e.graph.Snapshot(), e.spacing)
	if e.direction != "" {
		req.Direction = e.direction
	}
	return req, nil
}

// CompleteLayout applies the engine's response and runs the fit callback.
// The response is checked against the current graph, so nodes deleted while
// the engine ran stay deleted. It returns the number of nodes moved.
func (e *Editor) CompleteLayout(resp layout.Response, err error) (int, error) {
	e.layoutPending = false
	if err != nil {
		e.logger.Warn("layout failed", "err", err)
		return 0, err
	}
	n := layout.Apply(e.graph, resp)
	e.logger.Info("layout applied", "engine", e.engine.Name(), "placed", n)
	if n > 0 && e.fit != nil {
		e.fit()
	}
	return n, nil
}

// Layout runs the configured engine synchronously.
func (e *Editor) Layout(ctx context.Context) (int, error) {
	req, err := e.BeginLayout()
	if err != nil {
		return 0, err
	}
	resp, err := layout.Compute(ctx, e.engine, req)
	return e.CompleteLayout(resp, err)
}
