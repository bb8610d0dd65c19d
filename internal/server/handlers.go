package server

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowcanvas/pkg/editor"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// FlowState is the body of GET /api/flow and of most mutation responses.
type FlowState struct {
	Nodes         []flow.Node `json:"nodes"`
	Edges         []flow.Edge `json:"edges"`
	Selected      flow.NodeID `json:"selected,omitempty"`
	Editing       flow.NodeID `json:"editing,omitempty"`
	Dragging      flow.NodeID `json:"dragging,omitempty"`
	LayoutPending bool        `json:"layoutPending"`
	Version       uint64      `json:"version"`
}

// state must be called with s.mu held.
func (s *Server) state() FlowState {
	snap := s.ed.Snapshot()
	st := FlowState{
		Nodes:         snap.Nodes,
		Edges:         snap.Edges,
		LayoutPending: s.ed.LayoutPending(),
		Version:       s.ed.Graph().Version(),
	}
	if id, ok := s.ed.Selected(); ok {
		st.Selected = id
	}
	if l, ok := s.ed.Editing(); ok {
		st.Editing = l.Node()
	}
	if d := s.ed.Drag(); d.State() == editor.Dragging {
		st.Dragging = d.Node()
	}
	return st
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.state()
	s.mu.Unlock()
	writeJSON(w, st, http.StatusOK)
}

// =============================================================================
// Nodes and edges
// =============================================================================

type createNodeRequest struct {
	Kind  string   `json:"kind"`
	Label string   `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	kind, err := errors.ValidateKind(req.Kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Label != "" {
		if err := errors.ValidateLabel(req.Label); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var id flow.NodeID
	if req.X == nil && req.Y == nil {
		id = s.ed.AddNode(kind, req.Label)
	} else {
		var p flow.Point
		if req.X != nil {
			p.X = *req.X
		}
		if req.Y != nil {
			p.Y = *req.Y
		}
		id = s.ed.AddNodeAt(kind, p, req.Label)
	}
	n, _ := s.ed.Graph().Node(id)
	writeJSON(w, n, http.StatusCreated)
}

type updateNodeRequest struct {
	Label *string  `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	id := flow.NodeID(chi.URLParam(r, "id"))
	var req updateNodeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Label != nil {
		if err := errors.ValidateLabel(*req.Label); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.ed.Graph().Node(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "node %q not found", id))
		return
	}
	if req.Label != nil {
		s.ed.Rename(id, *req.Label)
	}
	if req.X != nil || req.Y != nil {
		p := n.Position
		if req.X != nil {
			p.X = *req.X
		}
		if req.Y != nil {
			p.Y = *req.Y
		}
		s.ed.MoveNode(id, p)
	}
	n, _ = s.ed.Graph().Node(id)
	writeJSON(w, n, http.StatusOK)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.ed.DeleteNode(flow.NodeID(chi.URLParam(r, "id")))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type createEdgeRequest struct {
	Source flow.NodeID `json:"source"`
	Target flow.NodeID `json:"target"`
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.ed.Connect(req.Source, req.Target)
	if err != nil {
		s.writeError(w, errors.FromConnection(err))
		return
	}
	for _, e := range s.ed.Snapshot().Edges {
		if e.ID == id {
			writeJSON(w, e, http.StatusCreated)
			return
		}
	}
	s.writeError(w, errors.New(errors.ErrCodeInternal, "edge %q vanished after creation", id))
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.ed.DeleteEdge(flow.EdgeID(chi.URLParam(r, "id")))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Layout and rendering
// =============================================================================

type layoutResponse struct {
	Placed int       `json:"placed"`
	Flow   FlowState `json:"flow"`
}

func (s *Server) runLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	req, err := s.ed.BeginLayout()
	engine := s.ed.Engine()
	s.mu.Unlock()
	if err != nil {
		if stderrors.Is(err, editor.ErrLayoutPending) {
			err = errors.Wrap(errors.ErrCodeLayoutPending, err, "a layout is already running")
		}
		s.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.layoutTimeout)
	defer cancel()
	resp, lerr := layout.Compute(ctx, engine, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	placed, err := s.ed.CompleteLayout(resp, lerr)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "layout failed"))
		return
	}
	writeJSON(w, layoutResponse{Placed: placed, Flow: s.state()}, http.StatusOK)
}

func (s *Server) getScene(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	scene := s.ed.Scene()
	s.mu.Unlock()
	writeJSON(w, scene, http.StatusOK)
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	scene := s.ed.Scene()
	s.mu.Unlock()
	w.Header().Set("Content-Type", "image/svg+xml")
	_ = render.WriteSVG(w, scene)
}

// =============================================================================
// Remote save and session
// =============================================================================

type remoteRequest struct {
	Name string `json:"name"`
}

func (s *Server) saveRemote(w http.ResponseWriter, r *http.Request) {
	var req remoteRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	snap := s.ed.Snapshot()
	s.mu.Unlock()

	id, err := s.remote.Save(r.Context(), req.Name, snap)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"id": id, "name": req.Name}, http.StatusCreated)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.ID(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "session unavailable"))
		return
	}
	writeJSON(w, map[string]string{"id": id}, http.StatusOK)
}

// =============================================================================
// Interaction
// =============================================================================

type pointerRequest struct {
	ID flow.NodeID `json:"id"`
	X  float64     `json:"x"`
	Y  float64     `json:"y"`
}

func (s *Server) pointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p := flow.Point{X: req.X, Y: req.Y}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch action := chi.URLParam(r, "action"); action {
	case "down":
		if req.ID != "" {
			s.ed.PointerDown(req.ID, p)
		} else {
			s.ed.PointerDownAt(p)
		}
	case "move":
		s.ed.PointerMove(p)
	case "up":
		s.ed.PointerUp()
	case "cancel":
		s.ed.PointerCancel()
	default:
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "unknown pointer action %q", action))
		return
	}
	writeJSON(w, s.state(), http.StatusOK)
}

type selectRequest struct {
	ID flow.NodeID `json:"id"`
}

func (s *Server) selectNode(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID == "" {
		s.ed.ClearSelection()
	} else {
		s.ed.Select(req.ID)
	}
	writeJSON(w, s.state(), http.StatusOK)
}

type keyRequest struct {
	Key  string  `json:"key"`
	Text *string `json:"text"`
}

type keyResponse struct {
	Handled bool      `json:"handled"`
	Flow    FlowState `json:"flow"`
}

func (s *Server) key(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Key == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "key is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Text != nil {
		s.ed.SetEditText(*req.Text)
	}
	handled := s.ed.HandleKey(req.Key)
	writeJSON(w, keyResponse{Handled: handled, Flow: s.state()}, http.StatusOK)
}
