package editor

import "github.com/matzehuels/flowcanvas/pkg/flow"

// Selection holds at most one selected node.
type Selection struct {
	current flow.NodeID
}

// Select replaces the selection with id.
func (s *Selection) Select(id flow.NodeID) { s.current = id }

// Clear empties the selection.
func (s *Selection) Clear() { s.current = "" }

// Current returns the selected node and whether there is one.
func (s *Selection) Current() (flow.NodeID, bool) {
	return s.current, s.current != ""
}

// Is reports whether id is selected.
func (s *Selection) Is(id flow.NodeID) bool {
	return id != "" && s.current == id
}
