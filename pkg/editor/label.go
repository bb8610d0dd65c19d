package editor

import "github.com/matzehuels/flowcanvas/pkg/flow"

// LabelEdit is an in-progress label edit. While it is active the delete
// shortcut is suppressed, since keystrokes belong to the text field.
type LabelEdit struct {
	node     flow.NodeID
	original string
	text     string
}

// Active reports whether an edit is in progress.
func (l *LabelEdit) Active() bool { return l.node != "" }

// Node returns the node being edited.
func (l *LabelEdit) Node() flow.NodeID { return l.node }

// Original returns the label as it was when editing began.
func (l *LabelEdit) Original() string { return l.original }

// Text returns the current draft.
func (l *LabelEdit) Text() string { return l.text }

func (l *LabelEdit) begin(n flow.Node) {
	l.node = n.ID
	l.original = n.Label
	l.text = n.Label
}

func (l *LabelEdit) reset() { *l = LabelEdit{} }
