// Package editor implements the interactive behavior around a flow graph.
//
// An [Editor] receives discrete input events (pointer down/move/up, keys,
// layout completion) and turns them into graph operations:
//
//   - [Drag] is a two-state machine (Idle, Dragging). A drag captures the
//     pointer offset when it starts and moves the node so the offset is
//     kept; positions are clamped to non-negative coordinates.
//   - [Selection] holds one node. Starting a drag selects the node; a click
//     on the background clears the selection.
//   - [LabelEdit] is an open text edit. While one is open, delete and
//     backspace are left to the text field.
//   - [Autosaver] saves after every committed mutation, optionally
//     debounced, but only once [Editor.Hydrate] has loaded the stored
//     diagram.
//   - Layout runs as begin/complete. While a layout is outstanding, drags
//     are refused; on completion positions are applied only to nodes that
//     still exist.
//
// The editor is single-threaded. Callers that receive events from several
// goroutines must serialize them.
package editor
