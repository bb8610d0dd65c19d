// Package layout computes automatic node positions for a flow.
//
// Layout is a request/response exchange with an [Engine]. The caller
// snapshots the graph into a [Request] (ids, box sizes, edges), hands it to
// an engine that may take a while, and applies the [Response] with [Apply].
// Apply re-validates the response against the graph at completion time, so
// a node deleted while the engine ran is never brought back.
//
// Two engines are provided:
//
//   - [Graphviz] runs the dot layered layout in-process (go-graphviz) and
//     reads the computed centers back out of the annotated DOT output.
//   - [Layered] is a pure-Go longest-path layering, used when graphviz is
//     not wanted and in tests.
//
// Both produce top-left positions in diagram units with the origin at the
// top-left of the drawing.
package layout
