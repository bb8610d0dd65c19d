// Package flow provides the in-memory model of a flow diagram: typed nodes
// connected by directed edges.
//
// # Overview
//
// A [Graph] owns the canonical node and edge sets. Every other component
// reads it through accessors ([Graph.Snapshot], [Graph.Node], [Graph.NodeAt])
// or asks it to apply a mutation, which the graph validates first. The
// graph never holds a dangling edge: deleting a node prunes its incident
// edges, and [Graph.Replace] drops edges whose endpoints are unknown.
//
// # Connections
//
// [Validate] is the connection legality rule. It rejects self-loops,
// missing endpoints and edges beyond a kind's fan-out cap, and it assigns
// the new edge its [Role]:
//
//	g := flow.New()
//	split := g.AddNode(flow.KindSplit, flow.Point{}, "")
//	a := g.AddNode(flow.KindMessage, flow.Point{Y: 100}, "")
//	b := g.AddNode(flow.KindMessage, flow.Point{X: 200, Y: 100}, "")
//	g.Connect(split, a) // role primary
//	g.Connect(split, b) // role alternate
//
// Roles are fixed when the edge is created and only affect rendering.
//
// # Kinds
//
// The kind registry ([Kinds], [Kind.Spec]) fixes each kind's box size and
// optional fan-out cap. [KindSplit] and [KindDecision] are capped at two.
//
// # Change Notification
//
// Observers registered with [Graph.Observe] receive a [Change] after each
// committed mutation. Operations that turn out to be no-ops (unknown IDs,
// unchanged labels or positions) report nothing, which is what drives the
// save-after-every-mutation behavior in the editor.
//
// # Concurrency
//
// Graph is not safe for concurrent use. The editor drives it from a single
// logical thread of input events.
package flow
