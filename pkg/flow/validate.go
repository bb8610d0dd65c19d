package flow

import "errors"

var (
	// ErrSelfLoop is returned by [Validate] and [Graph.Connect] when the
	// source and target are the same node.
	ErrSelfLoop = errors.New("edge source and target must differ")

	// ErrMissingEndpoint is returned when either endpoint is not in the graph.
	ErrMissingEndpoint = errors.New("edge endpoint not found")

	// ErrCapacityExceeded is returned when the source node's kind caps its
	// outgoing edges and the cap has been reached.
	ErrCapacityExceeded = errors.New("source node has no free outgoing slot")
)

// Reader is the read-only view [Validate] needs. Both [*Graph] and
// [Snapshot] implement it.
type Reader interface {
	Node(id NodeID) (Node, bool)
	OutDegree(id NodeID) int
}

// Validate decides whether an edge source→target may be added to g and
// returns the role the new edge would get.
//
// Checks run in order: self-loop, missing endpoint, fan-out cap. For capped
// kinds the first outgoing edge is [RolePrimary] and later ones (up to the
// cap) are [RoleAlternate]. Uncapped kinds always yield [RolePrimary].
func Validate(g Reader, source, target NodeID) (Role, error) {
	if source == target {
		return "", ErrSelfLoop
	}
	src, ok := g.Node(source)
	if !ok {
		return "", ErrMissingEndpoint
	}
	if _, ok := g.Node(target); !ok {
		return "", ErrMissingEndpoint
	}

	limit := src.Kind.FanOut()
	if limit == 0 {
		return RolePrimary, nil
	}
	existing := g.OutDegree(source)
	if existing >= limit {
		return "", ErrCapacityExceeded
	}
	return roleFor(existing), nil
}

// roleFor returns the role of the next edge from a capped source that
// already has existing outgoing edges.
func roleFor(existing int) Role {
	if existing == 0 {
		return RolePrimary
	}
	return RoleAlternate
}
