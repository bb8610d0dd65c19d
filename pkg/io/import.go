package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// jsonNode accepts both the native node shape and React Flow's.
type jsonNode struct {
	ID       flow.NodeID `json:"id"`
	Kind     string      `json:"kind"`
	Type     string      `json:"type"`
	Label    string      `json:"label"`
	Position flow.Point  `json:"position"`
	Size     flow.Size   `json:"size"`
	Data     *struct {
		Label string `json:"label"`
	} `json:"data"`
}

type jsonDocument struct {
	Nodes []jsonNode  `json:"nodes"`
	Edges []flow.Edge `json:"edges"`
}

// ReadJSON decodes a snapshot from r. Every node needs an id; everything
// else falls back to the kind's defaults.
func ReadJSON(r io.Reader) (flow.Snapshot, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return flow.Snapshot{}, fmt.Errorf("decode: %w", err)
	}

	snap := flow.Snapshot{
		Nodes: make([]flow.Node, 0, len(doc.Nodes)),
		Edges: doc.Edges,
	}
	for i, n := range doc.Nodes {
		kind, label := n.Kind, n.Label
		if kind == "" {
			kind = n.Type
		}
		if label == "" && n.Data != nil {
			label = n.Data.Label
		}
		node, err := buildNode(i, n.ID, kind, label, n.Position, n.Size)
		if err != nil {
			return flow.Snapshot{}, err
		}
		snap.Nodes = append(snap.Nodes, node)
	}
	if snap.Edges == nil {
		snap.Edges = []flow.Edge{}
	}
	return snap, nil
}

// ReadYAML decodes a snapshot from r.
func ReadYAML(r io.Reader) (flow.Snapshot, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return flow.Snapshot{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	snap := flow.Snapshot{
		Nodes: make([]flow.Node, 0, len(doc.Nodes)),
		Edges: make([]flow.Edge, 0, len(doc.Edges)),
	}
	for i, n := range doc.Nodes {
		var size flow.Size
		if n.Size != nil {
			size = flow.Size{Width: n.Size.Width, Height: n.Size.Height}
		}
		node, err := buildNode(i, flow.NodeID(n.ID), n.Kind, n.Label,
			flow.Point{X: n.Position.X, Y: n.Position.Y}, size)
		if err != nil {
			return flow.Snapshot{}, err
		}
		snap.Nodes = append(snap.Nodes, node)
	}
	for _, e := range doc.Edges {
		snap.Edges = append(snap.Edges, flow.Edge{
			ID:     flow.EdgeID(e.ID),
			Source: flow.NodeID(e.Source),
			Target: flow.NodeID(e.Target),
			Role:   flow.Role(e.Role),
		})
	}
	return snap, nil
}

func buildNode(i int, id flow.NodeID, kind, label string, pos flow.Point, size flow.Size) (flow.Node, error) {
	if id == "" {
		return flow.Node{}, fmt.Errorf("node %d: missing id", i)
	}
	k, ok := flow.ParseKind(kind)
	if !ok && kind == "" {
		k = flow.KindProcess
	}
	if label == "" {
		label = flow.DefaultLabel(k)
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = k.Size()
	}
	return flow.Node{ID: id, Kind: k, Label: label, Position: pos, Size: size}, nil
}

// Read decodes a snapshot in format f.
func Read(f Format, r io.Reader) (flow.Snapshot, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return flow.Snapshot{}, fmt.Errorf("unsupported format %q", f)
	}
}

// Import reads the snapshot at path, choosing the format from the
// extension.
func Import(path string) (flow.Snapshot, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return flow.Snapshot{}, err
	}
	in, err := os.Open(path)
	if err != nil {
		return flow.Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()
	return Read(f, in)
}
