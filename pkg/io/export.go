package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

type yamlDocument struct {
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	ID       string    `yaml:"id"`
	Kind     string    `yaml:"kind"`
	Label    string    `yaml:"label"`
	Position yamlPoint `yaml:"position"`
	Size     *yamlSize `yaml:"size,omitempty"`
}

type yamlPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type yamlSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type yamlEdge struct {
	ID     string `yaml:"id,omitempty"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Role   string `yaml:"role,omitempty"`
}

// WriteJSON encodes snap as indented JSON.
func WriteJSON(snap flow.Snapshot, w io.Writer) error {
	if snap.Nodes == nil {
		snap.Nodes = []flow.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []flow.Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes snap as YAML.
func WriteYAML(snap flow.Snapshot, w io.Writer) error {
	doc := yamlDocument{
		Nodes: make([]yamlNode, len(snap.Nodes)),
		Edges: make([]yamlEdge, len(snap.Edges)),
	}
	for i, n := range snap.Nodes {
		doc.Nodes[i] = yamlNode{
			ID:       string(n.ID),
			Kind:     string(n.Kind),
			Label:    n.Label,
			Position: yamlPoint{X: n.Position.X, Y: n.Position.Y},
			Size:     &yamlSize{Width: n.Size.Width, Height: n.Size.Height},
		}
	}
	for i, e := range snap.Edges {
		doc.Edges[i] = yamlEdge{
			ID:     string(e.ID),
			Source: string(e.Source),
			Target: string(e.Target),
			Role:   string(e.Role),
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes snap in format f.
func Write(snap flow.Snapshot, f Format, w io.Writer) error {
	switch f {
	case FormatJSON:
		return WriteJSON(snap, w)
	case FormatYAML:
		return WriteYAML(snap, w)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

// Export writes snap to path, choosing the format from the extension.
func Export(snap flow.Snapshot, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(snap, f, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
