package render

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// Edge stroke colors by role.
const (
	ColorPrimary   = "#555555"
	ColorAlternate = "#20b2aa"
)

// Box is a node's drawable rectangle.
type Box struct {
	ID       flow.NodeID `json:"id"`
	Kind     flow.Kind   `json:"kind"`
	Label    string      `json:"label"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Color    string      `json:"color"`
	Selected bool        `json:"selected"`
}

// Curve is a cubic Bezier from a source anchor to a target anchor.
type Curve struct {
	ID     flow.EdgeID `json:"id"`
	Source flow.NodeID `json:"source"`
	Target flow.NodeID `json:"target"`
	Start  flow.Point  `json:"start"`
	C1     flow.Point  `json:"c1"`
	C2     flow.Point  `json:"c2"`
	End    flow.Point  `json:"end"`
	Role   flow.Role   `json:"role"`
	Color  string      `json:"color"`
}

// Scene is everything needed to draw a diagram.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Boxes  []Box   `json:"boxes"`
	Curves []Curve `json:"curves"`
}

// Present lays out snap for drawing. selected marks one node as selected;
// pass "" for none.
func Present(snap flow.Snapshot, selected flow.NodeID) Scene {
	s := Scene{
		Boxes:  make([]Box, 0, len(snap.Nodes)),
		Curves: make([]Curve, 0, len(snap.Edges)),
	}
	nodes := make(map[flow.NodeID]flow.Node, len(snap.Nodes))
	for _, n := range snap.Nodes {
		nodes[n.ID] = n
		s.Boxes = append(s.Boxes, Box{
			ID:       n.ID,
			Kind:     n.Kind,
			Label:    n.Label,
			X:        n.Position.X,
			Y:        n.Position.Y,
			Width:    n.Size.Width,
			Height:   n.Size.Height,
			Color:    n.Kind.Spec().Color,
			Selected: n.ID == selected,
		})
		s.Width = max(s.Width, n.Position.X+n.Size.Width)
		s.Height = max(s.Height, n.Position.Y+n.Size.Height)
	}

	for _, e := range snap.Edges {
		src, ok := nodes[e.Source]
		if !ok {
			continue
		}
		dst, ok := nodes[e.Target]
		if !ok {
			continue
		}
		c := Connect(src, dst)
		c.ID, c.Source, c.Target, c.Role = e.ID, e.Source, e.Target, e.Role
		c.Color = ColorPrimary
		if e.Role == flow.RoleAlternate {
			c.Color = ColorAlternate
		}
		s.Curves = append(s.Curves, c)
	}
	return s
}

// Connect returns the S-curve geometry between two nodes.
func Connect(src, dst flow.Node) Curve {
	start := src.BottomCenter()
	end := dst.TopCenter()
	midY := (start.Y + end.Y) / 2
	return Curve{
		Start: start,
		C1:    flow.Point{X: start.X, Y: midY},
		C2:    flow.Point{X: end.X, Y: midY},
		End:   end,
	}
}

// Path returns the curve as an SVG path string.
func (c Curve) Path() string {
	return fmt.Sprintf("M %s,%s C %s,%s %s,%s %s,%s",
		num(c.Start.X), num(c.Start.Y),
		num(c.C1.X), num(c.C1.Y),
		num(c.C2.X), num(c.C2.Y),
		num(c.End.X), num(c.End.Y))
}

// Point evaluates the curve at t in [0, 1].
func (c Curve) Point(t float64) flow.Point {
	u := 1 - t
	a, b, cc, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return flow.Point{
		X: a*c.Start.X + b*c.C1.X + cc*c.C2.X + d*c.End.X,
		Y: a*c.Start.Y + b*c.C1.Y + cc*c.C2.Y + d*c.End.Y,
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
