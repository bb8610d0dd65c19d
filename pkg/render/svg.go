package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
)

const svgMargin = 20.0

// RenderSVG serializes a scene as a standalone SVG document.
func RenderSVG(s Scene) []byte {
	w := s.Width + 2*svgMargin
	h := s.Height + 2*svgMargin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="context-stroke"/></marker></defs>` + "\n")
	fmt.Fprintf(&buf, `  <g transform="translate(%.0f,%.0f)">`+"\n", svgMargin, svgMargin)

	for _, c := range s.Curves {
		dash := ""
		if c.Color == ColorAlternate {
			dash = ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(&buf, `    <path id="edge-%s" d="%s" fill="none" stroke="%s" stroke-width="2"%s marker-end="url(#arrow)"/>`+"\n",
			html.EscapeString(string(c.ID)), c.Path(), c.Color, dash)
	}
	for _, b := range s.Boxes {
		stroke, width := "#333333", 1
		if b.Selected {
			stroke, width = "#1a73e8", 3
		}
		fmt.Fprintf(&buf, `    <rect id="node-%s" x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			html.EscapeString(string(b.ID)), num(b.X), num(b.Y), num(b.Width), num(b.Height), b.Color, stroke, width)
		fmt.Fprintf(&buf, `    <text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="13">%s</text>`+"\n",
			num(b.X+b.Width/2), num(b.Y+b.Height/2), html.EscapeString(b.Label))
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

// WriteSVG writes [RenderSVG] output to w.
func WriteSVG(w io.Writer, s Scene) error {
	_, err := w.Write(RenderSVG(s))
	return err
}
