package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// Diagram units per terminal cell.
const (
	cellW = 10.0
	cellH = 12.0
)

type boxChars struct {
	h, v, tl, tr, bl, br rune
}

var (
	boxNormal   = boxChars{'─', '│', '┌', '┐', '└', '┘'}
	boxSelected = boxChars{'═', '║', '╔', '╗', '╚', '╝'}
)

type cell struct {
	r     rune
	style lipgloss.Style
	set   bool
}

// canvas rasterizes a scene onto a grid of terminal cells. Cell (0, 0)
// shows the diagram point origin.
type canvas struct {
	cols, rows int
	origin     flow.Point
	cells      [][]cell
}

func newCanvas(cols, rows int, origin flow.Point) *canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &canvas{cols: cols, rows: rows, origin: origin, cells: make([][]cell, rows)}
	for i := range c.cells {
		c.cells[i] = make([]cell, cols)
	}
	return c
}

// toCell maps a diagram point to the cell containing it.
func (c *canvas) toCell(p flow.Point) (col, row int) {
	return int(math.Floor((p.X - c.origin.X) / cellW)), int(math.Floor((p.Y - c.origin.Y) / cellH))
}

// toPoint maps a cell to the diagram point at its center.
func (c *canvas) toPoint(col, row int) flow.Point {
	return flow.Point{
		X: c.origin.X + (float64(col)+0.5)*cellW,
		Y: c.origin.Y + (float64(row)+0.5)*cellH,
	}
}

func (c *canvas) put(col, row int, r rune, style lipgloss.Style) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return
	}
	c.cells[row][col] = cell{r: r, style: style, set: true}
}

func (c *canvas) drawCurve(cv render.Curve) {
	style := roleStyle(cv.Role)
	c0, r0 := c.toCell(cv.Start)
	c1, r1 := c.toCell(cv.End)
	steps := 2 * (abs(c1-c0) + abs(r1-r0) + 1)
	for i := 0; i <= steps; i++ {
		col, row := c.toCell(cv.Point(float64(i) / float64(steps)))
		c.put(col, row, '·', style)
	}
	c.put(c1, r1-1, '▼', style)
}

// drawBox draws a node. A box is at least three rows tall so the label
// always has a row.
func (c *canvas) drawBox(b render.Box, text string) {
	x0, y0 := c.toCell(flow.Point{X: b.X, Y: b.Y})
	x1 := int(math.Ceil((b.X+b.Width-c.origin.X)/cellW)) - 1
	y1 := int(math.Ceil((b.Y+b.Height-c.origin.Y)/cellH)) - 1
	x1 = max(x1, x0+2)
	y1 = max(y1, y0+2)

	chars := boxNormal
	style := kindStyle(b.Kind)
	if b.Selected {
		chars = boxSelected
		style = style.Bold(true)
	}

	for col := x0; col <= x1; col++ {
		c.put(col, y0, chars.h, style)
		c.put(col, y1, chars.h, style)
	}
	for row := y0 + 1; row < y1; row++ {
		c.put(x0, row, chars.v, style)
		c.put(x1, row, chars.v, style)
		for col := x0 + 1; col < x1; col++ {
			c.put(col, row, ' ', style)
		}
	}
	c.put(x0, y0, chars.tl, style)
	c.put(x1, y0, chars.tr, style)
	c.put(x0, y1, chars.bl, style)
	c.put(x1, y1, chars.br, style)

	inner := x1 - x0 - 1
	label := []rune(text)
	if len(label) > inner {
		label = append(label[:max(inner-1, 0)], '…')[:inner]
	}
	start := x0 + 1 + (inner-len(label))/2
	mid := (y0 + y1) / 2
	for i, r := range label {
		c.put(start+i, mid, r, style)
	}
}

// String renders the grid. With styled false only the runes are emitted.
func (c *canvas) String(styled bool) string {
	var b strings.Builder
	for row, line := range c.cells {
		if row > 0 {
			b.WriteByte('\n')
		}
		for _, cl := range line {
			switch {
			case !cl.set:
				b.WriteByte(' ')
			case styled:
				b.WriteString(cl.style.Render(string(cl.r)))
			default:
				b.WriteRune(cl.r)
			}
		}
	}
	return b.String()
}

// drawScene draws edges first so boxes cover their ends. labelFor lets the
// caller substitute an in-progress label edit.
func drawScene(s render.Scene, cols, rows int, origin flow.Point, labelFor func(render.Box) string) *canvas {
	c := newCanvas(cols, rows, origin)
	for _, cv := range s.Curves {
		c.drawCurve(cv)
	}
	for _, b := range s.Boxes {
		c.drawBox(b, labelFor(b))
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
