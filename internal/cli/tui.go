package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowcanvas/pkg/editor"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

// Rows taken by the header and the help line.
const (
	headerRows = 1
	footerRows = 1
)

var (
	statusStyle    = lipgloss.NewStyle().Foreground(colorGray)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorRed)
	helpStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EditModel - Interactive diagram editor
// =============================================================================

// layoutDoneMsg carries an engine's result back to the update loop.
type layoutDoneMsg struct {
	resp layout.Response
	err  error
}

// EditModel is the bubbletea model for the terminal editor. All editor
// calls happen in Update, so the editor sees one event at a time; only the
// layout engine runs off the update loop.
type EditModel struct {
	ed      *editor.Editor
	ctx     context.Context
	timeout time.Duration

	width, height int
	origin        flow.Point
	connectFrom   flow.NodeID

	status    string
	statusErr bool
}

// NewEditModel creates an editor model. The editor should be hydrated.
func NewEditModel(ctx context.Context, ed *editor.Editor, timeout time.Duration) *EditModel {
	return &EditModel{ed: ed, ctx: ctx, timeout: timeout, width: 80, height: 24}
}

// Fit scrolls so the whole diagram starts at the top-left of the view.
func (m *EditModel) Fit() {
	snap := m.ed.Snapshot()
	if len(snap.Nodes) == 0 {
		m.origin = flow.Point{}
		return
	}
	minX, minY := snap.Nodes[0].Position.X, snap.Nodes[0].Position.Y
	for _, n := range snap.Nodes[1:] {
		minX = min(minX, n.Position.X)
		minY = min(minY, n.Position.Y)
	}
	m.origin = flow.Point{X: max(minX-2*cellW, 0), Y: max(minY-cellH, 0)}
}

func (m *EditModel) Init() tea.Cmd {
	return nil
}

func (m *EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		return m, m.key(msg)
	case layoutDoneMsg:
		n, err := m.ed.CompleteLayout(msg.resp, msg.err)
		if err != nil {
			m.setError(fmt.Errorf("layout failed: %w", err))
		} else {
			m.setStatus(fmt.Sprintf("laid out %d nodes", n))
		}
	}
	return m, nil
}

func (m *EditModel) canvasRows() int {
	return max(m.height-headerRows-footerRows, 0)
}

func (m *EditModel) pointAt(x, y int) flow.Point {
	return newCanvas(0, 0, m.origin).toPoint(x, y-headerRows)
}

func (m *EditModel) mouse(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return
	}
	p := m.pointAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if m.connectFrom != "" {
			m.finishConnect(p)
			return
		}
		if _, hit := m.ed.PointerDownAt(p); !hit {
			m.setStatus("")
		}
	case tea.MouseActionMotion:
		m.ed.PointerMove(p)
	case tea.MouseActionRelease:
		m.ed.PointerUp()
	}
}

func (m *EditModel) finishConnect(p flow.Point) {
	src := m.connectFrom
	m.connectFrom = ""
	target, hit := m.ed.Graph().NodeAt(p)
	if !hit {
		m.setStatus("connect cancelled")
		return
	}
	if _, err := m.ed.Connect(src, target); err != nil {
		m.setError(errors.FromConnection(err))
		return
	}
	m.ed.Select(target)
	m.setStatus("connected")
}

func (m *EditModel) key(msg tea.KeyMsg) tea.Cmd {
	if _, editing := m.ed.Editing(); editing {
		m.editKey(msg)
		return nil
	}

	switch k := msg.String(); k {
	case "q", "ctrl+c":
		return tea.Quit
	case editor.KeyEscape:
		if m.connectFrom != "" {
			m.connectFrom = ""
			m.setStatus("connect cancelled")
			return nil
		}
		m.ed.HandleKey(k)
	case editor.KeyDelete, editor.KeyBackspace, editor.KeyEnter:
		m.ed.HandleKey(k)
	case "c":
		if id, ok := m.ed.Selected(); ok {
			m.connectFrom = id
			m.setStatus("click the target node")
		} else {
			m.setStatus("select a source node first")
		}
	case "l":
		return m.startLayout()
	case "f":
		m.Fit()
	case "up":
		m.scroll(0, -4)
	case "down":
		m.scroll(0, 4)
	case "left":
		m.scroll(-8, 0)
	case "right":
		m.scroll(8, 0)
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			m.addNode(int(k[0] - '1'))
		}
	}
	return nil
}

// editKey routes keys to the open label edit.
func (m *EditModel) editKey(msg tea.KeyMsg) {
	l, _ := m.ed.Editing()
	switch msg.Type {
	case tea.KeyRunes:
		m.ed.SetEditText(l.Text() + string(msg.Runes))
	case tea.KeySpace:
		m.ed.SetEditText(l.Text() + " ")
	case tea.KeyBackspace:
		r := []rune(l.Text())
		if len(r) > 0 {
			m.ed.SetEditText(string(r[:len(r)-1]))
		}
	case tea.KeyEnter:
		m.ed.HandleKey(editor.KeyEnter)
	case tea.KeyEsc:
		m.ed.HandleKey(editor.KeyEscape)
	case tea.KeyCtrlC:
		m.ed.CancelEdit()
	}
}

func (m *EditModel) addNode(i int) {
	kinds := flow.Kinds()
	if i < 0 || i >= len(kinds) {
		return
	}
	id := m.ed.AddNodeAt(kinds[i], m.origin.Add(m.ed.Graph().ScatterPosition()), "")
	m.ed.Select(id)
	m.setStatus("added " + string(kinds[i]))
}

func (m *EditModel) scroll(cols, rows int) {
	m.origin = flow.Point{
		X: max(m.origin.X+float64(cols)*cellW, 0),
		Y: max(m.origin.Y+float64(rows)*cellH, 0),
	}
}

func (m *EditModel) startLayout() tea.Cmd {
	req, err := m.ed.BeginLayout()
	if err != nil {
		m.setError(err)
		return nil
	}
	engine, ctx, timeout := m.ed.Engine(), m.ctx, m.timeout
	m.setStatus("laying out with " + engine.Name() + "...")
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := layout.Compute(ctx, engine, req)
		return layoutDoneMsg{resp: resp, err: err}
	}
}

func (m *EditModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *EditModel) setError(err error) {
	m.status, m.statusErr = errors.UserMessage(err), true
}

func (m *EditModel) View() string {
	var b strings.Builder

	g := m.ed.Graph()
	b.WriteString(StyleTitle.Render(appName) + "  " + formatStats(g.NodeCount(), g.EdgeCount()))
	if m.ed.LayoutPending() {
		b.WriteString("  " + StyleWarning.Render("layout pending"))
	}
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = statusErrStyle
		}
		b.WriteString("  " + style.Render(m.status))
	}
	b.WriteString("\n")

	edit, editing := m.ed.Editing()
	c := drawScene(m.ed.Scene(), m.width, m.canvasRows(), m.origin, func(box render.Box) string {
		if editing && edit.Node() == box.ID {
			return edit.Text() + "▏"
		}
		return box.Label
	})
	b.WriteString(c.String(true))
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(m.help(editing)))
	return b.String()
}

func (m *EditModel) help(editing bool) string {
	switch {
	case editing:
		return "type to edit  enter: save  esc: cancel"
	case m.connectFrom != "":
		return "click target node  esc: cancel"
	default:
		return "1-8: add node  drag: move  c: connect  enter: rename  del: delete  l: layout  f: fit  arrows: scroll  q: quit"
	}
}
