package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/storage"
)

// showCommand prints the stored diagram.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored document as JSON")
	return cmd
}

func (c *CLI) runShow(ctx context.Context, asJSON bool) error {
	gw, err := c.openGateway(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()

	doc, err := gw.Fetch(ctx)
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		printInfo("No diagram saved yet")
		printNextStep("Add a node", appName+" add-node input \"Start\"")
		return nil
	case stderrors.Is(err, storage.ErrCorrupt):
		printWarning("Stored diagram is unreadable and will be replaced on the next save")
		printDetail("%v", err)
		return nil
	case err != nil:
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	fmt.Println(StyleTitle.Render("Diagram") + "  " + formatStats(len(doc.Nodes), len(doc.Edges)))
	printKeyValue("saved", doc.SavedAt.Local().Format("2006-01-02 15:04:05"))
	printKeyValue("storage", c.cfg.Storage.Backend+" / "+gw.Key())
	fmt.Println()
	if len(doc.Nodes) > 0 {
		fmt.Println(nodeTable(doc.Nodes))
	}
	if len(doc.Edges) > 0 {
		fmt.Println(edgeTable(doc.Snapshot()))
	}
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

func nodeTable(nodes []flow.Node) string {
	t := newTable("ID", "Kind", "Label", "X", "Y")
	for _, n := range nodes {
		t.Row(string(n.ID), string(n.Kind), n.Label, fmtCoord(n.Position.X), fmtCoord(n.Position.Y))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		if col == 1 && row < len(nodes) {
			return kindStyle(nodes[row].Kind)
		}
		return lipgloss.NewStyle()
	})
	return t.Render()
}

func edgeTable(snap flow.Snapshot) string {
	labels := make(map[flow.NodeID]string, len(snap.Nodes))
	for _, n := range snap.Nodes {
		labels[n.ID] = n.Label
	}
	t := newTable("ID", "Source", "Target", "Role")
	for _, e := range snap.Edges {
		t.Row(string(e.ID), labels[e.Source], labels[e.Target], string(e.Role))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		if col == 3 && row < len(snap.Edges) {
			return roleStyle(snap.Edges[row].Role)
		}
		return lipgloss.NewStyle()
	})
	return t.Render()
}

// kindsCommand lists the node kinds.
func (c *CLI) kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List node kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(kindTable())
			return nil
		},
	}
}

func kindTable() string {
	kinds := flow.Kinds()
	t := newTable("Key", "Kind", "Size", "Max outgoing")
	for i, k := range kinds {
		spec := k.Spec()
		fanOut := "-"
		if spec.FanOut > 0 {
			fanOut = strconv.Itoa(spec.FanOut)
		}
		t.Row(strconv.Itoa(i+1), string(k), fmt.Sprintf("%s×%s", fmtCoord(spec.Size.Width), fmtCoord(spec.Size.Height)), fanOut)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return styleHeader
		}
		if col == 1 && row < len(kinds) {
			return kindStyle(kinds[row])
		}
		return lipgloss.NewStyle()
	})
	return t.Render()
}

func fmtCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
