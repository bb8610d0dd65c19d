package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// =============================================================================
// Scripted mutations
// =============================================================================

// mutate hydrates the stored diagram, applies fn and writes the result.
func (c *CLI) mutate(ctx context.Context, fn func(ws *workspace) error) error {
	ws, err := c.openWorkspace(ctx, false)
	if err != nil {
		return err
	}
	if err := fn(ws); err != nil {
		ws.gw.Close()
		return err
	}
	if err := ws.Close(ctx); err != nil {
		return fmt.Errorf("save diagram: %w", err)
	}
	return nil
}

func (c *CLI) addNodeCommand() *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "add-node <kind> [label]",
		Short: "Add a node",
		Long: `Add a node of the given kind. Without --x/--y the node is placed at a
random spot. Run 'flowcanvas kinds' for the list of kinds.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := errors.ValidateKind(args[0])
			if err != nil {
				return err
			}
			var label string
			if len(args) == 2 {
				label = args[1]
				if err := errors.ValidateLabel(label); err != nil {
					return err
				}
			}
			placed := cmd.Flags().Changed("x") || cmd.Flags().Changed("y")

			return c.mutate(cmd.Context(), func(ws *workspace) error {
				var id flow.NodeID
				if placed {
					id = ws.ed.AddNodeAt(kind, flow.Point{X: x, Y: y}, label)
				} else {
					id = ws.ed.AddNode(kind, label)
				}
				n, _ := ws.ed.Graph().Node(id)
				printSuccess("Added %s %s", kindStyle(kind).Render(string(kind)), StyleHighlight.Render(string(id)))
				printDetail("%q at (%s, %s)", n.Label, fmtCoord(n.Position.X), fmtCoord(n.Position.Y))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x position")
	cmd.Flags().Float64Var(&y, "y", 0, "y position")
	return cmd
}

func (c *CLI) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Connect two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) error {
				id, err := ws.ed.Connect(flow.NodeID(args[0]), flow.NodeID(args[1]))
				if err != nil {
					return errors.FromConnection(err)
				}
				role := flow.RolePrimary
				for _, e := range ws.ed.Snapshot().Edges {
					if e.ID == id {
						role = e.Role
					}
				}
				printSuccess("Connected %s %s %s", args[0], iconArrow, args[1])
				printDetail("edge %s (%s)", id, roleStyle(role).Render(string(role)))
				return nil
			})
		},
	}
}

func (c *CLI) deleteNodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-node <id>",
		Short: "Delete a node and its edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) error {
				id := flow.NodeID(args[0])
				if !ws.ed.Graph().Has(id) {
					printInfo("No node %s", id)
					return nil
				}
				edges := len(ws.ed.Graph().Incident(id))
				ws.ed.DeleteNode(id)
				printSuccess("Deleted %s", id)
				if edges > 0 {
					printDetail("removed %d edges", edges)
				}
				return nil
			})
		},
	}
}

func (c *CLI) deleteEdgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-edge <id>",
		Short: "Delete an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(ws *workspace) error {
				before := ws.ed.Graph().EdgeCount()
				ws.ed.DeleteEdge(flow.EdgeID(args[0]))
				if ws.ed.Graph().EdgeCount() == before {
					printInfo("No edge %s", args[0])
					return nil
				}
				printSuccess("Deleted edge %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <label>",
		Short: "Change a node's label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateLabel(args[1]); err != nil {
				return err
			}
			return c.mutate(cmd.Context(), func(ws *workspace) error {
				id := flow.NodeID(args[0])
				if !ws.ed.Graph().Has(id) {
					return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
				}
				if !ws.ed.Rename(id, args[1]) {
					printInfo("Label unchanged")
					return nil
				}
				printSuccess("Renamed %s", id)
				return nil
			})
		},
	}
}

func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Move a node",
		Long:  `Move a node's top-left corner to (x, y). Negative coordinates are clamped to zero.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			return c.mutate(cmd.Context(), func(ws *workspace) error {
				id := flow.NodeID(args[0])
				if !ws.ed.Graph().Has(id) {
					return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
				}
				ws.ed.MoveNode(id, p)
				n, _ := ws.ed.Graph().Node(id)
				printSuccess("Moved %s to (%s, %s)", id, fmtCoord(n.Position.X), fmtCoord(n.Position.Y))
				return nil
			})
		},
	}
}

func parsePoint(xs, ys string) (flow.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return flow.Point{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid x coordinate %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return flow.Point{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid y coordinate %q", ys)
	}
	return flow.Point{X: x, Y: y}, nil
}
