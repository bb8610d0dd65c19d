package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	flowio "github.com/matzehuels/flowcanvas/pkg/io"
	"github.com/matzehuels/flowcanvas/pkg/render"
)

const formatSVG = "svg"

// exportCommand writes the stored diagram to a file or stdout.
func (c *CLI) exportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the stored diagram as JSON, YAML or SVG",
		Long: `Export the stored diagram. The format is taken from --format, else from the
file extension (.json, .yaml, .yml, .svg). Without a file the diagram is
written to stdout as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			f, err := exportFormat(format, path)
			if err != nil {
				return err
			}

			gw, err := c.openGateway(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()
			snap, _, err := gw.Load(cmd.Context())
			if err != nil {
				return err
			}

			if path == "" {
				return writeSnapshot(snap, f, os.Stdout)
			}
			out, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := writeSnapshot(snap, f, out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			printSuccess("Exported %s", strings.ToUpper(f))
			printFile(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml, svg")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"json", "yaml", formatSVG}, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func exportFormat(flag, path string) (string, error) {
	name := flag
	if name == "" && path != "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	if name == "" {
		return string(flowio.FormatJSON), nil
	}
	if strings.EqualFold(name, formatSVG) {
		return formatSVG, nil
	}
	f, err := flowio.ParseFormat(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported export format %q", name)
	}
	return string(f), nil
}

func writeSnapshot(snap flow.Snapshot, format string, w io.Writer) error {
	if format == formatSVG {
		return render.WriteSVG(w, render.Present(snap, ""))
	}
	return flowio.Write(snap, flowio.Format(format), w)
}

// importCommand replaces the stored diagram with a file's contents.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored diagram with a JSON or YAML file",
		Long: `Replace the stored diagram with the contents of a JSON or YAML file.

Edges that reference missing nodes, self-loops and edges beyond a node's
outgoing limit are dropped. React Flow exports are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := flowio.Import(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "import %s", args[0])
			}
			return c.mutate(cmd.Context(), func(ws *workspace) error {
				ws.ed.Graph().Replace(snap.Nodes, snap.Edges)
				g := ws.ed.Graph()
				printSuccess("Imported %s", args[0])
				printStats(g.NodeCount(), g.EdgeCount())
				if dropped := len(snap.Edges) - g.EdgeCount(); dropped > 0 {
					printWarning("Dropped %d invalid edges", dropped)
				}
				return nil
			})
		},
	}
}

// clearCommand removes the stored diagram.
func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := c.openGateway(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()
			if err := gw.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Cleared diagram")
			return nil
		},
	}
}
