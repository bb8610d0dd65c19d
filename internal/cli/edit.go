package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/editor"
)

// editCommand opens the interactive terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the stored diagram in the terminal",
		Long: `Open the stored diagram in an interactive terminal editor.

Mouse:
  click a node         select it
  drag a node          move it
  click the background clear the selection

Keys:
  1-8                  add a node (see 'flowcanvas kinds')
  enter                rename the selected node
  delete, backspace    delete the selected node
  c                    connect the selected node to the next one clicked
  l                    lay out the diagram
  f                    scroll to fit
  arrows               scroll
  q                    save and quit

Changes are autosaved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), logFile)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the editor is open")
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, logFile string) error {
	// The terminal belongs to the editor until it exits.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	c.Logger.SetOutput(logOut)
	defer c.Logger.SetOutput(os.Stderr)

	var model *EditModel
	ws, err := c.openWorkspace(ctx, true, editor.WithFit(func() {
		if model != nil {
			model.Fit()
		}
	}))
	if err != nil {
		return err
	}
	model = NewEditModel(ctx, ws.ed, c.cfg.Layout.Timeout.Duration)
	model.Fit()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, runErr := p.Run()

	if err := ws.Close(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("save diagram: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	g := ws.ed.Graph()
	printSuccess("Saved diagram")
	printStats(g.NodeCount(), g.EdgeCount())
	return nil
}
