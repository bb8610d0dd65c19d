package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/internal/server"
)

// serveCommand runs the HTTP API over the stored diagram.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing API over HTTP",
		Long: `Serve the diagram editing API over HTTP. Edits are autosaved to the
configured storage; pending saves are flushed on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			ws, err := c.openWorkspace(ctx, true)
			if err != nil {
				return err
			}
			defer ws.gw.Close()

			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			saver, err := c.openRemote(ctx, sessions)
			if err != nil {
				return err
			}
			defer saver.Close(context.WithoutCancel(ctx))

			srv := server.New(ws.ed,
				server.WithRemote(saver),
				server.WithSessions(sessions),
				server.WithLogger(c.Logger),
				server.WithLayoutTimeout(c.cfg.Layout.Timeout.Duration),
			)
			printInfo("Serving %s on %s", StyleHighlight.Render(c.cfg.Storage.Backend), StyleHighlight.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
