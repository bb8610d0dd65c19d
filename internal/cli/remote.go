package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/config"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/session"
)

// remoteCommand groups commands for the named-flow store.
func (c *CLI) remoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Save diagrams to the shared flow store",
	}
	cmd.AddCommand(c.remoteSaveCommand())
	return cmd
}

func (c *CLI) remoteSaveCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the stored diagram under a name",
		Long: `Save the stored diagram to the shared flow store under a name, tagged with
this machine's session id. Requires [remote] mongo_uri or FLOWCANVAS_MONGO_URI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateFlowName(name); err != nil {
				return err
			}

			gw, err := c.openGateway(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()
			snap, _, err := gw.Load(ctx)
			if err != nil {
				return err
			}

			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			saver, err := c.openRemote(ctx, sessions)
			if err != nil {
				return err
			}
			defer saver.Close(context.WithoutCancel(ctx))

			spinner := newSpinnerWithContext(ctx, "Saving "+name+"...")
			spinner.Start()
			id, err := saver.Save(ctx, name, snap)
			if err != nil {
				spinner.StopWithError("Save failed")
				if errors.Is(err, errors.ErrCodeRemoteNotConfigured) {
					printDetail("set [remote] mongo_uri in %s or %s", c.configFile(), "FLOWCANVAS_MONGO_URI")
				}
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Saved %q", name))
			printKeyValue("id", id)
			printStats(len(snap.Nodes), len(snap.Edges))
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "flow name (required)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// sessionCommand shows or resets the session id.
func (c *CLI) sessionCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show this machine's session id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := session.NewFileProvider("")
			if err != nil {
				return err
			}
			if reset {
				if err := p.Reset(cmd.Context()); err != nil {
					return err
				}
			}
			id, err := p.ID(cmd.Context())
			if err != nil {
				return err
			}
			printKeyValue("session", id)
			printKeyValue("file", p.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "discard the current id and generate a new one")
	return cmd
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.DefaultPath()
}
