package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/server"
	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// serveCommand creates the "serve" command, which exposes one workspace
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		scene string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live scene over HTTP",
		Long: `Serve one live scene over HTTP, backed by the configured store.

With --scene, the named scene is loaded from the store at startup and
POST /scene/save without a name writes back to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			st, cfg, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			ws := workspace.New(st, c.Logger)
			if scene != "" {
				if err := ws.Load(ctx, scene); err != nil {
					return err
				}
			}
			c.Logger.Debug("store ready", "backend", cfg.Store.Backend, "lru", cfg.Store.LRUSize, "namespace", cfg.Store.Namespace)

			srv := server.New(ws, c.Logger, server.Options{
				Width:   cfg.Render.Width,
				Height:  cfg.Render.Height,
				Padding: cfg.Render.Padding,
			})
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&scene, "scene", "", "load this scene from the store at startup")
	return cmd
}
