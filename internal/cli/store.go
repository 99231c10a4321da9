package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/store"
	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// storeCommand creates the scene store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Move scenes between files and the configured store",
		Long: `Move scenes between local files and the configured store (file, redis,
mongo or null; see --config and the NODECANVAS_STORE variable).`,
	}

	cmd.AddCommand(c.storePushCommand())
	cmd.AddCommand(c.storePullCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeRemoveCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(st store.Store) error) error {
	st, cfg, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	c.Logger.Debug("store opened", "backend", cfg.Store.Backend)
	return fn(st)
}

// sceneName derives a store name from a file path, e.g. "boards/mix.json"
// becomes "mix".
func sceneName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// storePushCommand creates the "store push" subcommand.
func (c *CLI) storePushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push [file] [name]",
		Short: "Upload a scene file to the store",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := sceneName(args[0])
			if len(args) == 2 {
				name = args[1]
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withStore(ctx, func(st store.Store) error {
				ws, err := c.openScene(args[0])
				if err != nil {
					return err
				}
				ws.Store = st

				spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Saving %s...", name))
				spinner.Start()
				if err := ws.Save(ctx, name); err != nil {
					spinner.StopWithError("Save failed")
					return err
				}
				spinner.StopWithSuccess("Saved " + StyleHighlight.Render(name))
				return nil
			})
		},
	}
}

// storePullCommand creates the "store pull" subcommand.
func (c *CLI) storePullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull [name] [file]",
		Short: "Download a scene from the store to a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			path := name + ".json"
			if len(args) == 2 {
				path = args[1]
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.withStore(ctx, func(st store.Store) error {
				ws := workspace.New(st, c.Logger)

				spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", name))
				spinner.Start()
				if err := ws.Load(ctx, name); err != nil {
					spinner.StopWithError("Load failed")
					return err
				}
				spinner.Stop()

				if err := writeScene(ctx, ws, path); err != nil {
					return err
				}
				sts := statusTo(cmd.ErrOrStderr())
				sts.success("Pulled %s", StyleHighlight.Render(name))
				sts.file(path)
				return nil
			})
		},
	}
}

// storeListCommand creates the "store ls" subcommand. Names are printed one
// per line so the output can be piped.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List scenes in the store",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				names, err := st.List(cmd.Context())
				if err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "list scenes")
				}
				out := cmd.OutOrStdout()
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				c.Logger.Debug("listed scenes", "count", len(names))
				return nil
			})
		},
	}
}

// storeRemoveCommand creates the "store rm" subcommand.
func (c *CLI) storeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [name]",
		Aliases: []string{"remove"},
		Short:   "Delete a scene from the store",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := errors.ValidateSceneName(name); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), name); err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "delete scene %q", name)
				}
				statusTo(cmd.ErrOrStderr()).success("Deleted %s", StyleHighlight.Render(name))
				return nil
			})
		},
	}
}
