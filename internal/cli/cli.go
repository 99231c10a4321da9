// Package cli implements the nodecanvas command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/buildinfo"
	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/save"
	"github.com/matzehuels/nodecanvas/pkg/scene"
	"github.com/matzehuels/nodecanvas/pkg/store"
	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the binary name used in help text.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Nodecanvas edits node-editor scenes from the command line",
		Long:          `Nodecanvas keeps the geometry of a node editor (boxes, ports and the wires between them) and saves it as JSON. Scenes can be edited as files, rendered, kept in a shared store and served over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nodecanvas/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.raiseCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.cameraCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Plumbing
// =============================================================================

// loadConfig reads the layered configuration for this invocation.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "config", cfg.String())
	return cfg, nil
}

// openStore opens the configured scene store.
func (c *CLI) openStore(ctx context.Context) (store.Store, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	s, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, config.Config{}, err
	}
	return s, cfg, nil
}

// openScene loads a scene file into a fresh workspace with no backing store.
func (c *CLI) openScene(path string) (*workspace.Workspace, error) {
	cache, err := save.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ws := workspace.New(nil, c.Logger)
	ws.Replace(cache)
	return ws, nil
}

// writeScene exports ws to path, replacing the file atomically.
func writeScene(ctx context.Context, ws *workspace.Workspace, path string) error {
	data, err := ws.Export(ctx)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	loggerFromContext(ctx).Debug("wrote scene", "path", path, "bytes", len(data))
	return nil
}

// editScene runs fn against the scene at path and writes it back on success.
func (c *CLI) editScene(ctx context.Context, path string, fn func(ws *workspace.Workspace) error) error {
	ctx = withLogger(ctx, c.Logger)
	ws, err := c.openScene(path)
	if err != nil {
		return err
	}
	if err := fn(ws); err != nil {
		return err
	}
	return writeScene(ctx, ws, path)
}

// wireCount returns the number of connected inputs in c.
func wireCount(c *scene.GeometryCache) int {
	n := 0
	c.Each(func(_ scene.NodeID, node *scene.Node) {
		for _, in := range node.Inputs {
			if in.Connected() {
				n++
			}
		}
	})
	return n
}

// Describe formats an error for the terminal, moving the code of a coded
// error behind its message.
func Describe(err error) string {
	if code := errors.GetCode(err); code != "" {
		return fmt.Sprintf("%s (%s)", errors.UserMessage(err), code)
	}
	return err.Error()
}
