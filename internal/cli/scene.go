package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/save"
	"github.com/matzehuels/nodecanvas/pkg/scene"
	"github.com/matzehuels/nodecanvas/pkg/workspace"
)

// =============================================================================
// new
// =============================================================================

// newCommand creates the "new" command, which writes an empty scene file.
func (c *CLI) newCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Create an empty scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}
			if err := save.WriteFile(scene.New(), path); err != nil {
				return err
			}
			st := statusTo(cmd.ErrOrStderr())
			st.success("Created empty scene")
			st.file(path)
			st.nextStep("Add a node", appName+" add "+path+" --x 0 --y 0")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// =============================================================================
// add
// =============================================================================

// addOpts holds the flags of the add command.
type addOpts struct {
	id     string
	x, y   float64
	label  string
	inputs []string // SOURCE[:sel], "-" or "" for an unconnected port
}

// nodeData builds the builder input described by the flags.
func (o addOpts) nodeData() (scene.NodeData, error) {
	d := scene.NodeData{Position: geom.V(o.x, o.y), Label: o.label}
	for i, arg := range o.inputs {
		in, err := parseInput(arg)
		if err != nil {
			return scene.NodeData{}, fmt.Errorf("--input #%d: %w", i+1, err)
		}
		d.Inputs = append(d.Inputs, in)
	}
	return d, nil
}

// parseInput reads one --input value. "a" wires the port to node a, "a:sel"
// also makes it selectable; "-" and ":sel" leave it unconnected.
func parseInput(arg string) (scene.InputData, error) {
	src, flag, hasFlag := strings.Cut(strings.TrimSpace(arg), ":")
	var in scene.InputData
	if hasFlag {
		if flag != "sel" {
			return in, errors.New(errors.ErrCodeInvalidInput, "unknown port flag %q (want \"sel\")", flag)
		}
		in.Selectable = true
	}
	if src == "-" {
		src = ""
	}
	if src != "" {
		if err := errors.ValidateNodeID(src); err != nil {
			return in, err
		}
	}
	in.Source = scene.NodeID(src)
	return in, nil
}

// droppedOnSave lists the parts of d a scene file does not keep. The file
// stores position and input count only, and the count only when the first
// port is selectable.
func droppedOnSave(d scene.NodeData) []string {
	var out []string
	if d.Label != "" {
		out = append(out, "labels are not saved to the scene file")
	}
	for _, in := range d.Inputs {
		if in.Source != "" {
			out = append(out, "wire sources are not saved; inputs reload unconnected")
			break
		}
	}
	if len(d.Inputs) > 0 && !d.Inputs[0].Selectable {
		out = append(out, "the first input is not selectable, so the input count is saved as 0")
	}
	return out
}

// addCommand creates the "add" command. Adding an existing id replaces the
// node in place.
func (c *CLI) addCommand() *cobra.Command {
	var opts addOpts

	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Add or replace a node",
		Long: `Add a node to a scene file, or replace the node with the same id.

Each --input adds one port. Its value names the node feeding it; append
":sel" to make the port selectable, or pass "-" for an unconnected port.

The scene file keeps each node's position and input count. Labels and wire
sources are accepted for the running edit but are not written back.

  nodecanvas add board.json --id mix --x 200 --y 40 --input osc:sel --input -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.nodeData()
			if err != nil {
				return err
			}
			id := opts.id
			if id == "" {
				id = uuid.NewString()
			}
			ctx := withLogger(cmd.Context(), c.Logger)

			var inserted bool
			err = c.editScene(ctx, args[0], func(ws *workspace.Workspace) error {
				inserted, err = ws.LoadNode(ctx, scene.NodeID(id), data)
				return err
			})
			if err != nil {
				return err
			}
			st := statusTo(cmd.ErrOrStderr())
			if inserted {
				st.success("Added node %s", nodeRef(scene.NodeID(id)))
			} else {
				st.success("Replaced node %s", nodeRef(scene.NodeID(id)))
			}
			for _, w := range droppedOnSave(data) {
				st.warning("%s", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "node id (default: a random UUID)")
	cmd.Flags().Float64Var(&opts.x, "x", 0, "world x of the node's top-left corner")
	cmd.Flags().Float64Var(&opts.y, "y", 0, "world y of the node's top-left corner")
	cmd.Flags().StringVarP(&opts.label, "label", "l", "", "header label")
	cmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, "input port as SOURCE[:sel] (repeatable)")
	return cmd
}

// =============================================================================
// rm / raise / move
// =============================================================================

// removeCommand creates the "rm" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm [file] [id]",
		Aliases:           []string{"remove"},
		Short:             "Remove a node",
		Long:              `Remove a node. Wires of nodes that referenced it keep their last resolved endpoint.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSceneNode,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := scene.NodeID(args[1])
			err := c.editScene(ctx, args[0], func(ws *workspace.Workspace) error {
				return ws.Remove(ctx, id)
			})
			if err != nil {
				return err
			}
			statusTo(cmd.ErrOrStderr()).success("Removed node %s", nodeRef(id))
			return nil
		},
	}
}

// raiseCommand creates the "raise" command.
func (c *CLI) raiseCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "raise [file] [id]",
		Short:             "Bring a node to the front",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSceneNode,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := c.editScene(ctx, args[0], func(ws *workspace.Workspace) error {
				return ws.Raise(ctx, scene.NodeID(args[1]))
			})
			if err != nil {
				return err
			}
			statusTo(cmd.ErrOrStderr()).success("Raised node %s", nodeRef(scene.NodeID(args[1])))
			return nil
		},
	}
}

// moveCommand creates the "move" command.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "move [file] [id] [x] [y]",
		Short:             "Move a node and refresh the wires that read from it",
		Long:              "Move a node. Put negative coordinates after --:\n\n  nodecanvas move board.json osc -- 10 -40",
		Args:              cobra.ExactArgs(4),
		ValidArgsFunction: completeSceneNode,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseVec(args[2], args[3])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			err = c.editScene(ctx, args[0], func(ws *workspace.Workspace) error {
				return ws.Move(ctx, scene.NodeID(args[1]), pos)
			})
			if err != nil {
				return err
			}
			statusTo(cmd.ErrOrStderr()).success("Moved node %s to %s", nodeRef(scene.NodeID(args[1])), pointRef(pos))
			return nil
		},
	}
}

// =============================================================================
// camera
// =============================================================================

// cameraOpts holds the flags of the camera command. Steps apply in field
// order: reset, pan, zoom, center.
type cameraOpts struct {
	reset  bool
	pan    []float64
	zoom   float64
	at     []float64
	center bool
	width  float64
	height float64
}

// apply runs the requested camera steps against ws.
func (o cameraOpts) apply(ctx context.Context, ws *workspace.Workspace) error {
	if o.reset {
		if err := ws.SetCamera(ctx, geom.Identity); err != nil {
			return err
		}
	}
	if len(o.pan) > 0 {
		if len(o.pan) != 2 {
			return errors.New(errors.ErrCodeInvalidInput, "--pan takes dx,dy")
		}
		var cam geom.Mat23
		ws.View(func(c *scene.GeometryCache) { cam = c.Camera })
		if err := ws.SetCamera(ctx, geom.Translate(geom.V(o.pan[0], o.pan[1])).Mul(cam)); err != nil {
			return err
		}
	}
	ws.Resize(o.width, o.height)
	if o.zoom != 0 {
		anchor := geom.V(o.width/2, o.height/2)
		if len(o.at) > 0 {
			if len(o.at) != 2 {
				return errors.New(errors.ErrCodeInvalidInput, "--at takes x,y")
			}
			anchor = geom.V(o.at[0], o.at[1])
		}
		if _, err := ws.Zoom(ctx, anchor, o.zoom); err != nil {
			return err
		}
	}
	if o.center {
		ws.Center(ctx)
	}
	return nil
}

// cameraCommand creates the "camera" command.
func (c *CLI) cameraCommand() *cobra.Command {
	var opts cameraOpts

	cmd := &cobra.Command{
		Use:   "camera [file]",
		Short: "Pan, zoom or reset the scene camera",
		Long: `Adjust the camera stored with a scene. Without flags the current camera
is printed.

Steps run in order: --reset, --pan, --zoom, --center. Zoom is clamped to the
editor's zoom limits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.width == 0 || opts.height == 0 {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				if opts.width == 0 {
					opts.width = cfg.Render.Width
				}
				if opts.height == 0 {
					opts.height = cfg.Render.Height
				}
			}
			ws, err := c.openScene(args[0])
			if err != nil {
				return err
			}
			if err := opts.apply(ctx, ws); err != nil {
				return err
			}
			if editsCamera(cmd) {
				if err := writeScene(ctx, ws, args[0]); err != nil {
					return err
				}
			}
			ws.View(func(c *scene.GeometryCache) {
				statusTo(cmd.OutOrStdout()).keyValue("Camera", fmtMat(c.Camera))
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.reset, "reset", false, "restore the identity camera")
	cmd.Flags().Float64SliceVar(&opts.pan, "pan", nil, "pan by dx,dy screen pixels")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "zoom by this factor")
	cmd.Flags().Float64SliceVar(&opts.at, "at", nil, "zoom anchor as x,y (default: viewport center)")
	cmd.Flags().BoolVar(&opts.center, "center", false, "center the scene in the viewport")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default from config)")
	return cmd
}

// editsCamera reports whether any camera step was requested. Viewport flags
// alone only print the camera.
func editsCamera(cmd *cobra.Command) bool {
	for _, name := range []string{"reset", "pan", "zoom", "center"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// =============================================================================
// Formatting
// =============================================================================

func parseVec(xs, ys string) (geom.Vec2, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return geom.Zero, errors.Wrap(errors.ErrCodeInvalidInput, err, "x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return geom.Zero, errors.Wrap(errors.ErrCodeInvalidInput, err, "y %q", ys)
	}
	return geom.V(x, y), nil
}

func fmtVec(v geom.Vec2) string {
	return fmt.Sprintf("(%g, %g)", v.X(), v.Y())
}

func fmtMat(m geom.Mat23) string {
	return fmt.Sprintf("[%g %g %g %g %g %g]", m[0], m[1], m[2], m[3], m[4], m[5])
}
