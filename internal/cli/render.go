package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/render/nodelink"
	"github.com/matzehuels/nodecanvas/pkg/render/sink"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// Output formats.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatPDF = "pdf"
	formatDOT = "dot"
)

// Visualization types.
const (
	vizScene  = "scene"  // nodes, ports and wires under the camera
	vizWiring = "wiring" // Graphviz diagram of the input connections
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string  // output file path ("-" for stdout)
	format    string  // svg, png, pdf or dot
	viz       string  // scene or wiring
	width     float64 // viewport width; 0 fits the scene
	height    float64 // viewport height; 0 fits the scene
	padding   float64 // margin around a fitted scene
	highlight string  // node to outline
	bg        string  // CSS background color
	noWires   bool    // skip the wire layer
	scale     float64 // PNG scale factor
	detailed  bool    // wiring labels carry position and z-index
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG, viz: vizScene, scale: 2}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a scene to SVG, PNG, PDF or DOT",
		Long: `Render a scene file.

The scene view paints nodes in z-order under the stored camera. The wiring
view draws the input connections as a Graphviz diagram. PNG and PDF output of
the scene view need rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") || !cmd.Flags().Changed("height") || !cmd.Flags().Changed("padding") {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("width") {
					opts.width = cfg.Render.Width
				}
				if !cmd.Flags().Changed("height") {
					opts.height = cfg.Render.Height
				}
				if !cmd.Flags().Changed("padding") {
					opts.padding = cfg.Render.Padding
				}
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png, pdf, dot")
	cmd.Flags().StringVarP(&opts.viz, "type", "t", opts.viz, "visualization: scene, wiring")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width, 0 to fit the scene (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height, 0 to fit the scene (default from config)")
	cmd.Flags().Float64Var(&opts.padding, "padding", 0, "margin around a fitted scene (default from config)")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "outline this node")
	cmd.Flags().BoolVar(&opts.noWires, "no-wires", false, "omit wires")
	cmd.Flags().StringVar(&opts.bg, "background", "", "canvas background color, e.g. white or #f8f8f8")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include position and z-index in wiring labels")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	ws, err := c.openScene(path)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	var data []byte
	ws.View(func(sc *scene.GeometryCache) {
		data, err = renderScene(sc, opts)
	})
	if err != nil {
		return err
	}
	prog.done("rendered", "view", opts.viz, "format", opts.format, "bytes", len(data))

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + opts.format
	}
	if out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := writeFile(out, data); err != nil {
		return err
	}
	statusTo(cmd.ErrOrStderr()).file(out)
	return nil
}

// renderScene produces the bytes for one visualization and format.
func renderScene(c *scene.GeometryCache, opts renderOpts) ([]byte, error) {
	switch opts.viz {
	case vizScene:
		svgOpts := []sink.SVGOption{
			sink.WithViewport(opts.width, opts.height),
			sink.WithPadding(opts.padding),
		}
		if opts.highlight != "" {
			svgOpts = append(svgOpts, sink.WithHighlight(scene.NodeID(opts.highlight)))
		}
		if opts.noWires {
			svgOpts = append(svgOpts, sink.WithoutWires())
		}
		if opts.bg != "" {
			svgOpts = append(svgOpts, sink.WithBackground(opts.bg))
		}
		switch opts.format {
		case formatSVG:
			return sink.RenderSVG(c, svgOpts...), nil
		case formatPNG:
			return sink.RenderPNG(c, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.scale))
		case formatPDF:
			return sink.RenderPDF(c, svgOpts...)
		case formatDOT:
			return []byte(nodelink.ToDOT(c, nodelink.Options{Detailed: opts.detailed, LeftToRight: true})), nil
		}
	case vizWiring:
		dot := nodelink.ToDOT(c, nodelink.Options{Detailed: opts.detailed, LeftToRight: true})
		switch opts.format {
		case formatSVG:
			return nodelink.RenderSVG(dot)
		case formatPNG:
			return nodelink.RenderPNG(dot)
		case formatPDF:
			return nodelink.RenderPDF(dot)
		case formatDOT:
			return []byte(dot), nil
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown visualization %q (want scene or wiring)", opts.viz)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want svg, png, pdf or dot)", opts.format)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
