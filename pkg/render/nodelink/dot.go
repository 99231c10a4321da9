package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodecanvas/pkg/render"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes position, z-index and input counts in node labels.
	// When false, only the label (or the id) is shown.
	Detailed bool

	// LeftToRight lays the diagram out horizontally, matching how wires run
	// from outputs on the right to inputs on the left.
	LeftToRight bool
}

// ToDOT converts the wiring of c to Graphviz DOT format.
// Nodes are emitted in z-order and edges in input order, so the output is
// deterministic for a given cache.
func ToDOT(c *scene.GeometryCache, opts Options) string {
	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	z := 0
	c.Each(func(id scene.NodeID, n *scene.Node) {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", string(id), fmtLabel(id, n, z, opts.Detailed))
		z++
	})

	missing := danglingSources(c)
	for _, id := range missing {
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey, fontcolor=black];\n",
			string(id), string(id)+"\n(missing)")
	}

	buf.WriteString("\n")
	c.Each(func(id scene.NodeID, n *scene.Node) {
		for i, in := range n.Inputs {
			if !in.Connected() {
				continue
			}
			attrs := fmt.Sprintf("headlabel=%q", strconv.Itoa(i))
			if !c.Has(in.Source) {
				attrs += ", style=dashed"
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", string(in.Source), string(id), attrs)
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(id scene.NodeID, n *scene.Node, z int, detailed bool) string {
	label := n.Label
	if label == "" {
		label = string(id)
	}
	if !detailed {
		return label
	}

	parts := []string{
		fmt.Sprintf("z: %d", z),
		fmt.Sprintf("pos: %g,%g", n.Position.X(), n.Position.Y()),
		fmt.Sprintf("inputs: %d", len(n.Inputs)),
	}
	if label != string(id) {
		parts = append([]string{"id: " + string(id)}, parts...)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// danglingSources returns input sources absent from c, sorted and unique.
func danglingSources(c *scene.GeometryCache) []scene.NodeID {
	seen := map[scene.NodeID]bool{}
	var out []scene.NodeID
	c.Each(func(_ scene.NodeID, n *scene.Node) {
		for _, in := range n.Inputs {
			if in.Connected() && !c.Has(in.Source) && !seen[in.Source] {
				seen[in.Source] = true
				out = append(out, in.Source)
			}
		}
	})
	slices.Sort(out)
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	out, err := renderFormat(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
