package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// Default canvas settings.
const (
	DefaultPadding = 20.0
	emptySize      = 100.0
)

const sceneCSS = `
    .node-body { fill: #ffffff; stroke: #333333; stroke-width: 1.5; }
    .node-header { fill: #e8e8e8; stroke: #333333; stroke-width: 1.5; }
    .node.highlight .node-body, .node.highlight .node-header { stroke: #1f6feb; stroke-width: 3; }
    .node-label { font-family: sans-serif; font-size: 12px; fill: #111111; }
    .port { fill: #ffffff; stroke: #333333; stroke-width: 1.2; }
    .port.connected { fill: #333333; }
    .port.locked { fill: #bbbbbb; }
    .port-out { fill: #333333; }
    .wire { fill: none; stroke: #666666; stroke-width: 2; }`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	padding       float64
	highlight     scene.NodeID
	wires         bool
	background    string
}

// WithViewport fixes the canvas size. Content outside the viewport after
// the camera is applied is clipped.
func WithViewport(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithPadding sets the margin used when the canvas is fitted to the scene.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// WithHighlight outlines one node.
func WithHighlight(id scene.NodeID) SVGOption { return func(r *svgRenderer) { r.highlight = id } }

// WithoutWires omits the wire layer.
func WithoutWires() SVGOption { return func(r *svgRenderer) { r.wires = false } }

// WithBackground fills the canvas with a CSS color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// RenderSVG paints c and returns the SVG document.
func RenderSVG(c *scene.GeometryCache, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h, fit := r.canvas(c)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", sceneCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	m := fit.Mul(c.Camera)
	fmt.Fprintf(&buf, `  <g transform="matrix(%s %s %s %s %s %s)">`+"\n",
		num(m[0]), num(m[1]), num(m[2]), num(m[3]), num(m[4]), num(m[5]))
	if r.wires {
		renderWires(&buf, c)
	}
	c.Each(func(id scene.NodeID, n *scene.Node) {
		renderNode(&buf, id, n, id == r.highlight)
	})
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{padding: DefaultPadding, wires: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// canvas returns the canvas size and the screen-space translation applied
// after the camera. A fixed viewport uses the camera as is.
func (r svgRenderer) canvas(c *scene.GeometryCache) (w, h float64, fit geom.Mat23) {
	if r.width > 0 && r.height > 0 {
		return r.width, r.height, geom.Identity
	}
	wb, ok := c.Bounds()
	if !ok {
		return emptySize, emptySize, geom.Identity
	}
	b := screenBounds(c.Camera, wb)
	fit = geom.Translate(geom.V(r.padding-b.Min.X(), r.padding-b.Min.Y()))
	return b.Width() + 2*r.padding, b.Height() + 2*r.padding, fit
}

// screenBounds transforms the corners of wb by the camera.
func screenBounds(camera geom.Mat23, wb geom.Rect) geom.Rect {
	corners := []geom.Vec2{
		wb.Min, wb.Max,
		geom.V(wb.Min.X(), wb.Max.Y()),
		geom.V(wb.Max.X(), wb.Min.Y()),
	}
	p := camera.Apply(corners[0])
	out := geom.Rect{Min: p, Max: p}
	for _, q := range corners[1:] {
		p := camera.Apply(q)
		out = out.Union(geom.Rect{Min: p, Max: p})
	}
	return out
}

func renderWires(buf *bytes.Buffer, c *scene.GeometryCache) {
	c.Each(func(id scene.NodeID, n *scene.Node) {
		for i, in := range n.Inputs {
			if !in.Connected() {
				continue
			}
			dx := (in.Pos.X() - in.Wire.X()) / 2
			fmt.Fprintf(buf, `    <path class="wire" data-from="%s" data-to="%s" data-input="%d" d="M %s %s C %s %s, %s %s, %s %s"/>`+"\n",
				escapeXML(string(in.Source)), escapeXML(string(id)), i,
				num(in.Wire.X()), num(in.Wire.Y()),
				num(in.Wire.X()+dx), num(in.Wire.Y()),
				num(in.Pos.X()-dx), num(in.Pos.Y()),
				num(in.Pos.X()), num(in.Pos.Y()))
		}
	})
}

func renderNode(buf *bytes.Buffer, id scene.NodeID, n *scene.Node, highlight bool) {
	class := "node"
	if highlight {
		class += " highlight"
	}
	x, y := n.Position.X(), n.Position.Y()
	fmt.Fprintf(buf, `    <g class="%s" id="node-%s">`+"\n", class, escapeXML(string(id)))
	fmt.Fprintf(buf, `      <rect class="node-body" x="%s" y="%s" width="%s" height="%s" rx="4"/>`+"\n",
		num(x), num(y), num(n.Size.X()), num(n.Size.Y()))
	fmt.Fprintf(buf, `      <rect class="node-header" x="%s" y="%s" width="%s" height="%s" rx="4"/>`+"\n",
		num(x), num(y), num(n.Size.X()), num(scene.HeaderHeight))

	label := n.Label
	if label == "" {
		label = string(id)
	}
	fmt.Fprintf(buf, `      <text class="node-label" x="%s" y="%s" dominant-baseline="middle">%s</text>`+"\n",
		num(x+scene.NodePadding), num(y+scene.HeaderHeight/2), escapeXML(label))

	for _, in := range n.Inputs {
		portClass := "port"
		switch {
		case in.Connected():
			portClass += " connected"
		case !in.Selectable:
			portClass += " locked"
		}
		fmt.Fprintf(buf, `      <circle class="%s" cx="%s" cy="%s" r="%s"/>`+"\n",
			portClass, num(in.Pos.X()), num(in.Pos.Y()), num(scene.PortRadius))
	}
	fmt.Fprintf(buf, `      <circle class="port-out" cx="%s" cy="%s" r="%s"/>`+"\n",
		num(n.Output.Pos.X()), num(n.Output.Pos.Y()), num(scene.PortRadius))
	buf.WriteString("    </g>\n")
}

// num formats a coordinate compactly: integral values print without decimals.
func num(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
