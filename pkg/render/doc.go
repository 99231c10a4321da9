// Package render provides visual output for a geometry cache.
//
// # Overview
//
// Two renderers live under this package:
//
//   - Scene painting (in [sink] subpackage): nodes as boxes with ports and
//     wires, painted in z-order under the cache camera
//   - Wiring diagrams (in [nodelink] subpackage): the input connections as a
//     Graphviz directed graph
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(cache, sink.WithViewport(800, 600))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/nodecanvas/pkg/render/sink
// [nodelink]: github.com/matzehuels/nodecanvas/pkg/render/nodelink
package render
