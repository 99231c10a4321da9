// Package nodelink renders the wiring of a geometry cache as a node-link
// diagram.
//
// # Overview
//
// Each node becomes a box and each connected input becomes an arrow from the
// source node to the consuming node. Geometry is ignored; Graphviz computes
// its own layout, which makes the diagram useful for checking connectivity
// of large scenes where wires overlap on the canvas.
//
// # Usage
//
// Convert a cache to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(cache, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PNG output, Graphviz renders directly:
//
//	png, err := nodelink.RenderPNG(dot)
//
// # Dangling references
//
// An input whose source is not in the cache still resolves (to the origin),
// so it is drawn: the missing source appears as a dashed grey placeholder.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
