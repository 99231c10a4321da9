// Package sink paints a geometry cache as SVG.
//
// Nodes are painted in z-order, so later entries cover earlier ones exactly
// as hit-testing expects. Wires form a layer beneath every node. All content
// sits inside one group carrying the cache camera as its transform, so world
// coordinates in the output match the cache verbatim.
//
//	svg := sink.RenderSVG(cache,
//	    sink.WithViewport(1280, 720),
//	    sink.WithHighlight("node-3"),
//	)
//
// Without a viewport the canvas is sized to the camera-transformed bounds of
// the scene plus padding.
package sink
