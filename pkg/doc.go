// Package pkg provides the core libraries for the nodecanvas node editor.
//
// # Overview
//
// A nodecanvas scene is a set of boxes ("nodes") with input ports on the
// left and a single output port on the right. Inputs can be wired to the
// output of another node. The pkg directory is organized into these areas:
//
//  1. [scene] and [geom] - The geometry cache: nodes, their derived geometry,
//     z-order and camera
//  2. [save] - The JSON save format and its encoder/decoder
//  3. [interact] - Pointer driven dragging, panning and zooming
//  4. [workspace] - A locked, observable cache with store-backed save/load
//  5. [store] - Scene persistence (file, redis, mongo, null)
//  6. [render] - SVG/PNG/PDF painting and Graphviz wiring diagrams
//  7. [server] - The HTTP API over a workspace
//
// Ambient packages: [config], [errors], [observability] and [buildinfo].
//
// # Architecture
//
// The typical data flow:
//
//	save file / store
//	       ↓
//	  [save] package (decode, assign fresh slot order)
//	       ↓
//	  [scene] package (build geometry, resolve wire endpoints)
//	       ↓
//	  [workspace] package (edits, camera, pointer input)
//	       ↓
//	  [render] package or [save] package (output)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/nodecanvas/pkg/geom"
//	    "github.com/matzehuels/nodecanvas/pkg/render/sink"
//	    "github.com/matzehuels/nodecanvas/pkg/scene"
//	)
//
//	c := scene.New()
//	scene.LoadNode(c, "src", scene.NodeData{Position: geom.V(0, 0)})
//	scene.LoadNode(c, "dst", scene.NodeData{
//	    Position: geom.V(200, 40),
//	    Inputs:   []scene.InputData{{Source: "src", Selectable: true}},
//	})
//	svg := sink.RenderSVG(c, sink.WithViewport(800, 600))
//
// [scene]: github.com/matzehuels/nodecanvas/pkg/scene
// [geom]: github.com/matzehuels/nodecanvas/pkg/geom
// [save]: github.com/matzehuels/nodecanvas/pkg/save
// [interact]: github.com/matzehuels/nodecanvas/pkg/interact
// [workspace]: github.com/matzehuels/nodecanvas/pkg/workspace
// [store]: github.com/matzehuels/nodecanvas/pkg/store
// [render]: github.com/matzehuels/nodecanvas/pkg/render
// [server]: github.com/matzehuels/nodecanvas/pkg/server
// [config]: github.com/matzehuels/nodecanvas/pkg/config
// [errors]: github.com/matzehuels/nodecanvas/pkg/errors
// [observability]: github.com/matzehuels/nodecanvas/pkg/observability
// [buildinfo]: github.com/matzehuels/nodecanvas/pkg/buildinfo
package pkg
