// Package scene implements the geometry cache behind the node editor: a table
// of positioned nodes, their paint and hit-test order, and the camera.
//
// # Architecture
//
// The package is split into four cooperating pieces:
//
//   - Entity model: [NodeID], [NodeData], [Node], [GeometryCache]
//   - Position resolver: [Resolver] and [GeometryCache.Resolve]
//   - Geometry builder: [Build], a pure function NodeData → Node
//   - Mutator: [LoadNode] plus [Remove], [Raise], [Move] and [SetCamera]
//
// Serialization lives in pkg/save; painting lives in pkg/render.
//
// # Resolution
//
// Nodes wire their inputs to the output anchors of other nodes. Looking up a
// node that is not in the cache is not an error: it resolves to the origin.
// References may point at peers that are not loaded yet or have been removed,
// and both cases are routine while editing.
//
//	c := scene.New()
//	scene.LoadNode(c, "b", scene.NodeData{Inputs: []scene.InputData{{Source: "a"}}})
//	// b's input wire points at (0,0): "a" was not loaded yet.
//
// Load order therefore matters for [LoadNode]. [Move] refreshes the wires of
// every node that references the moved node.
//
// # Ordering
//
// The z-order lists every node id exactly once. Index 0 is painted first
// (bottom), the last entry is topmost and wins hit tests. Loading a new id
// appends it to the top. Loading an id that is already present replaces the
// node but keeps its slot; use [Raise] to bring it to the top.
//
// # Concurrency
//
// A GeometryCache is a mutable aggregate with a single owner and no internal
// locking. Callers that share one across goroutines must serialize access
// themselves (pkg/workspace does this with a RWMutex).
package scene
