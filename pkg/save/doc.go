// Package save converts a geometry cache to and from its persisted form.
//
// The persisted form, [SavedData], is deliberately lossy: it keeps the
// camera, the z-order and, per node, the position and an input count. Labels,
// input wiring and derived shapes are rebuilt by the geometry builder when a
// scene is loaded.
//
// # JSON Format
//
//	{
//	  "camera": [1, 0, 0, 1, 0, 0],
//	  "nodes": [
//	    ["a", {"position": [1, 2], "inputCount": 2}],
//	    ["b", {"position": [3, 4], "inputCount": 0}]
//	  ]
//	}
//
// The order of "nodes" is the z-order, bottom first.
//
// # Input Count
//
// A node's input count is persisted only when its first input is
// selectable; every other node, including nodes without inputs, is saved
// with an input count of zero. Restored inputs are unconnected and
// selectable, so a restored scene re-encodes to the same document.
//
// # Usage
//
//	data, err := save.ToJSON(cache)          // cache → []byte
//	cache, err := save.FromJSON(data)        // []byte → cache
//	saved := save.Encode(cache)              // cache → SavedData
//	cache, err := save.Decode(saved)         // SavedData → cache
//
// [Decode] and [UnmarshalSavedData] never panic; on failure they return a
// nil cache and an error carrying an [errors.Code].
//
// [errors.Code]: github.com/matzehuels/nodecanvas/pkg/errors.Code
package save
