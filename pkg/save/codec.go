package save

import (
	"fmt"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// MaxInputCount bounds the input count accepted from a saved document.
const MaxInputCount = 4096

// =============================================================================
// Encode - Cache → SavedData
// =============================================================================

// Encode projects c onto its persisted form. Entries follow c's z-order.
func Encode(c *scene.GeometryCache) SavedData {
	out := SavedData{
		Camera: c.Camera,
		Nodes:  make([]Entry, 0, c.Len()),
	}
	c.Each(func(id scene.NodeID, n *scene.Node) {
		out.Nodes = append(out.Nodes, Entry{
			ID:         id,
			Position:   n.Position,
			InputCount: InputCount(n),
		})
	})
	return out
}

// InputCount returns the input count persisted for n: the number of inputs
// when the first input is selectable, zero otherwise.
func InputCount(n *scene.Node) int {
	if len(n.Inputs) > 0 && n.Inputs[0].Selectable {
		return len(n.Inputs)
	}
	return 0
}

// =============================================================================
// Decode - SavedData → Cache
// =============================================================================

// Decode rebuilds a cache from saved. Exactly one of the results is non-nil.
//
// Unlike [scene.LoadNode], resolution during Decode sees every saved node at
// once, so the order of saved.Nodes affects only the rebuilt z-order. Each
// node is rebuilt with InputCount unconnected, selectable inputs.
func Decode(saved SavedData) (c *scene.GeometryCache, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, errors.New(errors.ErrCodeInternal, "rebuild scene: %v", r)
		}
	}()

	if err := Validate(saved); err != nil {
		return nil, err
	}

	// Decoded inputs carry no source, so Build does not call resolve here.
	// It only matters once saved entries carry wire sources.
	resolve := batchResolver(saved)
	c = scene.NewWithCapacity(len(saved.Nodes))
	c.Camera = saved.Camera
	for _, e := range saved.Nodes {
		c.Insert(e.ID, scene.Build(resolve, nodeData(e)))
	}
	return c, nil
}

// Validate reports the first structural problem in saved, or nil.
func Validate(saved SavedData) error {
	if !saved.Camera.IsFinite() {
		return errors.New(errors.ErrCodeInvalidScene, "camera contains non-finite values")
	}
	seen := make(map[scene.NodeID]int, len(saved.Nodes))
	for i, e := range saved.Nodes {
		if e.ID == "" {
			return errors.New(errors.ErrCodeInvalidScene, "nodes[%d]: empty node id", i)
		}
		if j, dup := seen[e.ID]; dup {
			return errors.New(errors.ErrCodeInvalidScene, "nodes[%d]: duplicate node id %q (first at nodes[%d])", i, e.ID, j)
		}
		seen[e.ID] = i
		if e.InputCount < 0 || e.InputCount > MaxInputCount {
			return errors.New(errors.ErrCodeInvalidScene, "nodes[%d]: input count %d out of range [0, %d]", i, e.InputCount, MaxInputCount)
		}
	}
	return nil
}

// batchResolver resolves against the complete saved node map. Output anchors
// follow from a node's position and input count alone, so they are known
// before any node is built.
func batchResolver(saved SavedData) scene.Resolver {
	anchors := make(map[scene.NodeID]geom.Vec2, len(saved.Nodes))
	for _, e := range saved.Nodes {
		anchors[e.ID] = scene.OutputAnchor(e.Position, e.InputCount)
	}
	return func(id scene.NodeID) geom.Vec2 {
		if p, ok := anchors[id]; ok {
			return p
		}
		return geom.Zero
	}
}

// nodeData expands a saved entry back into builder input.
func nodeData(e Entry) scene.NodeData {
	d := scene.NodeData{Position: e.Position}
	if e.InputCount > 0 {
		d.Inputs = make([]scene.InputData, e.InputCount)
		for i := range d.Inputs {
			d.Inputs[i] = scene.InputData{Selectable: true}
		}
	}
	return d
}

// String renders a short summary, e.g. "3 nodes".
func (s SavedData) String() string {
	return fmt.Sprintf("%d nodes", len(s.Nodes))
}
