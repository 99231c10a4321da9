package scene

import (
	"math"

	"github.com/matzehuels/nodecanvas/pkg/geom"
)

// Node shape constants, in world units.
const (
	NodeWidth     = 120.0 // fixed body width
	HeaderHeight  = 24.0  // title strip above the first input
	InputSpacing  = 20.0  // vertical distance between inputs
	NodePadding   = 8.0   // gap between header and first input, and below the last
	MinNodeHeight = 48.0  // height of a node with zero or one input
	PortRadius    = 5.0   // radius of input and output port circles
)

// =============================================================================
// Position Resolver
// =============================================================================

// Resolver maps a node id to its output anchor. Unknown ids map to
// [geom.Zero]; a Resolver never fails.
type Resolver func(id NodeID) geom.Vec2

// Resolve returns the output anchor of id, or the origin if id is absent.
func (c *GeometryCache) Resolve(id NodeID) geom.Vec2 {
	if n, ok := c.nodes[id]; ok {
		return n.Output.Pos
	}
	return geom.Zero
}

// Resolver returns a Resolver reading the cache's node table at call time.
func (c *GeometryCache) Resolver() Resolver { return c.Resolve }

// =============================================================================
// Geometry Builder
// =============================================================================

// Build lays out data as a Node, resolving input wires through resolve.
//
// Build is deterministic and has no side effects: it neither mutates nor
// retains anything reachable from resolve or data. The resolver must come
// from the cache the node is going to be stored in.
func Build(resolve Resolver, data NodeData) *Node {
	size := NodeSize(len(data.Inputs))
	n := &Node{
		Position: data.Position,
		Label:    data.Label,
		Size:     size,
		Inputs:   make([]InputSlot, len(data.Inputs)),
		Output:   Output{Pos: outputAnchor(data.Position, size)},
	}
	for i, in := range data.Inputs {
		slot := InputSlot{
			Pos:        InputAnchor(data.Position, i),
			Source:     in.Source,
			Selectable: in.Selectable,
		}
		if in.Source != "" {
			slot.Wire = resolve(in.Source)
		}
		n.Inputs[i] = slot
	}
	return n
}

// NodeSize returns the body size of a node with the given number of inputs.
func NodeSize(inputs int) geom.Vec2 {
	h := HeaderHeight + 2*NodePadding + InputSpacing*float64(max(inputs-1, 0))
	return geom.V(NodeWidth, math.Max(MinNodeHeight, h))
}

// InputAnchor returns the attachment point of input i for a node at pos.
func InputAnchor(pos geom.Vec2, i int) geom.Vec2 {
	return pos.Add(geom.V(0, HeaderHeight+NodePadding+InputSpacing*float64(i)))
}

// OutputAnchor returns where the output port of a node at pos with the given
// number of inputs sits. It agrees with Build without resolving anything.
func OutputAnchor(pos geom.Vec2, inputs int) geom.Vec2 {
	return outputAnchor(pos, NodeSize(inputs))
}

func outputAnchor(pos, size geom.Vec2) geom.Vec2 {
	return pos.Add(geom.V(size.X(), size.Y()/2))
}
