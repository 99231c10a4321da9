package scene

import (
	"github.com/matzehuels/nodecanvas/pkg/geom"
)

// NodeID identifies a node. IDs are stable across save and load.
type NodeID string

// =============================================================================
// NodeData - Builder Input
// =============================================================================

// NodeData describes a node's content before layout. It is consumed only by
// [Build].
type NodeData struct {
	Position geom.Vec2   `json:"position"`
	Label    string      `json:"label,omitempty"`
	Inputs   []InputData `json:"inputs,omitempty"`
}

// InputData describes one input port.
type InputData struct {
	// Source is the node whose output feeds this input. Empty means unconnected.
	Source NodeID `json:"source,omitempty"`

	// Selectable marks ports the user can grab. The serializer keeps the input
	// count only for nodes whose first port is selectable.
	Selectable bool `json:"selectable,omitempty"`
}

// =============================================================================
// Node - Stored Geometry
// =============================================================================

// Node is the laid-out geometry stored in the cache.
type Node struct {
	Position geom.Vec2   `json:"position"`
	Label    string      `json:"label,omitempty"`
	Size     geom.Vec2   `json:"size"`
	Inputs   []InputSlot `json:"inputs"`
	Output   Output      `json:"output"`
}

// InputSlot is a positioned input port.
type InputSlot struct {
	Pos        geom.Vec2 `json:"pos"`
	Source     NodeID    `json:"source,omitempty"`
	Wire       geom.Vec2 `json:"wire"` // resolved output anchor of Source
	Selectable bool      `json:"selectable,omitempty"`
}

// Connected reports whether the slot references another node.
func (s InputSlot) Connected() bool { return s.Source != "" }

// Output is the node's output anchor.
type Output struct {
	Pos geom.Vec2 `json:"pos"`
}

// Bounds returns the node's hit-test rectangle.
func (n *Node) Bounds() geom.Rect { return geom.RectFrom(n.Position, n.Size) }

// Data recovers the NodeData the node was built from.
func (n *Node) Data() NodeData {
	d := NodeData{Position: n.Position, Label: n.Label}
	if len(n.Inputs) > 0 {
		d.Inputs = make([]InputData, len(n.Inputs))
		for i, in := range n.Inputs {
			d.Inputs[i] = InputData{Source: in.Source, Selectable: in.Selectable}
		}
	}
	return d
}

// references reports whether any input of n is wired to id.
func (n *Node) references(id NodeID) bool {
	for _, in := range n.Inputs {
		if in.Source == id {
			return true
		}
	}
	return false
}

// =============================================================================
// GeometryCache - Aggregate Root
// =============================================================================

// GeometryCache holds the camera, the node table and the z-order.
//
// The zero value is not ready for use; call [New].
type GeometryCache struct {
	Camera geom.Mat23

	nodes  map[NodeID]*Node
	zOrder ZOrder
}

// New returns an empty cache with the identity camera.
func New() *GeometryCache {
	return &GeometryCache{
		Camera: geom.Identity,
		nodes:  make(map[NodeID]*Node),
		zOrder: newZOrder(0),
	}
}

// NewWithCapacity returns an empty cache sized for n nodes.
func NewWithCapacity(n int) *GeometryCache {
	return &GeometryCache{
		Camera: geom.Identity,
		nodes:  make(map[NodeID]*Node, n),
		zOrder: newZOrder(n),
	}
}

// Len returns the number of nodes.
func (c *GeometryCache) Len() int { return len(c.nodes) }

// Node returns the stored node for id.
// The returned node is owned by the cache and must not be modified.
func (c *GeometryCache) Node(id NodeID) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Has reports whether id is present.
func (c *GeometryCache) Has(id NodeID) bool {
	_, ok := c.nodes[id]
	return ok
}

// ZOrder returns a copy of the paint order, bottom first.
func (c *GeometryCache) ZOrder() []NodeID { return c.zOrder.IDs() }

// IndexOf returns the paint position of id, or -1 if absent.
func (c *GeometryCache) IndexOf(id NodeID) int { return c.zOrder.IndexOf(id) }

// Each calls fn for every node in paint order, bottom first.
// fn must not mutate the cache.
func (c *GeometryCache) Each(fn func(id NodeID, n *Node)) {
	for _, id := range c.zOrder.ids {
		fn(id, c.nodes[id])
	}
}

// Bounds returns the union of all node bounds in world space.
// ok is false for an empty cache.
func (c *GeometryCache) Bounds() (r geom.Rect, ok bool) {
	for i, id := range c.zOrder.ids {
		b := c.nodes[id].Bounds()
		if i == 0 {
			r = b
			continue
		}
		r = r.Union(b)
	}
	return r, len(c.zOrder.ids) > 0
}
