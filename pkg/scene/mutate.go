package scene

import (
	"github.com/matzehuels/nodecanvas/pkg/geom"
)

// LoadNode builds data against the cache's current contents and stores the
// result under id.
//
// The resolver sees the cache as it is before this node is stored, so a
// source loaded later resolves to the origin. A new id is appended on top of
// the z-order. An existing id has its node replaced and keeps its slot.
//
// LoadNode mutates c in place.
func LoadNode(c *GeometryCache, id NodeID, data NodeData) {
	c.Insert(id, Build(c.Resolver(), data))
}

// Insert stores a prebuilt node under id without resolving anything.
// It is the low-level write used by LoadNode and by batch loaders that
// resolve against their own data. It returns true when id was new.
func (c *GeometryCache) Insert(id NodeID, n *Node) bool {
	c.nodes[id] = n
	return c.zOrder.append(id)
}

// Remove deletes id from the node table and the z-order.
// Nodes wired to id keep their last resolved wire position until rebuilt.
func Remove(c *GeometryCache, id NodeID) bool {
	if _, ok := c.nodes[id]; !ok {
		return false
	}
	delete(c.nodes, id)
	c.zOrder.remove(id)
	return true
}

// Raise moves id to the top of the z-order.
func Raise(c *GeometryCache, id NodeID) bool {
	return c.zOrder.raise(id)
}

// Move rebuilds id at pos and refreshes the wires of every node that takes
// input from it. The node keeps its z-order slot.
func Move(c *GeometryCache, id NodeID, pos geom.Vec2) bool {
	n, ok := c.nodes[id]
	if !ok {
		return false
	}
	data := n.Data()
	data.Position = pos
	LoadNode(c, id, data)
	refreshDependents(c, id)
	return true
}

// Dependents returns the ids of nodes with an input wired to id, in z-order.
func Dependents(c *GeometryCache, id NodeID) []NodeID {
	var out []NodeID
	for _, other := range c.zOrder.ids {
		if c.nodes[other].references(id) {
			out = append(out, other)
		}
	}
	return out
}

// refreshDependents re-resolves the wires of nodes fed by id. Output anchors
// depend only on a node's own position and input count, so one level is
// enough.
func refreshDependents(c *GeometryCache, id NodeID) {
	resolve := c.Resolver()
	for _, dep := range Dependents(c, id) {
		c.nodes[dep] = Build(resolve, c.nodes[dep].Data())
	}
}

// SetCamera replaces the camera transform.
func SetCamera(c *GeometryCache, m geom.Mat23) {
	c.Camera = m
}

// HitTest returns the topmost node whose bounds contain the world-space
// point p.
func HitTest(c *GeometryCache, p geom.Vec2) (NodeID, bool) {
	for i := len(c.zOrder.ids) - 1; i >= 0; i-- {
		id := c.zOrder.ids[i]
		if c.nodes[id].Bounds().Contains(p) {
			return id, true
		}
	}
	return "", false
}
