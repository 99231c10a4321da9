package scene

// ZOrder is the paint and hit-test order: index 0 is the bottom, the last
// entry is topmost. It keeps an id→index map so membership checks are O(1)
// and appends never duplicate an id.
type ZOrder struct {
	ids   []NodeID
	index map[NodeID]int
}

func newZOrder(capacity int) ZOrder {
	return ZOrder{
		ids:   make([]NodeID, 0, capacity),
		index: make(map[NodeID]int, capacity),
	}
}

// Len returns the number of ids.
func (z *ZOrder) Len() int { return len(z.ids) }

// Contains reports whether id is present.
func (z *ZOrder) Contains(id NodeID) bool {
	_, ok := z.index[id]
	return ok
}

// IndexOf returns the position of id, or -1.
func (z *ZOrder) IndexOf(id NodeID) int {
	if i, ok := z.index[id]; ok {
		return i
	}
	return -1
}

// IDs returns a copy of the order.
func (z *ZOrder) IDs() []NodeID {
	out := make([]NodeID, len(z.ids))
	copy(out, z.ids)
	return out
}

// append adds id on top. It is a no-op when id is already present.
func (z *ZOrder) append(id NodeID) bool {
	if z.Contains(id) {
		return false
	}
	z.index[id] = len(z.ids)
	z.ids = append(z.ids, id)
	return true
}

// remove deletes id and shifts the ids above it down, preserving order.
func (z *ZOrder) remove(id NodeID) bool {
	i, ok := z.index[id]
	if !ok {
		return false
	}
	copy(z.ids[i:], z.ids[i+1:])
	z.ids = z.ids[:len(z.ids)-1]
	delete(z.index, id)
	z.reindex(i)
	return true
}

// raise moves id to the top, preserving the relative order of the others.
func (z *ZOrder) raise(id NodeID) bool {
	i, ok := z.index[id]
	if !ok {
		return false
	}
	last := len(z.ids) - 1
	if i == last {
		return true
	}
	copy(z.ids[i:], z.ids[i+1:])
	z.ids[last] = id
	z.reindex(i)
	return true
}

func (z *ZOrder) reindex(from int) {
	for j := from; j < len(z.ids); j++ {
		z.index[z.ids[j]] = j
	}
}
