package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// SavedData is the persisted projection of a geometry cache.
type SavedData struct {
	Camera geom.Mat23 `json:"camera"`
	Nodes  []Entry    `json:"nodes"` // z-order, bottom first
}

// Entry is one persisted node. It marshals as the tuple [id, {...}].
type Entry struct {
	ID         scene.NodeID
	Position   geom.Vec2
	InputCount int
}

type savedNode struct {
	Position   geom.Vec2 `json:"position"`
	InputCount int       `json:"inputCount"`
}

// MarshalJSON encodes the entry as [id, {"position": [x, y], "inputCount": n}].
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, savedNode{Position: e.Position, InputCount: e.InputCount}})
}

// UnmarshalJSON decodes a single tuple entry strictly.
func (e *Entry) UnmarshalJSON(data []byte) error {
	out, err := parseEntry(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode entry")
	}
	*e = out
	return nil
}

// UnmarshalJSON decodes a document strictly; see [UnmarshalSavedData].
func (s *SavedData) UnmarshalJSON(data []byte) error {
	out, err := parseSavedData(data)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// =============================================================================
// Strict Parsing
// =============================================================================

// Raw shapes with pointer fields so missing members can be told apart from
// zero values.
type rawDoc struct {
	Camera *json.RawMessage   `json:"camera"`
	Nodes  *[]json.RawMessage `json:"nodes"`
}

type rawNode struct {
	Position   *json.RawMessage `json:"position"`
	InputCount *json.RawMessage `json:"inputCount"`
}

// Inner parse errors are plain; parseSavedData and Entry.UnmarshalJSON attach
// the INVALID_FORMAT code once.
func parseSavedData(data []byte) (SavedData, error) {
	var raw rawDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return SavedData{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode saved scene")
	}
	if raw.Camera == nil {
		return SavedData{}, errors.New(errors.ErrCodeInvalidFormat, "missing field \"camera\"")
	}
	if raw.Nodes == nil {
		return SavedData{}, errors.New(errors.ErrCodeInvalidFormat, "missing field \"nodes\"")
	}

	cam, err := parseFloats(*raw.Camera, 6)
	if err != nil {
		return SavedData{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "camera")
	}

	out := SavedData{Nodes: make([]Entry, len(*raw.Nodes))}
	copy(out.Camera[:], cam)
	for i, msg := range *raw.Nodes {
		e, err := parseEntry(msg)
		if err != nil {
			return SavedData{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "nodes[%d]", i)
		}
		out.Nodes[i] = e
	}
	return out, nil
}

func parseEntry(data []byte) (Entry, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return Entry{}, fmt.Errorf("entry must be an [id, node] pair: %w", err)
	}
	if len(tuple) != 2 {
		return Entry{}, fmt.Errorf("entry must have 2 elements, got %d", len(tuple))
	}

	var id string
	if err := json.Unmarshal(tuple[0], &id); err != nil {
		return Entry{}, fmt.Errorf("node id must be a string: %w", err)
	}

	var node rawNode
	if err := json.Unmarshal(tuple[1], &node); err != nil {
		return Entry{}, fmt.Errorf("node %q: %w", id, err)
	}
	if node.Position == nil {
		return Entry{}, fmt.Errorf("node %q: missing field \"position\"", id)
	}
	if node.InputCount == nil {
		return Entry{}, fmt.Errorf("node %q: missing field \"inputCount\"", id)
	}

	pos, err := parseFloats(*node.Position, 2)
	if err != nil {
		return Entry{}, fmt.Errorf("node %q position: %w", id, err)
	}
	count, err := parseInt(*node.InputCount)
	if err != nil {
		return Entry{}, fmt.Errorf("node %q: inputCount %w", id, err)
	}

	return Entry{
		ID:         scene.NodeID(id),
		Position:   geom.V(pos[0], pos[1]),
		InputCount: count,
	}, nil
}

// parseFloats decodes a JSON array of exactly n numbers. Decoding into
// []float64 would turn null elements into zero, so elements are pointers.
func parseFloats(data []byte, n int) ([]float64, error) {
	var ptrs []*float64
	if err := json.Unmarshal(data, &ptrs); err != nil {
		return nil, err
	}
	if len(ptrs) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(ptrs))
	}
	vals := make([]float64, n)
	for i, p := range ptrs {
		if p == nil {
			return nil, fmt.Errorf("element %d is null", i)
		}
		vals[i] = *p
	}
	return vals, nil
}

// parseInt accepts a bare JSON integer. Quoted numbers are rejected.
func parseInt(data []byte) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("must be a number, got %s", data)
	}
	n, err := strconv.Atoi(num.String())
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %s", num)
	}
	return n, nil
}
