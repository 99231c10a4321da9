package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/scene"
)

// =============================================================================
// Serialization API
// =============================================================================

// ToJSON encodes c as pretty-printed JSON bytes.
func ToJSON(c *scene.GeometryCache) ([]byte, error) {
	return MarshalSavedData(Encode(c))
}

// FromJSON decodes JSON bytes into a new cache.
func FromJSON(data []byte) (*scene.GeometryCache, error) {
	saved, err := UnmarshalSavedData(data)
	if err != nil {
		return nil, err
	}
	return Decode(saved)
}

// MarshalSavedData serializes s to pretty-printed JSON bytes.
func MarshalSavedData(s SavedData) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalSavedData decodes JSON bytes into SavedData.
// Structural problems (wrong tuple arity, missing fields, non-integer input
// counts) are reported with [errors.ErrCodeInvalidFormat].
func UnmarshalSavedData(data []byte) (SavedData, error) {
	return parseSavedData(data)
}

// Write encodes c as JSON to an io.Writer.
func Write(c *scene.GeometryCache, w io.Writer) error {
	return writeTo(Encode(c), w)
}

// Read decodes a JSON scene from an io.Reader into a new cache.
func Read(r io.Reader) (*scene.GeometryCache, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return FromJSON(data)
}

// WriteFile writes c to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(c *scene.GeometryCache, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(c, f)
}

// ReadFile reads a JSON scene file into a new cache.
func ReadFile(path string) (*scene.GeometryCache, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(s SavedData, w io.Writer) error {
	if s.Nodes == nil {
		s.Nodes = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
