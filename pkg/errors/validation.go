package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node ids so hostile input cannot bloat the table.
const maxNodeIDLength = 256

// ValidateNodeID validates a node id supplied from outside the process.
//
// The rules are conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid control characters")
		}
	}

	return nil
}

// sceneNameRegex matches names usable as a store key and file stem.
var sceneNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateSceneName validates the name a scene is stored under.
// Names become file names and Redis/Mongo keys, so path components and
// traversal sequences are rejected.
func ValidateSceneName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "scene name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "scene name too long (max 128 characters)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "scene name cannot contain path traversal sequences (..)")
	}

	if !sceneNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid scene name: %q", name)
	}

	return nil
}
