package meta

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ContentHash returns a stable hex digest of the value's canonical JSON
// encoding. Map keys are sorted by the encoder, so two structurally equal
// values always hash the same. Used for dimensions equality, provenance
// dedup identity, and catalog checksums.
func ContentHash(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize value for hashing: %w", err)
	}

	digest := blake2b.Sum256(data)

	return hex.EncodeToString(digest[:]), nil
}

// DictEqual reports whether two opaque dictionaries carry the same content.
// Nil and empty dictionaries are distinct: nil means "undefined", empty means
// "defined with no entries".
func DictEqual(a, b map[string]any) bool {
	if (a == nil) != (b == nil) {
		return false
	}

	if a == nil {
		return true
	}

	return contentEqual(a, b)
}

// CloneDict returns a copy of an opaque dictionary one level deep. Nested
// maps and slices are copied as well so the usual sidecar shapes (maps of
// scalars, lists of scalars, one level of nesting) never alias; deeper
// structures share leaves.
func CloneDict(d map[string]any) map[string]any {
	if d == nil {
		return nil
	}

	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneDict(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}

		return out
	default:
		return v
	}
}
