package library

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadJSON reads a raw library, a nested JSON object whose leaves are sprite
// sources.
func ReadJSON(r io.Reader) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: library is not an object", ErrMalformed)
	}
	return raw, nil
}

// Insert files source under path in the raw library raw, creating nested
// maps as needed.
func Insert(raw map[string]interface{}, path []string, source interface{}) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrMalformed)
	}
	m := raw
	for i, k := range path[:len(path)-1] {
		switch v := m[k].(type) {
		case nil:
			next := make(map[string]interface{})
			m[k] = next
			m = next
		case map[string]interface{}:
			m = v
		default:
			return fmt.Errorf("%w: %v is a sprite, not a directory", ErrMalformed, path[:i+1])
		}
	}
	m[path[len(path)-1]] = source
	return nil
}
