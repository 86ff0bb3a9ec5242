// Package store provides database access methods for all blog entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"encoding/json"
	"fmt"
)

// jsonStrings marshals a string slice for storage in a JSONB column.
// A nil slice is stored as SQL NULL rather than the JSON literal "null".
func jsonStrings(v []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return b, nil
}

// scanStrings unmarshals a JSONB column into a string slice.
// NULL columns yield a nil slice.
func scanStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	return v, nil
}
