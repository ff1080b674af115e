package catalog

import "encoding/json"

// marshalJSON marshals v for storage in a jsonb column, returning the JSON
// literal null on marshal failure rather than propagating the error — these
// values are always built from Go structs we control.
func marshalJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}
