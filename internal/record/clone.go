// Package record defines the unit of work flowing through a pipeline and the
// optional capabilities a record type may implement.
// This file implements the deep-copy operation backing the session's record
// clone contract: the copy shares no mutable substructure with the original.
package record

import (
	"fmt"
)

// Clone produces a fully independent deep copy of rec. Records implementing
// Cloner copy themselves; immutable scalars are returned as-is; maps and
// slices of plain data are copied structurally. Anything else cannot be
// cloned safely and is an error rather than a silently shared reference.
func Clone(rec Record) (Record, error) {
	if rec == nil {
		return nil, nil
	}
	if c, ok := rec.(Cloner); ok {
		return c.CloneRecord(), nil
	}

	switch v := rec.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case map[string]interface{}:
		return deepCopyMap(v), nil
	case []interface{}:
		return deepCopySlice(v), nil
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	default:
		return nil, fmt.Errorf("cannot clone record of type %T", rec)
	}
}

// deepCopyValue copies nested plain data structures; scalars pass through.
// Values of unknown types are returned unchanged, which is safe for the
// engine's own record types because they only nest maps, slices and scalars.
func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		return deepCopySlice(val)
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopySlice(s []interface{}) []interface{} {
	if s == nil {
		return nil
	}
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = deepCopyValue(v)
	}
	return out
}
