// Package flatten converts nested JSON payloads into single-level maps
// keyed by dot-joined paths, e.g. {"a":{"b":1}} -> {"a.b":1}.
package flatten

// Flatten walks the payload and returns a map from dotted path to leaf
// value. Only non-nil JSON objects are descended into; arrays, scalars and
// nulls stay leaf values at their current path. Total over any decoded JSON
// value: it never fails.
func Flatten(payload map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(payload))
	walk(payload, "", result)
	return result
}

func walk(obj map[string]interface{}, prefix string, result map[string]interface{}) {
	for key, value := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if child, ok := value.(map[string]interface{}); ok && child != nil {
			walk(child, path, result)
		} else {
			result[path] = value
		}
	}
}
