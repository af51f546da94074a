// Package mapping turns a flattened payload into the record shape a
// destination expects, following the destination's saved field mappings.
package mapping

import (
	"errors"

	"hookfan/internal/platform/models"
)

// ErrNoMappings aborts dispatch to a destination before any network call.
// It will not succeed on retry without user action, so it is never retried.
var ErrNoMappings = errors.New("no field mappings configured for destination")

// Resolve builds the destination record. A source path missing from the
// flattened payload still produces the target key, with an explicit nil
// value; adapters must not confuse that with an unmapped field.
func Resolve(flattened map[string]interface{}, mappings []*models.FieldMapping) (map[string]interface{}, error) {
	if len(mappings) == 0 {
		return nil, ErrNoMappings
	}

	record := make(map[string]interface{}, len(mappings))
	for _, m := range mappings {
		value, ok := flattened[m.SourceField]
		if !ok {
			record[m.TargetField] = nil
			continue
		}
		record[m.TargetField] = value
	}
	return record, nil
}
