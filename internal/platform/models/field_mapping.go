package models

// FieldMapping associates one flattened payload key with one destination
// field. Mappings for a destination are replaced wholesale on update.
type FieldMapping struct {
	ID            string `json:"id"`
	DestinationID string `json:"destination_id"`
	SourceField   string `json:"source_field"`
	TargetField   string `json:"target_field"`
	CreatedAt     int64  `json:"created_at"`
}
