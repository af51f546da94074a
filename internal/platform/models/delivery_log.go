package models

import "encoding/json"

const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// DeliveryLog records one delivery attempt to one destination. A row is
// written after the first attempt and patched in place at most once, by the
// retry for the same attempt. DestinationID survives destination deletion
// for audit purposes.
type DeliveryLog struct {
	ID            string          `json:"id"`
	WebhookID     string          `json:"webhook_id"`
	DestinationID string          `json:"destination_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	RetryCount    int             `json:"retry_count"`
	CreatedAt     int64           `json:"created_at"`

	// Populated by joined list queries only.
	WebhookName     string `json:"webhook_name,omitempty"`
	DestinationType string `json:"destination_type,omitempty"`
}
