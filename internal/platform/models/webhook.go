package models

import "encoding/json"

// Webhook is a user-owned inbound endpoint. Token is the public routing
// token used in the receive URL; LatestPayload holds only the most recent
// payload snapshot (overwritten on every delivery).
type Webhook struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	Token         string          `json:"token"`
	LatestPayload json.RawMessage `json:"latest_payload,omitempty"`
	CreatedAt     int64           `json:"created_at"`
	UpdatedAt     int64           `json:"updated_at"`
}
