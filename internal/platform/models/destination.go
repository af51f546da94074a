package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type DestinationType string

const (
	DestinationTabular    DestinationType = "tabular"
	DestinationRelational DestinationType = "relational"
)

// Destination is a configured external sink for one webhook. RawConfig is
// the stored blob; Config is the variant parsed against the type tag before
// anything downstream of the API boundary sees it.
type Destination struct {
	ID        string            `json:"id"`
	WebhookID string            `json:"webhook_id"`
	Type      DestinationType   `json:"type"`
	Enabled   bool              `json:"enabled"`
	RawConfig json.RawMessage   `json:"config"`
	Config    DestinationConfig `json:"-"`
	CreatedAt int64             `json:"created_at"`
	UpdatedAt int64             `json:"updated_at"`
}

// DestinationConfig is a tagged variant: exactly one field is non-nil,
// matching the destination's type.
type DestinationConfig struct {
	Tabular    *TabularConfig
	Relational *RelationalConfig
}

// TabularConfig targets one worksheet of a spreadsheet. BaseURL overrides
// the provider API endpoint, primarily for tests.
type TabularConfig struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Worksheet     string `json:"worksheet"`
	BaseURL       string `json:"base_url,omitempty"`
}

// RelationalConfig targets one table of a PostgREST-style API. ConflictKey,
// when set, selects upsert semantics keyed on that column.
type RelationalConfig struct {
	BaseURL     string `json:"base_url"`
	Table       string `json:"table"`
	ServiceKey  string `json:"service_key"`
	ConflictKey string `json:"conflict_key,omitempty"`
}

var ErrInvalidDestinationType = errors.New("invalid destination type")

// ParseDestinationConfig validates a raw config blob against the type tag.
// Called at the API boundary on create/update and when loading rows, so the
// dispatcher only ever sees well-formed configs.
func ParseDestinationConfig(t DestinationType, raw json.RawMessage) (DestinationConfig, error) {
	switch t {
	case DestinationTabular:
		var cfg TabularConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return DestinationConfig{}, fmt.Errorf("invalid tabular config: %w", err)
		}
		if cfg.SpreadsheetID == "" || cfg.Worksheet == "" {
			return DestinationConfig{}, errors.New("tabular config requires spreadsheet_id and worksheet")
		}
		return DestinationConfig{Tabular: &cfg}, nil
	case DestinationRelational:
		var cfg RelationalConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return DestinationConfig{}, fmt.Errorf("invalid relational config: %w", err)
		}
		if cfg.BaseURL == "" || cfg.Table == "" || cfg.ServiceKey == "" {
			return DestinationConfig{}, errors.New("relational config requires base_url, table and service_key")
		}
		return DestinationConfig{Relational: &cfg}, nil
	default:
		return DestinationConfig{}, ErrInvalidDestinationType
	}
}
