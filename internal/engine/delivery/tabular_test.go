package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hookfan/internal/platform/models"
)

type staticCredentials struct {
	token *models.ProviderToken
	err   error
}

func (c *staticCredentials) TokenForWebhook(string) (*models.ProviderToken, error) {
	return c.token, c.err
}

func tabularDest(spreadsheetID, worksheet string) *models.Destination {
	return &models.Destination{
		ID:        "dst_1",
		WebhookID: "wh_1",
		Type:      models.DestinationTabular,
		Enabled:   true,
		Config: models.DestinationConfig{
			Tabular: &models.TabularConfig{SpreadsheetID: spreadsheetID, Worksheet: worksheet},
		},
	}
}

func TestTabularWriteAppendsPositionalRow(t *testing.T) {
	var appendBody []byte
	var appendAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"values": [][]interface{}{{"name", "email", "plan"}},
			})
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, ":append"):
			appendAuth = r.Header.Get("Authorization")
			appendBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	creds := &staticCredentials{token: &models.ProviderToken{AccessToken: "tok_abc"}}
	adapter := NewTabularSheetAdapter(creds, server.URL, 5*time.Second)

	record := map[string]interface{}{
		"name":  "Ann",
		"email": "a@x.com",
		"plan":  nil, // mapped but null in the payload
	}
	if err := adapter.Write(context.Background(), tabularDest("sheet123", "Leads"), record); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if appendAuth != "Bearer tok_abc" {
		t.Errorf("Expected bearer token on append, got %q", appendAuth)
	}

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.Unmarshal(appendBody, &body); err != nil {
		t.Fatalf("Invalid append body: %v", err)
	}
	if len(body.Values) != 1 {
		t.Fatalf("Expected exactly one row, got %d", len(body.Values))
	}
	row := body.Values[0]
	if len(row) != 3 {
		t.Fatalf("Expected 3 cells to match 3 headers, got %d", len(row))
	}
	if row[0] != "Ann" || row[1] != "a@x.com" || row[2] != "" {
		t.Errorf("Unexpected row: %v", row)
	}
}

func TestTabularWriteUnmappedHeaderIsEmptyCell(t *testing.T) {
	var appendBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"values": [][]interface{}{{"name", "unmapped_col"}},
			})
			return
		}
		appendBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	creds := &staticCredentials{token: &models.ProviderToken{AccessToken: "tok_abc"}}
	adapter := NewTabularSheetAdapter(creds, server.URL, 5*time.Second)

	if err := adapter.Write(context.Background(), tabularDest("sheet123", "Leads"), map[string]interface{}{"name": "Ann"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.Unmarshal(appendBody, &body); err != nil {
		t.Fatalf("Invalid append body: %v", err)
	}
	if body.Values[0][1] != "" {
		t.Errorf("Expected empty cell for header with no mapping, got %v", body.Values[0][1])
	}
}

func TestTabularWriteUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	creds := &staticCredentials{token: &models.ProviderToken{AccessToken: "stale"}}
	adapter := NewTabularSheetAdapter(creds, server.URL, 5*time.Second)

	err := adapter.Write(context.Background(), tabularDest("sheet123", "Leads"), map[string]interface{}{"name": "Ann"})

	var dErr *Error
	if !errors.As(err, &dErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if dErr.Reason != ReasonAuthorization {
		t.Errorf("Expected authorization reason, got %s", dErr.Reason)
	}
	if !dErr.Retryable() {
		t.Error("Authorization failures should be retryable")
	}
}

func TestTabularWriteEmptyHeaderRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"values": [][]interface{}{}})
	}))
	defer server.Close()

	creds := &staticCredentials{token: &models.ProviderToken{AccessToken: "tok_abc"}}
	adapter := NewTabularSheetAdapter(creds, server.URL, 5*time.Second)

	err := adapter.Write(context.Background(), tabularDest("sheet123", "Leads"), map[string]interface{}{"name": "Ann"})

	var dErr *Error
	if !errors.As(err, &dErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if dErr.Reason != ReasonUnreachable {
		t.Errorf("Expected unreachable reason for empty header row, got %s", dErr.Reason)
	}
}

func TestTabularWriteNoCredentials(t *testing.T) {
	adapter := NewTabularSheetAdapter(&staticCredentials{}, "http://127.0.0.1:1", 5*time.Second)

	err := adapter.Write(context.Background(), tabularDest("sheet123", "Leads"), map[string]interface{}{"name": "Ann"})

	var dErr *Error
	if !errors.As(err, &dErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if dErr.Reason != ReasonAuthorization {
		t.Errorf("Expected authorization reason when provider is not connected, got %s", dErr.Reason)
	}
}
