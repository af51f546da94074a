package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hookfan/internal/platform/models"
)

// TabularSheetAdapter appends one row to a worksheet. It reads the current
// header row to fix column order, then fills each column from the resolved
// record, leaving unmapped headers empty. The HTTP client and bearer token
// are built per call from freshly fetched credentials.
type TabularSheetAdapter struct {
	credentials CredentialStore
	baseURL     string
	timeout     time.Duration
}

func NewTabularSheetAdapter(credentials CredentialStore, baseURL string, timeout time.Duration) *TabularSheetAdapter {
	return &TabularSheetAdapter{
		credentials: credentials,
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
	}
}

func (a *TabularSheetAdapter) Write(ctx context.Context, dest *models.Destination, record map[string]interface{}) error {
	cfg := dest.Config.Tabular
	if cfg == nil {
		return &Error{Reason: ReasonConfiguration, Message: "destination has no tabular config"}
	}

	token, err := a.credentials.TokenForWebhook(dest.WebhookID)
	if err != nil {
		return &Error{Reason: ReasonAuthorization, Message: "failed to load provider credentials", Err: err}
	}
	if token == nil {
		return &Error{Reason: ReasonAuthorization, Message: "tabular provider not connected"}
	}

	base := a.baseURL
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	client := &http.Client{Timeout: a.timeout}

	headers, err := a.readHeaders(ctx, client, base, cfg, token.AccessToken)
	if err != nil {
		return err
	}
	if len(headers) == 0 {
		return &Error{Reason: ReasonUnreachable, Message: "no headers found in worksheet first row"}
	}

	// Positional row build. A header with no mapping, or a mapped-but-null
	// value, becomes an empty cell.
	row := make([]interface{}, len(headers))
	for i, header := range headers {
		if value, ok := record[header]; ok && value != nil {
			row[i] = value
		} else {
			row[i] = ""
		}
	}

	return a.appendRow(ctx, client, base, cfg, token.AccessToken, row)
}

func (a *TabularSheetAdapter) readHeaders(ctx context.Context, client *http.Client, base string, cfg *models.TabularConfig, accessToken string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		base, url.PathEscape(cfg.SpreadsheetID), url.PathEscape(cfg.Worksheet+"!1:1"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Reason: ReasonUnreachable, Message: "failed to build header request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Reason: ReasonUnreachable, Message: "failed to read worksheet headers", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &Error{Reason: ReasonAuthorization, Message: fmt.Sprintf("header read rejected: HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Reason: ReasonUnreachable, Message: fmt.Sprintf("header read failed: HTTP %d", resp.StatusCode)}
	}

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Reason: ReasonUnreachable, Message: "invalid header response", Err: err}
	}
	if len(body.Values) == 0 {
		return nil, nil
	}

	headers := make([]string, 0, len(body.Values[0]))
	for _, cell := range body.Values[0] {
		headers = append(headers, fmt.Sprint(cell))
	}
	return headers, nil
}

func (a *TabularSheetAdapter) appendRow(ctx context.Context, client *http.Client, base string, cfg *models.TabularConfig, accessToken string, row []interface{}) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		base, url.PathEscape(cfg.SpreadsheetID), url.PathEscape(cfg.Worksheet+"!A:A"))

	payload, err := json.Marshal(map[string]interface{}{"values": [][]interface{}{row}})
	if err != nil {
		return &Error{Reason: ReasonTransport, Message: "failed to encode row", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &Error{Reason: ReasonTransport, Message: "failed to build append request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Reason: ReasonTransport, Message: "append call failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &Error{Reason: ReasonAuthorization, Message: fmt.Sprintf("append rejected: HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Reason: ReasonTransport, Message: fmt.Sprintf("append failed: HTTP %d", resp.StatusCode)}
	}
	return nil
}
