package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hookfan/internal/platform/models"
)

// RelationalUpsertAdapter writes one record to a PostgREST-style table. With
// a configured conflict key and a non-null resolved value for it, the write
// is a merge (update-or-insert keyed on that column); otherwise a plain
// insert.
type RelationalUpsertAdapter struct {
	timeout time.Duration
}

func NewRelationalUpsertAdapter(timeout time.Duration) *RelationalUpsertAdapter {
	return &RelationalUpsertAdapter{timeout: timeout}
}

// filterValue renders a resolved value for the eq filter. JSON numbers
// decode as float64; fmt.Sprint would render large integers in exponent
// notation, which never matches the column.
func filterValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (a *RelationalUpsertAdapter) Write(ctx context.Context, dest *models.Destination, record map[string]interface{}) error {
	cfg := dest.Config.Relational
	if cfg == nil {
		return &Error{Reason: ReasonConfiguration, Message: "destination has no relational config"}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return &Error{Reason: ReasonTransport, Message: "failed to encode record", Err: err}
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/rest/v1/" + url.PathEscape(cfg.Table)
	method := http.MethodPost
	prefer := "return=representation"

	if cfg.ConflictKey != "" {
		if value, ok := record[cfg.ConflictKey]; ok && value != nil {
			method = http.MethodPatch
			endpoint += "?" + url.QueryEscape(cfg.ConflictKey) + "=eq." + url.QueryEscape(filterValue(value))
			prefer = "resolution=merge-duplicates"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &Error{Reason: ReasonTransport, Message: "failed to build write request", Err: err}
	}
	req.Header.Set("apikey", cfg.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+cfg.ServiceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", prefer)

	client := &http.Client{Timeout: a.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return &Error{Reason: ReasonTransport, Message: "write call failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &Error{Reason: ReasonAuthorization, Message: fmt.Sprintf("write rejected: HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Reason: ReasonTransport, Message: fmt.Sprintf("write failed: HTTP %d", resp.StatusCode)}
	}
	return nil
}
