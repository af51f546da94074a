package repositories

import (
	"encoding/json"
	"testing"

	"hookfan/internal/platform/models"
)

func TestDestinationRepository_ListEnabledByWebhook(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewDestinationRepository(db)

	enabled := &models.Destination{
		WebhookID: "wh_1",
		Type:      models.DestinationTabular,
		RawConfig: json.RawMessage(`{"spreadsheet_id":"s1","worksheet":"Leads"}`),
	}
	if err := repo.Create(enabled); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	disabled := &models.Destination{
		WebhookID: "wh_1",
		Type:      models.DestinationRelational,
		RawConfig: json.RawMessage(`{"base_url":"https://db.example.com","table":"leads","service_key":"k"}`),
	}
	if err := repo.Create(disabled); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.UpdateEnabled(disabled.ID, false); err != nil {
		t.Fatalf("UpdateEnabled failed: %v", err)
	}

	got, err := repo.ListEnabledByWebhook("wh_1")
	if err != nil {
		t.Fatalf("ListEnabledByWebhook failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected only the enabled destination, got %d", len(got))
	}
	if got[0].ID != enabled.ID {
		t.Errorf("Unexpected destination %s", got[0].ID)
	}
	if got[0].Config.Tabular == nil {
		t.Error("Expected parsed tabular config on loaded row")
	}
}

func TestDestinationRepository_ListEnabledSkipsBrokenConfig(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewDestinationRepository(db)

	good := &models.Destination{
		WebhookID: "wh_1",
		Type:      models.DestinationTabular,
		RawConfig: json.RawMessage(`{"spreadsheet_id":"s1","worksheet":"Leads"}`),
	}
	if err := repo.Create(good); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Row written before config validation tightened; missing required fields.
	if _, err := db.Exec(`INSERT INTO destinations (id, webhook_id, type, enabled, config, created_at, updated_at) VALUES ('dst_bad', 'wh_1', 'tabular', 1, '{}', 1, 1)`); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.ListEnabledByWebhook("wh_1")
	if err != nil {
		t.Fatalf("ListEnabledByWebhook failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != good.ID {
		t.Errorf("Expected broken config skipped, got %d rows", len(got))
	}
}

func TestDestinationRepository_GetByIDForUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	webhooks := NewWebhookRepository(db)
	webhook := &models.Webhook{UserID: "usr_1", Name: "Signups"}
	if err := webhooks.Create(webhook); err != nil {
		t.Fatalf("Create webhook failed: %v", err)
	}

	repo := NewDestinationRepository(db)
	dest := &models.Destination{
		WebhookID: webhook.ID,
		Type:      models.DestinationTabular,
		RawConfig: json.RawMessage(`{"spreadsheet_id":"s1","worksheet":"Leads"}`),
	}
	if err := repo.Create(dest); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByIDForUser(dest.ID, "usr_1")
	if err != nil {
		t.Fatalf("GetByIDForUser failed: %v", err)
	}
	if got == nil || got.ID != dest.ID {
		t.Fatalf("Expected destination for owner, got %+v", got)
	}

	got, err = repo.GetByIDForUser(dest.ID, "usr_2")
	if err != nil {
		t.Fatalf("GetByIDForUser failed: %v", err)
	}
	if got != nil {
		t.Error("Destination should not resolve for a different user")
	}
}
