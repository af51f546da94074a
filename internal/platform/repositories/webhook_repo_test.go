package repositories

import (
	"database/sql"
	"encoding/json"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"hookfan/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	// Every pool connection gets its own :memory: database; keep one.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE webhooks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		token TEXT UNIQUE NOT NULL,
		latest_payload TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE destinations (
		id TEXT PRIMARY KEY,
		webhook_id TEXT NOT NULL,
		type TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		config TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE field_mappings (
		id TEXT PRIMARY KEY,
		destination_id TEXT NOT NULL,
		source_field TEXT NOT NULL,
		target_field TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE delivery_logs (
		id TEXT PRIMARY KEY,
		webhook_id TEXT NOT NULL,
		destination_id TEXT,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE provider_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		expires_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return db
}

func TestWebhookRepository_CreateAndGetByToken(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewWebhookRepository(db)

	webhook := &models.Webhook{UserID: "usr_1", Name: "Signups"}
	if err := repo.Create(webhook); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if webhook.ID == "" {
		t.Fatal("Expected generated webhook ID")
	}
	if len(webhook.Token) != 16 {
		t.Fatalf("Expected 16-char routing token, got %q", webhook.Token)
	}

	got, err := repo.GetByToken("usr_1", webhook.Token)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if got == nil || got.ID != webhook.ID {
		t.Fatalf("GetByToken returned wrong webhook: %+v", got)
	}

	got, err = repo.GetByToken("usr_2", webhook.Token)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if got != nil {
		t.Error("Token should not resolve under a different user")
	}
}

func TestWebhookRepository_UpdateLatestPayload(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewWebhookRepository(db)
	webhook := &models.Webhook{UserID: "usr_1", Name: "Signups"}
	if err := repo.Create(webhook); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	payload := json.RawMessage(`{"user":{"name":"Ann"}}`)
	if err := repo.UpdateLatestPayload(webhook.ID, payload); err != nil {
		t.Fatalf("UpdateLatestPayload failed: %v", err)
	}

	got, err := repo.GetByID(webhook.ID, "usr_1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if string(got.LatestPayload) != string(payload) {
		t.Errorf("Expected payload stored verbatim, got %s", got.LatestPayload)
	}
}

func TestWebhookRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	webhooks := NewWebhookRepository(db)
	webhook := &models.Webhook{UserID: "usr_1", Name: "Signups"}
	if err := webhooks.Create(webhook); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dests := NewDestinationRepository(db)
	dest := &models.Destination{
		WebhookID: webhook.ID,
		Type:      models.DestinationTabular,
		RawConfig: json.RawMessage(`{"spreadsheet_id":"s1","worksheet":"Leads"}`),
	}
	if err := dests.Create(dest); err != nil {
		t.Fatalf("Create destination failed: %v", err)
	}

	mappings := NewMappingRepository(db)
	if _, err := mappings.Replace(dest.ID, []*models.FieldMapping{{SourceField: "user.name", TargetField: "name"}}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	logs := NewDeliveryLogRepository(db)
	entry := &models.DeliveryLog{
		WebhookID:     webhook.ID,
		DestinationID: dest.ID,
		Payload:       json.RawMessage(`{}`),
		Status:        models.DeliveryStatusSuccess,
	}
	if err := logs.Create(entry); err != nil {
		t.Fatalf("Create log failed: %v", err)
	}

	deleted, err := webhooks.Delete(webhook.ID, "usr_1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("Expected delete to report a removed row")
	}

	remaining, err := dests.ListByWebhook(webhook.ID)
	if err != nil {
		t.Fatalf("ListByWebhook failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected destinations cascaded, got %d", len(remaining))
	}

	m, err := mappings.ListByDestination(dest.ID)
	if err != nil {
		t.Fatalf("ListByDestination failed: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("Expected mappings cascaded, got %d", len(m))
	}

	// Delivery history survives the webhook.
	kept, err := logs.GetByID(entry.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if kept == nil {
		t.Error("Expected delivery log retained after webhook delete")
	}
}

func TestWebhookRepository_DeleteWrongUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewWebhookRepository(db)
	webhook := &models.Webhook{UserID: "usr_1", Name: "Signups"}
	if err := repo.Create(webhook); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := repo.Delete(webhook.ID, "usr_2")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted {
		t.Error("Delete should not remove another user's webhook")
	}
}
