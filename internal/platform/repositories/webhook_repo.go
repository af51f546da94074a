package repositories

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"hookfan/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(webhook *models.Webhook) error {
	webhook.ID = "wh_" + uuid.NewString()
	webhook.Token = newRoutingToken()
	webhook.CreatedAt = time.Now().Unix()
	webhook.UpdatedAt = webhook.CreatedAt

	query := `
		INSERT INTO webhooks (id, user_id, name, token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, webhook.ID, webhook.UserID, webhook.Name, webhook.Token, webhook.CreatedAt, webhook.UpdatedAt)
	return err
}

func (r *WebhookRepository) GetByID(id, userID string) (*models.Webhook, error) {
	query := `
		SELECT id, user_id, name, token, latest_payload, created_at, updated_at
		FROM webhooks WHERE id = ? AND user_id = ?
	`
	return scanWebhook(r.db.QueryRow(query, id, userID))
}

// GetByToken resolves the public routing pair used by the receive endpoint.
func (r *WebhookRepository) GetByToken(userID, token string) (*models.Webhook, error) {
	query := `
		SELECT id, user_id, name, token, latest_payload, created_at, updated_at
		FROM webhooks WHERE user_id = ? AND token = ?
	`
	return scanWebhook(r.db.QueryRow(query, userID, token))
}

func (r *WebhookRepository) ListByUser(userID string) ([]*models.Webhook, error) {
	query := `
		SELECT id, user_id, name, token, latest_payload, created_at, updated_at
		FROM webhooks WHERE user_id = ? ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		var w models.Webhook
		var payload sql.NullString
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.Token, &payload, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		if payload.Valid {
			w.LatestPayload = json.RawMessage(payload.String)
		}
		webhooks = append(webhooks, &w)
	}
	return webhooks, rows.Err()
}

func (r *WebhookRepository) UpdateName(id, userID, name string) (bool, error) {
	res, err := r.db.Exec(`UPDATE webhooks SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		name, time.Now().Unix(), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateLatestPayload overwrites the snapshot unconditionally. Concurrent
// receives for the same webhook race here; last write wins.
func (r *WebhookRepository) UpdateLatestPayload(id string, payload json.RawMessage) error {
	_, err := r.db.Exec(`UPDATE webhooks SET latest_payload = ?, updated_at = ? WHERE id = ?`,
		string(payload), time.Now().Unix(), id)
	return err
}

// Delete removes the webhook and cascades its destinations and their
// mappings. Delivery logs are intentionally left behind.
func (r *WebhookRepository) Delete(id, userID string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM webhooks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.Exec(`DELETE FROM field_mappings WHERE destination_id IN (SELECT id FROM destinations WHERE webhook_id = ?)`, id); err != nil {
		return false, err
	}
	if _, err := tx.Exec(`DELETE FROM destinations WHERE webhook_id = ?`, id); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func scanWebhook(row *sql.Row) (*models.Webhook, error) {
	var w models.Webhook
	var payload sql.NullString
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Token, &payload, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if payload.Valid {
		w.LatestPayload = json.RawMessage(payload.String)
	}
	return &w, nil
}

func newRoutingToken() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
