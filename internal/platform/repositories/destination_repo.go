package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"hookfan/internal/platform/models"
)

type DestinationRepository struct {
	db *sql.DB
}

func NewDestinationRepository(db *sql.DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

func (r *DestinationRepository) Create(dest *models.Destination) error {
	dest.ID = "dst_" + uuid.NewString()
	dest.Enabled = true
	dest.CreatedAt = time.Now().Unix()
	dest.UpdatedAt = dest.CreatedAt

	query := `
		INSERT INTO destinations (id, webhook_id, type, enabled, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, dest.ID, dest.WebhookID, string(dest.Type), dest.Enabled, string(dest.RawConfig), dest.CreatedAt, dest.UpdatedAt)
	return err
}

// GetByIDForUser joins through webhooks so ownership is checked in one query.
func (r *DestinationRepository) GetByIDForUser(id, userID string) (*models.Destination, error) {
	query := `
		SELECT d.id, d.webhook_id, d.type, d.enabled, d.config, d.created_at, d.updated_at
		FROM destinations d
		JOIN webhooks w ON d.webhook_id = w.id
		WHERE d.id = ? AND w.user_id = ?
	`
	return scanDestination(r.db.QueryRow(query, id, userID))
}

func (r *DestinationRepository) ListByWebhook(webhookID string) ([]*models.Destination, error) {
	query := `
		SELECT id, webhook_id, type, enabled, config, created_at, updated_at
		FROM destinations WHERE webhook_id = ? ORDER BY created_at
	`
	return r.list(query, webhookID)
}

// ListEnabledByWebhook feeds the dispatcher. Rows whose config blob no
// longer parses against the type tag are skipped rather than failing the
// whole dispatch.
func (r *DestinationRepository) ListEnabledByWebhook(webhookID string) ([]*models.Destination, error) {
	query := `
		SELECT id, webhook_id, type, enabled, config, created_at, updated_at
		FROM destinations WHERE webhook_id = ? AND enabled = 1 ORDER BY created_at
	`
	return r.list(query, webhookID)
}

func (r *DestinationRepository) list(query string, args ...interface{}) ([]*models.Destination, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dests []*models.Destination
	for rows.Next() {
		var d models.Destination
		var typ, cfg string
		if err := rows.Scan(&d.ID, &d.WebhookID, &typ, &d.Enabled, &cfg, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.Type = models.DestinationType(typ)
		d.RawConfig = json.RawMessage(cfg)
		parsed, err := models.ParseDestinationConfig(d.Type, d.RawConfig)
		if err != nil {
			continue
		}
		d.Config = parsed
		dests = append(dests, &d)
	}
	return dests, rows.Err()
}

func (r *DestinationRepository) UpdateEnabled(id string, enabled bool) error {
	_, err := r.db.Exec(`UPDATE destinations SET enabled = ?, updated_at = ? WHERE id = ?`,
		enabled, time.Now().Unix(), id)
	return err
}

func (r *DestinationRepository) UpdateConfig(id string, raw json.RawMessage) error {
	_, err := r.db.Exec(`UPDATE destinations SET config = ?, updated_at = ? WHERE id = ?`,
		string(raw), time.Now().Unix(), id)
	return err
}

// Delete removes the destination and its mappings. Delivery logs keep their
// destination reference for audit.
func (r *DestinationRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM field_mappings WHERE destination_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM destinations WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func scanDestination(row *sql.Row) (*models.Destination, error) {
	var d models.Destination
	var typ, cfg string
	err := row.Scan(&d.ID, &d.WebhookID, &typ, &d.Enabled, &cfg, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.Type = models.DestinationType(typ)
	d.RawConfig = json.RawMessage(cfg)
	if parsed, err := models.ParseDestinationConfig(d.Type, d.RawConfig); err == nil {
		d.Config = parsed
	}
	return &d, nil
}
