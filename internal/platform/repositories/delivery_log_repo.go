package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"hookfan/internal/platform/models"
)

type DeliveryLogRepository struct {
	db *sql.DB
}

func NewDeliveryLogRepository(db *sql.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

func (r *DeliveryLogRepository) Create(entry *models.DeliveryLog) error {
	entry.ID = "log_" + uuid.NewString()
	entry.CreatedAt = time.Now().Unix()

	query := `
		INSERT INTO delivery_logs (id, webhook_id, destination_id, payload, status, error_message, retry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		entry.ID, entry.WebhookID, nullString(entry.DestinationID), string(entry.Payload),
		entry.Status, nullString(entry.ErrorMessage), entry.RetryCount, entry.CreatedAt)
	return err
}

// PatchRetryOutcome is the single allowed update to a log row: the retry
// result for the attempt that created it. A success clears the error.
func (r *DeliveryLogRepository) PatchRetryOutcome(id, status, errorMessage string) error {
	query := `UPDATE delivery_logs SET status = ?, error_message = ?, retry_count = 1 WHERE id = ?`
	_, err := r.db.Exec(query, status, nullString(errorMessage), id)
	return err
}

func (r *DeliveryLogRepository) GetByID(id string) (*models.DeliveryLog, error) {
	query := `
		SELECT id, webhook_id, destination_id, payload, status, error_message, retry_count, created_at
		FROM delivery_logs WHERE id = ?
	`
	row := r.db.QueryRow(query, id)

	var l models.DeliveryLog
	var destID, errMsg sql.NullString
	var payload string
	err := row.Scan(&l.ID, &l.WebhookID, &destID, &payload, &l.Status, &errMsg, &l.RetryCount, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.Payload = []byte(payload)
	l.DestinationID = destID.String
	l.ErrorMessage = errMsg.String
	return &l, nil
}

func (r *DeliveryLogRepository) ListByWebhook(webhookID string, limit int) ([]*models.DeliveryLog, error) {
	query := `
		SELECT l.id, l.webhook_id, l.destination_id, l.payload, l.status, l.error_message, l.retry_count, l.created_at,
		       COALESCE(d.type, '')
		FROM delivery_logs l
		LEFT JOIN destinations d ON l.destination_id = d.id
		WHERE l.webhook_id = ?
		ORDER BY l.created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, webhookID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLogRows(rows, false)
}

func (r *DeliveryLogRepository) ListByUser(userID string, limit int) ([]*models.DeliveryLog, error) {
	query := `
		SELECT l.id, l.webhook_id, l.destination_id, l.payload, l.status, l.error_message, l.retry_count, l.created_at,
		       COALESCE(d.type, ''), w.name
		FROM delivery_logs l
		JOIN webhooks w ON l.webhook_id = w.id
		LEFT JOIN destinations d ON l.destination_id = d.id
		WHERE w.user_id = ?
		ORDER BY l.created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLogRows(rows, true)
}

// DeleteOlderThan prunes by age only. Orphaned rows (deleted destination)
// are retained until they age out.
func (r *DeliveryLogRepository) DeleteOlderThan(cutoff int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM delivery_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanLogRows(rows *sql.Rows, withWebhookName bool) ([]*models.DeliveryLog, error) {
	var logs []*models.DeliveryLog
	for rows.Next() {
		var l models.DeliveryLog
		var destID, errMsg sql.NullString
		var payload string

		dest := []interface{}{&l.ID, &l.WebhookID, &destID, &payload, &l.Status, &errMsg, &l.RetryCount, &l.CreatedAt, &l.DestinationType}
		if withWebhookName {
			dest = append(dest, &l.WebhookName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		l.Payload = []byte(payload)
		l.DestinationID = destID.String
		l.ErrorMessage = errMsg.String
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
