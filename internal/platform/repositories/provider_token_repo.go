package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"hookfan/internal/platform/models"
)

type ProviderTokenRepository struct {
	db *sql.DB
}

func NewProviderTokenRepository(db *sql.DB) *ProviderTokenRepository {
	return &ProviderTokenRepository{db: db}
}

func (r *ProviderTokenRepository) GetByUser(userID string) (*models.ProviderToken, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token, expires_at, created_at, updated_at
		FROM provider_tokens WHERE user_id = ?
	`
	row := r.db.QueryRow(query, userID)

	var t models.ProviderToken
	var refresh sql.NullString
	var expires sql.NullInt64
	err := row.Scan(&t.ID, &t.UserID, &t.AccessToken, &refresh, &expires, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.RefreshToken = refresh.String
	if expires.Valid {
		t.ExpiresAt = expires.Int64
	}
	return &t, nil
}

// TokenForWebhook resolves the credentials of the webhook's owner. Used by
// the tabular delivery adapter, which fetches credentials fresh on every
// write instead of holding a shared client.
func (r *ProviderTokenRepository) TokenForWebhook(webhookID string) (*models.ProviderToken, error) {
	query := `
		SELECT t.id, t.user_id, t.access_token, t.refresh_token, t.expires_at, t.created_at, t.updated_at
		FROM provider_tokens t
		JOIN webhooks w ON t.user_id = w.user_id
		WHERE w.id = ?
	`
	row := r.db.QueryRow(query, webhookID)

	var t models.ProviderToken
	var refresh sql.NullString
	var expires sql.NullInt64
	err := row.Scan(&t.ID, &t.UserID, &t.AccessToken, &refresh, &expires, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.RefreshToken = refresh.String
	if expires.Valid {
		t.ExpiresAt = expires.Int64
	}
	return &t, nil
}

// Upsert stores or replaces the single token row per user.
func (r *ProviderTokenRepository) Upsert(token *models.ProviderToken) error {
	now := time.Now().Unix()
	existing, err := r.GetByUser(token.UserID)
	if err != nil {
		return err
	}

	if existing == nil {
		token.ID = "tok_" + uuid.NewString()
		token.CreatedAt = now
		token.UpdatedAt = now
		query := `
			INSERT INTO provider_tokens (id, user_id, access_token, refresh_token, expires_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.db.Exec(query, token.ID, token.UserID, token.AccessToken,
			nullString(token.RefreshToken), nullInt(token.ExpiresAt), token.CreatedAt, token.UpdatedAt)
		return err
	}

	token.ID = existing.ID
	token.UpdatedAt = now
	query := `
		UPDATE provider_tokens SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE user_id = ?
	`
	_, err = r.db.Exec(query, token.AccessToken, nullString(token.RefreshToken),
		nullInt(token.ExpiresAt), token.UpdatedAt, token.UserID)
	return err
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
