package repositories

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"hookfan/internal/platform/models"
)

type MappingRepository struct {
	db *sql.DB
}

func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) ListByDestination(destinationID string) ([]*models.FieldMapping, error) {
	query := `
		SELECT id, destination_id, source_field, target_field, created_at
		FROM field_mappings WHERE destination_id = ? ORDER BY created_at
	`
	rows, err := r.db.Query(query, destinationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*models.FieldMapping
	for rows.Next() {
		var m models.FieldMapping
		if err := rows.Scan(&m.ID, &m.DestinationID, &m.SourceField, &m.TargetField, &m.CreatedAt); err != nil {
			return nil, err
		}
		mappings = append(mappings, &m)
	}
	return mappings, rows.Err()
}

// Replace swaps the destination's mapping set wholesale. Entries with a
// blank source field are dropped here so they never reach the resolver.
func (r *MappingRepository) Replace(destinationID string, mappings []*models.FieldMapping) ([]*models.FieldMapping, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM field_mappings WHERE destination_id = ?`, destinationID); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	var saved []*models.FieldMapping
	for _, m := range mappings {
		if strings.TrimSpace(m.SourceField) == "" {
			continue
		}
		m.ID = "map_" + uuid.NewString()
		m.DestinationID = destinationID
		m.CreatedAt = now

		_, err := tx.Exec(`INSERT INTO field_mappings (id, destination_id, source_field, target_field, created_at) VALUES (?, ?, ?, ?, ?)`,
			m.ID, m.DestinationID, m.SourceField, m.TargetField, m.CreatedAt)
		if err != nil {
			return nil, err
		}
		saved = append(saved, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}
