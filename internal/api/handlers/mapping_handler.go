package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"hookfan/internal/pkg/errors"
	"hookfan/internal/platform/models"
	"hookfan/internal/platform/repositories"
)

type MappingHandler struct {
	destRepo    *repositories.DestinationRepository
	mappingRepo *repositories.MappingRepository
}

func NewMappingHandler(destRepo *repositories.DestinationRepository, mappingRepo *repositories.MappingRepository) *MappingHandler {
	return &MappingHandler{destRepo: destRepo, mappingRepo: mappingRepo}
}

func (h *MappingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	destinationID := paramFrom(r, "destination_id")

	dest, err := h.destRepo.GetByIDForUser(destinationID, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dest == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Destination not found", nil)
		return
	}

	mappings, err := h.mappingRepo.ListByDestination(destinationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list mappings", nil)
		return
	}
	if mappings == nil {
		mappings = []*models.FieldMapping{}
	}

	writeJSON(w, http.StatusOK, mappings)
}

// Replace swaps the destination's mappings wholesale: delete all then
// insert, never merge.
func (h *MappingHandler) Replace(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	destinationID := paramFrom(r, "destination_id")

	var req struct {
		Mappings []struct {
			SourceField string `json:"source_field"`
			TargetField string `json:"target_field"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	dest, err := h.destRepo.GetByIDForUser(destinationID, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dest == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Destination not found", nil)
		return
	}

	var mappings []*models.FieldMapping
	for _, m := range req.Mappings {
		if strings.TrimSpace(m.SourceField) == "" {
			continue
		}
		mappings = append(mappings, &models.FieldMapping{
			SourceField: m.SourceField,
			TargetField: m.TargetField,
		})
	}
	if len(mappings) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "At least one mapping is required", nil)
		return
	}

	saved, err := h.mappingRepo.Replace(destinationID, mappings)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to save mappings", nil)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}
