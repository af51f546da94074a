package handlers

import (
	"encoding/json"
	"net/http"

	"hookfan/internal/pkg/errors"
	"hookfan/internal/platform/models"
	"hookfan/internal/platform/repositories"
)

type DestinationHandler struct {
	webhookRepo *repositories.WebhookRepository
	destRepo    *repositories.DestinationRepository
}

func NewDestinationHandler(webhookRepo *repositories.WebhookRepository, destRepo *repositories.DestinationRepository) *DestinationHandler {
	return &DestinationHandler{webhookRepo: webhookRepo, destRepo: destRepo}
}

func (h *DestinationHandler) ListForWebhook(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	webhookID := paramFrom(r, "webhook_id")

	webhook, err := h.webhookRepo.GetByID(webhookID, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	dests, err := h.destRepo.ListByWebhook(webhookID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list destinations", nil)
		return
	}
	if dests == nil {
		dests = []*models.Destination{}
	}

	writeJSON(w, http.StatusOK, dests)
}

func (h *DestinationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req struct {
		WebhookID string          `json:"webhook_id"`
		Type      string          `json:"type"`
		Config    json.RawMessage `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.WebhookID == "" || req.Type == "" || len(req.Config) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "webhook_id, type and config required", nil)
		return
	}

	destType := models.DestinationType(req.Type)
	parsed, err := models.ParseDestinationConfig(destType, req.Config)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	webhook, err := h.webhookRepo.GetByID(req.WebhookID, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	dest := &models.Destination{
		WebhookID: req.WebhookID,
		Type:      destType,
		RawConfig: req.Config,
		Config:    parsed,
	}
	if err := h.destRepo.Create(dest); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create destination", nil)
		return
	}

	writeJSON(w, http.StatusCreated, dest)
}

func (h *DestinationHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramFrom(r, "destination_id")

	var req struct {
		Enabled *bool           `json:"enabled"`
		Config  json.RawMessage `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Enabled == nil && len(req.Config) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No fields to update", nil)
		return
	}

	dest, err := h.destRepo.GetByIDForUser(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dest == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Destination not found", nil)
		return
	}

	if len(req.Config) > 0 {
		if _, err := models.ParseDestinationConfig(dest.Type, req.Config); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
			return
		}
		if err := h.destRepo.UpdateConfig(id, req.Config); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update destination", nil)
			return
		}
	}

	if req.Enabled != nil {
		if err := h.destRepo.UpdateEnabled(id, *req.Enabled); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update destination", nil)
			return
		}
	}

	updated, err := h.destRepo.GetByIDForUser(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DestinationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramFrom(r, "destination_id")

	dest, err := h.destRepo.GetByIDForUser(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if dest == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Destination not found", nil)
		return
	}

	if err := h.destRepo.Delete(id); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete destination", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Destination deleted"})
}
