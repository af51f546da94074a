package handlers

import (
	"encoding/json"
	"net/http"

	"hookfan/internal/pkg/errors"
	"hookfan/internal/platform/models"
	"hookfan/internal/platform/repositories"
)

type WebhookHandler struct {
	webhookRepo *repositories.WebhookRepository
}

func NewWebhookHandler(webhookRepo *repositories.WebhookRepository) *WebhookHandler {
	return &WebhookHandler{webhookRepo: webhookRepo}
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Webhook name required", nil)
		return
	}

	webhook := &models.Webhook{
		UserID: claims.UserID,
		Name:   req.Name,
	}
	if err := h.webhookRepo.Create(webhook); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create webhook", nil)
		return
	}

	writeJSON(w, http.StatusCreated, webhook)
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	webhooks, err := h.webhookRepo.ListByUser(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list webhooks", nil)
		return
	}
	if webhooks == nil {
		webhooks = []*models.Webhook{}
	}

	writeJSON(w, http.StatusOK, webhooks)
}

func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramFrom(r, "webhook_id")

	webhook, err := h.webhookRepo.GetByID(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, webhook)
}

func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramFrom(r, "webhook_id")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Webhook name required", nil)
		return
	}

	ok, err := h.webhookRepo.UpdateName(id, claims.UserID, req.Name)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update webhook", nil)
		return
	}
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	webhook, err := h.webhookRepo.GetByID(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, webhook)
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id := paramFrom(r, "webhook_id")

	ok, err := h.webhookRepo.Delete(id, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete webhook", nil)
		return
	}
	if !ok {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Webhook deleted"})
}
