package handlers

import (
	"net/http"
	"strconv"

	"hookfan/internal/pkg/errors"
	"hookfan/internal/platform/models"
	"hookfan/internal/platform/repositories"
)

type LogHandler struct {
	webhookRepo *repositories.WebhookRepository
	logRepo     *repositories.DeliveryLogRepository
}

func NewLogHandler(webhookRepo *repositories.WebhookRepository, logRepo *repositories.DeliveryLogRepository) *LogHandler {
	return &LogHandler{webhookRepo: webhookRepo, logRepo: logRepo}
}

func (h *LogHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	limit := limitFrom(r, 100)

	logs, err := h.logRepo.ListByUser(claims.UserID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list logs", nil)
		return
	}
	if logs == nil {
		logs = []*models.DeliveryLog{}
	}

	writeJSON(w, http.StatusOK, logs)
}

func (h *LogHandler) ListForWebhook(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	webhookID := paramFrom(r, "webhook_id")
	limit := limitFrom(r, 50)

	webhook, err := h.webhookRepo.GetByID(webhookID, claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	logs, err := h.logRepo.ListByWebhook(webhookID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list logs", nil)
		return
	}
	if logs == nil {
		logs = []*models.DeliveryLog{}
	}

	writeJSON(w, http.StatusOK, logs)
}

func limitFrom(r *http.Request, fallback int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
