package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"hookfan/internal/engine/flatten"
	"hookfan/internal/pkg/errors"
	"hookfan/internal/platform/repositories"
)

// EventDispatcher is the delivery pipeline as seen from the ingress
// boundary. Implemented by delivery.Dispatcher.
type EventDispatcher interface {
	Dispatch(webhookID string, flattened map[string]interface{}, rawPayload json.RawMessage)
}

// IngressHandler is the public receive endpoint. It acknowledges the sender
// as soon as the payload snapshot is stored; destination delivery happens in
// the background and its outcome is never reported to the sender.
type IngressHandler struct {
	webhookRepo *repositories.WebhookRepository
	dispatcher  EventDispatcher
}

func NewIngressHandler(webhookRepo *repositories.WebhookRepository, dispatcher EventDispatcher) *IngressHandler {
	return &IngressHandler{webhookRepo: webhookRepo, dispatcher: dispatcher}
}

func (h *IngressHandler) Receive(w http.ResponseWriter, r *http.Request) {
	userID := paramFrom(r, "user_id")
	token := paramFrom(r, "token")

	webhook, err := h.webhookRepo.GetByToken(userID, token)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to read request body", nil)
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Body must be a JSON object", nil)
		return
	}

	if err := h.webhookRepo.UpdateLatestPayload(webhook.ID, body); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store payload", nil)
		return
	}

	log.Info().Str("webhook_id", webhook.ID).Str("name", webhook.Name).Msg("webhook received")

	flattened := flatten.Flatten(payload)
	go h.dispatcher.Dispatch(webhook.ID, flattened, body)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Webhook received",
		"webhook_id": webhook.ID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
