package handlers

import (
	"encoding/json"
	"net/http"

	"hookfan/internal/pkg/errors"
	"hookfan/internal/platform/models"
	"hookfan/internal/platform/repositories"
)

// TokenHandler stores provider credentials for the tabular integration.
// The OAuth exchange that produces them happens outside this service.
type TokenHandler struct {
	tokenRepo *repositories.ProviderTokenRepository
}

func NewTokenHandler(tokenRepo *repositories.ProviderTokenRepository) *TokenHandler {
	return &TokenHandler{tokenRepo: tokenRepo}
}

func (h *TokenHandler) SetTabularToken(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var req struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresAt    int64  `json:"expires_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "access_token required", nil)
		return
	}

	token := &models.ProviderToken{
		UserID:       claims.UserID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := h.tokenRepo.Upsert(token); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store token", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Provider connected"})
}
