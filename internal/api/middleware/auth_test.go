package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apiContext "hookfan/internal/api/context"
	"hookfan/internal/platform/auth"
	"hookfan/internal/platform/config"
)

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := auth.NewTokenService(config.JWTConfig{Secret: "test-secret", TokenTTL: time.Hour})
	m := NewAuthMiddleware(tokenSvc)

	var gotClaims *auth.Claims
	handler := m.Handle(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = r.Context().Value(apiContext.Claims).(*auth.Claims)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tokenSvc.GenerateToken("usr_123", "ann@example.com")
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if gotClaims == nil || gotClaims.UserID != "usr_123" {
			t.Errorf("Expected claims in context, got %+v", gotClaims)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rr.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rr := httptest.NewRecorder()
		handler(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rr.Code)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks", nil)
		req.Header.Set("Authorization", "Bearer not-a-real-token")
		rr := httptest.NewRecorder()
		handler(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rr.Code)
		}
	})
}
