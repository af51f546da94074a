package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "hookfan/internal/api/context"
	"hookfan/internal/api/handlers"
	"hookfan/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler        *handlers.AuthHandler
	WebhookHandler     *handlers.WebhookHandler
	DestinationHandler *handlers.DestinationHandler
	MappingHandler     *handlers.MappingHandler
	LogHandler         *handlers.LogHandler
	IngressHandler     *handlers.IngressHandler
	TokenHandler       *handlers.TokenHandler
	HealthHandler      *handlers.HealthHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Public receive endpoint; no auth, rate limited per caller.
	router.POST("/hooks/:user_id/:token",
		chain(deps.IngressHandler.Receive, middleware.RateLimit("ingress")))

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Authentication routes
	router.POST("/api/v1/auth/signup", wrap(deps.AuthHandler.Signup))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))

	authMid := deps.AuthMiddleware

	// Webhook management
	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid.Handle, middleware.RateLimit("api_write")))
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Get, authMid.Handle, middleware.RateLimit("api_read")))
	router.PATCH("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Update, authMid.Handle, middleware.RateLimit("api_write")))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid.Handle, middleware.RateLimit("api_write")))

	// Destinations
	router.GET("/api/v1/webhooks/:webhook_id/destinations",
		chain(deps.DestinationHandler.ListForWebhook, authMid.Handle, middleware.RateLimit("api_read")))
	router.POST("/api/v1/destinations",
		chain(deps.DestinationHandler.Create, authMid.Handle, middleware.RateLimit("api_write")))
	router.PATCH("/api/v1/destinations/:destination_id",
		chain(deps.DestinationHandler.Update, authMid.Handle, middleware.RateLimit("api_write")))
	router.DELETE("/api/v1/destinations/:destination_id",
		chain(deps.DestinationHandler.Delete, authMid.Handle, middleware.RateLimit("api_write")))

	// Field mappings
	router.GET("/api/v1/destinations/:destination_id/mappings",
		chain(deps.MappingHandler.List, authMid.Handle, middleware.RateLimit("api_read")))
	router.PUT("/api/v1/destinations/:destination_id/mappings",
		chain(deps.MappingHandler.Replace, authMid.Handle, middleware.RateLimit("api_write")))

	// Delivery logs
	router.GET("/api/v1/logs",
		chain(deps.LogHandler.ListForUser, authMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/webhooks/:webhook_id/logs",
		chain(deps.LogHandler.ListForWebhook, authMid.Handle, middleware.RateLimit("api_read")))

	// Provider credentials
	router.PUT("/api/v1/integrations/tabular/token",
		chain(deps.TokenHandler.SetTabularToken, authMid.Handle, middleware.RateLimit("api_write")))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
