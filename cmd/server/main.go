package main

import (
	"fmt"
	"log"
	"net/http"

	"hookfan/internal/api"
	"hookfan/internal/api/handlers"
	"hookfan/internal/api/middleware"
	"hookfan/internal/engine/delivery"
	"hookfan/internal/pkg/logger"
	"hookfan/internal/platform/auth"
	"hookfan/internal/platform/config"
	"hookfan/internal/platform/database"
	"hookfan/internal/platform/models"
	"hookfan/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)
	middleware.ConfigureRateLimits(cfg.RateLimit)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)
	destRepo := repositories.NewDestinationRepository(db)
	mappingRepo := repositories.NewMappingRepository(db)
	logRepo := repositories.NewDeliveryLogRepository(db)
	tokenRepo := repositories.NewProviderTokenRepository(db)

	// Delivery engine
	adapters := map[models.DestinationType]delivery.Adapter{
		models.DestinationTabular:    delivery.NewTabularSheetAdapter(tokenRepo, cfg.Providers.TabularBaseURL, cfg.Delivery.HTTPTimeout),
		models.DestinationRelational: delivery.NewRelationalUpsertAdapter(cfg.Delivery.HTTPTimeout),
	}
	dispatcher := delivery.NewDispatcher(destRepo, mappingRepo, logRepo, adapters,
		delivery.TimerScheduler{}, cfg.Delivery.RetryDelay)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)

	// Handlers
	deps := &api.Dependencies{
		AuthHandler:        handlers.NewAuthHandler(userRepo, tokenSvc),
		WebhookHandler:     handlers.NewWebhookHandler(webhookRepo),
		DestinationHandler: handlers.NewDestinationHandler(webhookRepo, destRepo),
		MappingHandler:     handlers.NewMappingHandler(destRepo, mappingRepo),
		LogHandler:         handlers.NewLogHandler(webhookRepo, logRepo),
		IngressHandler:     handlers.NewIngressHandler(webhookRepo, dispatcher),
		TokenHandler:       handlers.NewTokenHandler(tokenRepo),
		HealthHandler:      handlers.NewHealthHandler(db),
		AuthMiddleware:     middleware.NewAuthMiddleware(tokenSvc),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
