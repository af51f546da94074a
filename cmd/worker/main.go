package main

import (
	"flag"
	"log"
	"time"

	"hookfan/internal/pkg/logger"
	"hookfan/internal/platform/config"
	"hookfan/internal/platform/database"
	"hookfan/internal/platform/repositories"
	"hookfan/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	logRepo := repositories.NewDeliveryLogRepository(db)

	maxAge := cfg.Retention.MaxLogAge
	if maxAge == 0 {
		maxAge = 30 * 24 * time.Hour
	}
	interval := cfg.Retention.SweepInterval
	if interval == 0 {
		interval = time.Hour
	}

	log.Printf("Starting retention worker (max age %v, every %v)", maxAge, interval)

	// Sweep once at startup so a restart never defers pruning by a full
	// interval.
	if err := workers.PruneDeliveryLogs(logRepo, maxAge); err != nil {
		log.Printf("Error pruning delivery logs: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := workers.PruneDeliveryLogs(logRepo, maxAge); err != nil {
			log.Printf("Error pruning delivery logs: %v", err)
		}
	}
}
