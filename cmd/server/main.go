package main

import (
	"fmt"
	"log"
	"net/http"

	"structwatch/internal/api"
	"structwatch/internal/api/handlers"
	"structwatch/internal/pkg/logger"
	"structwatch/internal/platform/config"
	"structwatch/internal/platform/database"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	deps := &api.Dependencies{
		HealthHandler: handlers.NewHealthHandler(db),
		StatusHandler: handlers.NewStatusHandler(db, cfg.Sync),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
