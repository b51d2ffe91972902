package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/zhukovvlad/listings-go/cmd/internal/config"
	"github.com/zhukovvlad/listings-go/cmd/internal/rules"
	"github.com/zhukovvlad/listings-go/cmd/internal/server"
	"github.com/zhukovvlad/listings-go/cmd/internal/services"
	"github.com/zhukovvlad/listings-go/cmd/internal/storage"
	"github.com/zhukovvlad/listings-go/cmd/pkg/logging"

	_ "github.com/lib/pq"
)

const dbDriver = "postgres"

func main() {
	logger := logging.GetLogger()
	logger.Info("Starting Listings API...")

	if err := godotenv.Load(); err != nil {
		logger.Warnf("no .env file loaded: %v", err)
	}

	cfg := config.GetConfig()
	normalizationRules := rules.GetRules(cfg.RulesPath)

	var listingLog *storage.ListingLog
	if cfg.ListingLog.Enabled {
		conn, err := sql.Open(dbDriver, cfg.ListingLog.DSN)
		if err != nil {
			logger.Fatalf("error connecting to database: %v", err)
		}
		defer conn.Close()

		if err = conn.Ping(); err != nil {
			logger.Fatalf("error pinging database: %v", err)
		}
		logger.Info("Database connection established")

		listingLog = storage.NewListingLog(conn, logger)
		if err := listingLog.Init(context.Background()); err != nil {
			logger.Fatalf("error initializing listing log: %v", err)
		}
	}

	processing := services.NewListingProcessingService(normalizationRules, logger)
	srv := server.NewServer(logger, processing, listingLog, cfg)

	serverAddress := fmt.Sprintf("%s:%s", cfg.Listen.BindIP, cfg.Listen.Port)
	logger.Infof("Starting server on %s", serverAddress)

	if err := srv.Start(serverAddress); err != nil {
		logger.Fatalf("error starting server: %v", err)
	}
}
