package main

import (
	"log"
	"time"

	"github.com/vbonduro/courtlog/internal/config"
	"github.com/vbonduro/courtlog/internal/db"
	"github.com/vbonduro/courtlog/internal/logging"
	"github.com/vbonduro/courtlog/internal/photostore/local"
	"github.com/vbonduro/courtlog/internal/service"
	"github.com/vbonduro/courtlog/internal/store"
	"github.com/vbonduro/courtlog/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	loc, err := time.LoadLocation(cfg.ReportTZ)
	if err != nil {
		logger.Error("invalid reporting timezone", "tz", cfg.ReportTZ, "error", err)
		return
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	photos, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	issueStore := store.NewIssueStore(database, loc, logger)
	issueService := service.NewIssueService(issueStore, photos, loc, logger)
	server := web.NewServer(issueService, photos, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
