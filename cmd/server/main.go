package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/vocabflash/internal/api"
	"github.com/vytor/vocabflash/internal/config"
	"github.com/vytor/vocabflash/internal/db"
	"github.com/vytor/vocabflash/internal/jobs"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/repository/sqlite"
	"github.com/vytor/vocabflash/internal/services"
	"github.com/vytor/vocabflash/internal/worker"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration:\n%v", err)
		os.Exit(1)
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(
		logger.WithLevel(level),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("VocabFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("stats_worker_count=%d", cfg.StatsWorkerCount)
	log.Debug("stats_queue_size=%d", cfg.StatsQueueSize)
	log.Debug("default_settings=%+v", cfg.DefaultSettings())
	log.Debug("max_sessions=%d", cfg.MaxSessions)
	log.Debug("session_idle_timeout=%v", cfg.SessionIdleTimeout)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	deckRepo := sqlite.NewDeckRepository(database.DB)
	itemRepo := sqlite.NewItemRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)
	settingsRepo := sqlite.NewSettingsRepository(database.DB)

	statsPool := worker.NewPool(cfg.StatsWorkerCount, cfg.StatsQueueSize)
	statsQueue := jobs.NewWorkerQueue(statsPool, statsRepo)

	srv := &api.Server{
		DB:           database,
		DeckService:  services.NewDeckService(deckRepo, itemRepo, statsRepo, settingsRepo, cfg.DefaultSettings()),
		StudyService: services.NewStudyService(deckRepo, itemRepo, settingsRepo, statsQueue, cfg.DefaultSettings(), services.StudyConfig{
			MaxSessions: cfg.MaxSessions,
			IdleTimeout: cfg.SessionIdleTimeout,
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	statsPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// HTTP must stop before the statistics pool closes.
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("draining statistics pool (%d queued)", statsPool.QueueSize())
	statsPool.Stop()

	log.Info("===========================================")
	log.Info("VocabFlash Server Stopped")
	log.Info("===========================================")
}
