package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayash-Bera/medquery/internal/api"
	"github.com/Ayash-Bera/medquery/internal/api/handlers"
	"github.com/Ayash-Bera/medquery/internal/config"
	"github.com/Ayash-Bera/medquery/internal/container"
	"github.com/Ayash-Bera/medquery/internal/database"
	"github.com/Ayash-Bera/medquery/internal/health"
	"github.com/Ayash-Bera/medquery/internal/medical"
	"github.com/Ayash-Bera/medquery/internal/middleware"
	"github.com/Ayash-Bera/medquery/internal/migration"
	"github.com/Ayash-Bera/medquery/internal/models"
	"github.com/Ayash-Bera/medquery/internal/repository"
	"github.com/Ayash-Bera/medquery/internal/services"
	"github.com/Ayash-Bera/medquery/internal/session"
	"github.com/Ayash-Bera/medquery/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	utils.SetLogLevel(logger, cfg.Log.Level)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	medicalService, provider, err := medical.NewServiceFromConfig(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize medical client")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Database.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}
	defer dbManager.Close()

	var (
		history    *services.HistoryService
		recorder   container.Recorder
		healthRepo models.SystemHealthRepository
	)
	if cfg.HistoryEnabled() {
		if err := migration.NewRunner(dbManager, logger).RunMigrations(cfg.Database.MigrationsPath); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}

		repos := repository.NewRepositoryManager(dbManager.DB)
		healthRepo = repos.SystemHealth
		history = services.NewHistoryService(repos.QueryRecord, database.NewCache(dbManager.Redis, logger), provider, logger)
		recorder = history
	} else {
		logger.Info("DATABASE_URL not set, query history disabled")
	}

	registry := session.NewRegistry(func(sessionID string) *container.Container {
		return container.New(medicalService, logger, container.Options{
			SessionID:  sessionID,
			LatestOnly: cfg.UI.LatestOnly,
			Recorder:   recorder,
		})
	}, cfg.UI.SessionTTL, logger)

	checker := health.NewHealthChecker(dbManager, healthRepo, medicalService, logger)
	limiter := middleware.NewRateLimiter(cfg.UI.RateLimit)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go registry.Run(ctx, time.Minute)
	go limiter.Run(ctx)
	go checker.PeriodicHealthCheck(ctx, cfg.Health.Interval)

	handler := handlers.NewQueryHandler(registry, history, checker, logger)
	router := api.NewRouter(handler, limiter, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).WithField("endpoint", cfg.QueryURL()).Info("Server running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
