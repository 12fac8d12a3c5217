package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/contribboard/internal/handlers"
	"github.com/alimgiray/contribboard/internal/repositories"
	"github.com/alimgiray/contribboard/internal/services"
	"github.com/alimgiray/contribboard/internal/workers"
	"github.com/alimgiray/contribboard/pkg/config"
	"github.com/alimgiray/contribboard/pkg/database"
	"github.com/alimgiray/contribboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.Init()

	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	gin.SetMode(cfg.Server.Mode)

	// Initialize database for the run ledger
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	snapshotRepo := repositories.NewSnapshotRepository(cfg.Sync.DataDir)
	syncRunRepo := repositories.NewSyncRunRepository(database.DB)
	mergeService := services.NewMergeService()
	exportService := services.NewExportService()

	// Initialize router
	router := gin.Default()
	setupRoutes(router, snapshotRepo, syncRunRepo, mergeService, exportService)

	// Start the periodic refresh worker when configured
	workerManager := workers.NewWorkerManager()
	if cfg.Sync.IntervalHours > 0 && cfg.GitHub.Token != "" {
		githubService := services.NewGitHubService(
			cfg.GitHub.Token,
			cfg.Sync.SearchWindowDays,
			time.Duration(cfg.Sync.SearchDelayMillis)*time.Millisecond,
		)
		roleService := services.NewRoleService(cfg.Team.Members, cfg.Team.Alumni)
		syncService := services.NewSyncService(
			githubService,
			services.NewScoringService(),
			services.NewAggregateService(roleService),
			services.NewProjectionService(),
			snapshotRepo,
			syncRunRepo,
			cfg.GitHub.Org,
			cfg.Team.HiddenRoles,
			cfg.Sync.DetailBatchSize,
			time.Duration(cfg.Sync.BatchDelayMillis)*time.Millisecond,
		)
		interval := time.Duration(cfg.Sync.IntervalHours) * time.Hour
		workerManager.Add(workers.NewSyncWorker("sync-1", syncService, interval))
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	logger.Info("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	snapshotRepo *repositories.SnapshotRepository,
	syncRunRepo *repositories.SyncRunRepository,
	mergeService *services.MergeService,
	exportService *services.ExportService,
) {
	cfg := config.AppConfig

	// Initialize handlers
	leaderboardHandler := handlers.NewLeaderboardHandler(
		snapshotRepo, mergeService, exportService,
		cfg.Team.Members, cfg.Team.Alumni,
	)
	healthHandler := handlers.NewHealthHandler(syncRunRepo)

	api := router.Group("/api")
	{
		api.GET("/leaderboard", leaderboardHandler.Leaderboard)
		api.GET("/leaderboard/export", leaderboardHandler.Export)
		api.GET("/activities/recent", leaderboardHandler.RecentActivities)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
