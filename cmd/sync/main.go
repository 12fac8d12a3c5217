package main

import (
	"context"
	"time"

	"github.com/alimgiray/contribboard/internal/repositories"
	"github.com/alimgiray/contribboard/internal/services"
	"github.com/alimgiray/contribboard/pkg/config"
	"github.com/alimgiray/contribboard/pkg/database"
	"github.com/alimgiray/contribboard/pkg/logger"
)

func main() {
	logger.Init()

	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	if cfg.GitHub.Token == "" {
		logger.Fatalf("GITHUB_TOKEN is required")
	}
	if cfg.GitHub.Org == "" {
		logger.Fatalf("GITHUB_ORG is required")
	}

	// Initialize database for the run ledger
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	snapshotRepo := repositories.NewSnapshotRepository(cfg.Sync.DataDir)
	syncRunRepo := repositories.NewSyncRunRepository(database.DB)

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

	// One batch pass per invocation; a failure exits non-zero and leaves
	// previously persisted snapshots untouched
	if err := syncService.Run(context.Background()); err != nil {
		logger.Fatalf("Sync run failed: %v", err)
	}
}
