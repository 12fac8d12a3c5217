package handlers

import (
	"fmt"
	"net/http"

	"github.com/alimgiray/contribboard/internal/models"
	"github.com/alimgiray/contribboard/internal/repositories"
	"github.com/alimgiray/contribboard/internal/services"
	"github.com/alimgiray/contribboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	snapshotRepo  *repositories.SnapshotRepository
	mergeService  *services.MergeService
	exportService *services.ExportService
	coreTeam      []string
	alumni        []string
}

func NewLeaderboardHandler(
	snapshotRepo *repositories.SnapshotRepository,
	mergeService *services.MergeService,
	exportService *services.ExportService,
	coreTeam, alumni []string,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		snapshotRepo:  snapshotRepo,
		mergeService:  mergeService,
		exportService: exportService,
		coreTeam:      coreTeam,
		alumni:        alumni,
	}
}

// Leaderboard returns the combined directory merged from the persisted
// period snapshots
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	directory, err := h.loadDirectory()
	if err != nil {
		logger.WithError(err).Error("Failed to build leaderboard directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}

	c.JSON(http.StatusOK, directory)
}

// RecentActivities returns the chronological activity feed
func (h *LeaderboardHandler) RecentActivities(c *gin.Context) {
	feed, err := h.snapshotRepo.LoadRecentActivities()
	if err != nil {
		logger.WithError(err).Error("Failed to load recent activities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recent activities"})
		return
	}
	if feed == nil {
		feed = &models.RecentActivityFeed{}
	}

	c.JSON(http.StatusOK, feed)
}

// Export streams the merged directory as an XLSX workbook
func (h *LeaderboardHandler) Export(c *gin.Context) {
	directory, err := h.loadDirectory()
	if err != nil {
		logger.WithError(err).Error("Failed to build leaderboard directory for export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}

	workbook, err := h.exportService.LeaderboardWorkbook(directory)
	if err != nil {
		logger.WithError(err).Error("Failed to build export workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("leaderboard-%s.xlsx", directory.UpdatedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		logger.WithError(err).Error("Failed to write export workbook")
	}
}

func (h *LeaderboardHandler) loadDirectory() (*models.Directory, error) {
	var snapshots []*models.Snapshot
	for _, name := range []string{"week", "month", "year"} {
		snapshot, err := h.snapshotRepo.Load(name)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return h.mergeService.MergeSnapshots(snapshots, h.coreTeam, h.alumni), nil
}
