package handlers

import (
	"net/http"
	"time"

	"github.com/alimgiray/contribboard/internal/repositories"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	syncRunRepo *repositories.SyncRunRepository
}

func NewHealthHandler(syncRunRepo *repositories.SyncRunRepository) *HealthHandler {
	return &HealthHandler{syncRunRepo: syncRunRepo}
}

// HealthCheck reports service liveness and the latest pipeline run
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	data := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if latest, err := h.syncRunRepo.GetLatest(); err == nil && latest != nil {
		data["last_sync"] = gin.H{
			"mode":       latest.Mode,
			"status":     latest.Status,
			"started_at": latest.StartedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, data)
}
