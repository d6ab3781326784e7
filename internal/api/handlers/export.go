package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{exportService: services.NewExportService()}
}

// ExportLineups returns the posted lineups as a CSV attachment.
func (h *ExportHandler) ExportLineups(c *gin.Context) {
	var req struct {
		Lineups []models.Lineup `json:"lineups" binding:"required,min=1,max=150"`
		Format  string          `json:"format"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = services.ExportFormatFanDuel
	}

	data, err := h.exportService.ExportLineups(req.Lineups, format)
	if err != nil {
		utils.SendValidationError(c, "Failed to export lineups", err.Error())
		return
	}

	fileName := fmt.Sprintf("lineups_%s_%d.csv", format, len(req.Lineups))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Data(http.StatusOK, "text/csv", data)
}
