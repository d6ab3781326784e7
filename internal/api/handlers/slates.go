package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/providers"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/metrics"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

// maxUploadBytes bounds an uploaded player CSV.
const maxUploadBytes = 8 << 20

type SlateHandler struct {
	store     *services.SlateStore
	analyzer  *services.NewsAnalyzer
	refresher *services.NewsRefreshScheduler
	provider  *providers.FanDuelProvider
	logger    *logrus.Logger
}

func NewSlateHandler(store *services.SlateStore, analyzer *services.NewsAnalyzer, refresher *services.NewsRefreshScheduler, logger *logrus.Logger) *SlateHandler {
	return &SlateHandler{
		store:     store,
		analyzer:  analyzer,
		refresher: refresher,
		provider:  providers.NewFanDuelProvider(),
		logger:    logger,
	}
}

type createSlateRequest struct {
	Name     string          `json:"name"`
	NewsMode models.NewsMode `json:"news_mode"`
	Players  []models.Player `json:"players"`
}

// CreateSlate accepts either a multipart upload (file, name, news_mode) or a JSON body
// with players, runs news analysis for the requested mode, and stores the pool.
func (h *SlateHandler) CreateSlate(c *gin.Context) {
	var req createSlateRequest

	if c.ContentType() == "multipart/form-data" {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.SendValidationError(c, "A player CSV is required", err.Error())
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			utils.SendValidationError(c, "Could not read uploaded file", err.Error())
			return
		}
		defer file.Close()

		req.Players, err = h.provider.ParsePlayers(file)
		if err != nil {
			respondError(c, err, "Could not import players")
			return
		}
		req.Name = c.PostForm("name")
		if req.Name == "" {
			req.Name = fileHeader.Filename
		}
		req.NewsMode = models.NewsMode(c.PostForm("news_mode"))
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if req.NewsMode == "" {
		req.NewsMode = models.NewsModeAuto
	}
	if !validNewsMode(req.NewsMode) {
		utils.SendValidationError(c, "Invalid news mode", fmt.Sprintf("unknown news_mode %q", req.NewsMode))
		return
	}
	if err := normalizePlayers(req.Players); err != nil {
		utils.SendValidationError(c, "Invalid player", err.Error())
		return
	}

	players := h.analyzer.Analyze(req.Players, req.NewsMode)
	slate, err := h.store.CreateSlate(c.Request.Context(), req.Name, req.NewsMode, players)
	if err != nil {
		respondError(c, err, "Failed to create slate")
		return
	}
	metrics.RecordPlayersImported(len(players))

	utils.SendCreated(c, slate)
}

func (h *SlateHandler) ListSlates(c *gin.Context) {
	mode := models.NewsMode(c.Query("news_mode"))
	if mode != "" && !validNewsMode(mode) {
		utils.SendValidationError(c, "Invalid news mode", fmt.Sprintf("unknown news_mode %q", mode))
		return
	}

	slates, err := h.store.ListSlates(c.Request.Context(), mode)
	if err != nil {
		respondError(c, err, "Failed to list slates")
		return
	}
	utils.SendSuccessWithMeta(c, slates, &utils.Meta{Total: int64(len(slates))})
}

func (h *SlateHandler) GetSlate(c *gin.Context) {
	slate, err := h.store.GetSlate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Slate not found")
		return
	}
	utils.SendSuccess(c, slate)
}

// UpdatePlayer applies lock, exclusion, projection and exposure edits to one player.
func (h *SlateHandler) UpdatePlayer(c *gin.Context) {
	var update models.PlayerUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	player, err := h.store.UpdatePlayer(c.Request.Context(), c.Param("id"), c.Param("playerId"), update)
	if err != nil {
		respondError(c, err, "Failed to update player")
		return
	}
	utils.SendSuccess(c, player)
}

type refreshNewsRequest struct {
	NewsMode models.NewsMode `json:"news_mode"`
}

// RefreshNews re-runs news analysis on a stored slate. The slate's own mode is used
// unless the body names another one.
func (h *SlateHandler) RefreshNews(c *gin.Context) {
	var req refreshNewsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendValidationError(c, "Invalid request body", err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	slateID := c.Param("id")

	mode := req.NewsMode
	if mode == "" {
		slate, err := h.store.GetSlate(ctx, slateID)
		if err != nil {
			respondError(c, err, "Slate not found")
			return
		}
		mode = slate.NewsMode
	}
	if !validNewsMode(mode) {
		utils.SendValidationError(c, "Invalid news mode", fmt.Sprintf("unknown news_mode %q", mode))
		return
	}

	if err := h.refresher.RefreshSlate(ctx, slateID, mode); err != nil {
		metrics.RecordNewsRefresh("error")
		respondError(c, err, "Failed to refresh news")
		return
	}
	metrics.RecordNewsRefresh("success")

	slate, err := h.store.GetSlate(ctx, slateID)
	if err != nil {
		respondError(c, err, "Slate not found")
		return
	}
	utils.SendSuccess(c, slate)
}

func (h *SlateHandler) DeleteSlate(c *gin.Context) {
	if err := h.store.DeleteSlate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete slate")
		return
	}
	c.Status(http.StatusNoContent)
}

func validNewsMode(mode models.NewsMode) bool {
	switch mode {
	case models.NewsModeAuto, models.NewsModeSuggested, models.NewsModeOff:
		return true
	}
	return false
}

// normalizePlayers checks JSON-supplied players and canonicalizes their positions in place.
func normalizePlayers(players []models.Player) error {
	for i, p := range players {
		if p.ID == "" {
			return fmt.Errorf("player at index %d has no id", i)
		}
		pos, ok := models.ParsePosition(string(p.Position))
		if !ok {
			return fmt.Errorf("player %s has unknown position %q", p.ID, p.Position)
		}
		players[i].Position = pos
	}
	return nil
}
