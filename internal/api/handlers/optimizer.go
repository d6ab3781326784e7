package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/optimizer"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/config"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/logger"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/metrics"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

// ProgressPublisher receives generator progress, normally the websocket hub.
type ProgressPublisher interface {
	PublishProgress(optimizer.Progress)
}

// ResultCache stores finished deterministic batches, normally services.ResultCache.
type ResultCache interface {
	Cacheable(models.Settings) bool
	Get(ctx context.Context, key string) (*optimizer.Result, error)
	Set(ctx context.Context, key string, result *optimizer.Result) error
}

type OptimizerHandler struct {
	store     *services.SlateStore
	analyzer  *services.NewsAnalyzer
	cache     ResultCache
	publisher ProgressPublisher
	config    *config.Config
	logger    *logrus.Logger
}

func NewOptimizerHandler(store *services.SlateStore, analyzer *services.NewsAnalyzer, cache ResultCache, publisher ProgressPublisher, cfg *config.Config, logger *logrus.Logger) *OptimizerHandler {
	return &OptimizerHandler{
		store:     store,
		analyzer:  analyzer,
		cache:     cache,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// OptimizeRequest names a pool, either a stored slate or inline players, plus settings.
// Settings fields left out of the body take the configured defaults.
type OptimizeRequest struct {
	SlateID        string          `json:"slate_id"`
	Players        []models.Player `json:"players"`
	Settings       json.RawMessage `json:"settings"`
	OptimizationID string          `json:"optimization_id"`
}

type OptimizeResponse struct {
	*optimizer.Result
	Exposures []services.PlayerExposure `json:"exposures"`
	Summary   services.PortfolioSummary `json:"summary"`
	Warnings  []string                  `json:"warnings,omitempty"`
}

type ValidateResponse struct {
	Valid       bool                        `json:"valid"`
	Errors      []string                    `json:"errors,omitempty"`
	Settings    models.Settings             `json:"settings"`
	Feasibility optimizer.FeasibilityReport `json:"feasibility"`
}

// OptimizeLineups runs one batch and returns it with exposures and a summary.
// Deterministic batches are served from and written to the result cache.
func (h *OptimizerHandler) OptimizeLineups(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	settings, err := h.resolveSettings(req.Settings)
	if err != nil {
		utils.SendValidationError(c, "Invalid optimization settings", err.Error())
		return
	}

	pool, err := h.resolvePool(c, req, settings)
	if err != nil {
		respondError(c, err, "Could not load player pool")
		return
	}

	optimizationID := req.OptimizationID
	if optimizationID == "" {
		optimizationID = uuid.New().String()
	}
	c.Set("optimization_id", optimizationID)
	log := logger.WithOptimizationContext(optimizationID, req.SlateID)

	ctx := c.Request.Context()
	cacheKey := ""
	if h.cache.Cacheable(settings) {
		cacheKey, err = services.OptimizationCacheKey(pool, settings)
		if err != nil {
			log.WithError(err).Warn("Skipping result cache")
		}
	}

	if cacheKey != "" {
		cached, err := h.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			metrics.RecordCache("hit")
			log.Info("Serving optimization from cache")
			cached.OptimizationID = optimizationID
			if h.publisher != nil {
				h.publisher.PublishProgress(optimizer.Progress{
					OptimizationID: optimizationID,
					Accepted:       len(cached.Lineups),
					Target:         cached.Requested,
					Attempts:       cached.Attempts,
					Done:           true,
				})
			}
			utils.SendSuccessWithMeta(c, buildResponse(cached), &utils.Meta{
				Total:    int64(len(cached.Lineups)),
				Cached:   true,
				Warnings: resultWarnings(cached),
			})
			return
		case errors.Is(err, utils.ErrCacheMiss):
			metrics.RecordCache("miss")
		default:
			metrics.RecordCache("error")
			log.WithError(err).Warn("Result cache unavailable")
		}
	}

	opts := []optimizer.Option{
		optimizer.WithOptimizationID(optimizationID),
		optimizer.WithLogger(log),
	}
	if h.publisher != nil {
		opts = append(opts, optimizer.WithProgress(h.publisher.PublishProgress))
	}
	result := optimizer.NewGenerator(opts...).Generate(pool, settings)

	rejections := make(map[string]int, len(result.Rejections))
	for reason, n := range result.Rejections {
		rejections[string(reason)] = n
	}
	metrics.RecordOptimization(result.Exhausted, len(result.Lineups), result.Duration.Seconds(), rejections)

	if cacheKey != "" {
		if err := h.cache.Set(ctx, cacheKey, result); err != nil {
			log.WithError(err).Warn("Failed to cache optimization result")
		}
	}

	utils.SendSuccessWithMeta(c, buildResponse(result), &utils.Meta{
		Total:    int64(len(result.Lineups)),
		Warnings: resultWarnings(result),
	})
}

// ValidateOptimization reports settings problems and pool feasibility without building lineups.
func (h *OptimizerHandler) ValidateOptimization(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	resp := ValidateResponse{Valid: true}

	settings, err := h.resolveSettings(req.Settings)
	if err != nil {
		resp.Valid = false
		resp.Errors = append(resp.Errors, err.Error())
	}
	resp.Settings = settings

	pool, err := h.resolvePool(c, req, settings)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			respondError(c, err, "Slate not found")
			return
		}
		resp.Valid = false
		resp.Errors = append(resp.Errors, err.Error())
	}

	resp.Feasibility = optimizer.CheckFeasibility(pool, settings)
	if !resp.Feasibility.Feasible() {
		resp.Valid = false
	}

	utils.SendSuccess(c, resp)
}

func (h *OptimizerHandler) resolveSettings(raw json.RawMessage) (models.Settings, error) {
	settings := h.config.DefaultSettings()
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return settings, fmt.Errorf("settings: %w", err)
		}
	}
	if settings.NewsMode == "" {
		settings.NewsMode = models.NewsModeAuto
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	if settings.NumberOfLineups > h.config.MaxLineups {
		return settings, fmt.Errorf("number_of_lineups may not exceed %d", h.config.MaxLineups)
	}
	return settings, nil
}

// resolvePool loads the stored slate as-is, or enriches inline players per the news mode.
// A seeded batch seeds the news analysis too so the whole run can be reproduced.
func (h *OptimizerHandler) resolvePool(c *gin.Context, req OptimizeRequest, settings models.Settings) ([]models.Player, error) {
	if req.SlateID != "" {
		slate, err := h.store.GetSlate(c.Request.Context(), req.SlateID)
		if err != nil {
			return nil, err
		}
		return slate.Players, nil
	}

	if len(req.Players) == 0 {
		return nil, fmt.Errorf("%w: slate_id or players is required", utils.ErrInvalidInput)
	}
	players := append([]models.Player(nil), req.Players...)
	if err := normalizePlayers(players); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidInput, err)
	}

	analyzer := h.analyzer
	if settings.Seed != nil {
		analyzer = services.NewNewsAnalyzer(rand.New(rand.NewSource(*settings.Seed)), h.logger)
	}
	return analyzer.Analyze(players, settings.NewsMode), nil
}

func buildResponse(result *optimizer.Result) OptimizeResponse {
	return OptimizeResponse{
		Result:    result,
		Exposures: services.CalculateExposures(result.Lineups),
		Summary:   services.SummarizePortfolio(result.Lineups),
		Warnings:  resultWarnings(result),
	}
}

func resultWarnings(result *optimizer.Result) []string {
	var warnings []string
	warnings = append(warnings, result.Feasibility.Warnings...)
	for _, conflict := range result.Feasibility.LockConflicts {
		warnings = append(warnings, fmt.Sprintf("locked %s %s has no open slot; left out but its salary still counts", conflict.Position, conflict.Name))
	}
	if result.Exhausted {
		warnings = append(warnings, fmt.Sprintf("generated %d of %d requested lineups after %d attempts",
			len(result.Lineups), result.Requested, result.Attempts))
	}
	return warnings
}
