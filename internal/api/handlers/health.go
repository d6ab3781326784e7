package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/database"
)

type HealthHandler struct {
	db    *database.DB
	cache *services.ResultCache
}

func NewHealthHandler(db *database.DB, cache *services.ResultCache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// GetHealth reports liveness plus database and cache state. A failed database
// ping answers 503; the cache is optional and never fails the check.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":   "ok",
		"time":     time.Now().UTC(),
		"database": "ok",
		"cache":    "disabled",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if sqlDB, err := h.db.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	}

	if h.cache.Enabled() {
		body["cache"] = h.cache.State().String()
	}

	c.JSON(status, body)
}
