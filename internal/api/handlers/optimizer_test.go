package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/optimizer"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/services"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/config"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

// memoryCache round-trips results through JSON like the Redis-backed cache.
type memoryCache struct {
	mu      sync.Mutex
	results map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{results: make(map[string][]byte)}
}

func (m *memoryCache) Cacheable(settings models.Settings) bool {
	return settings.IsDeterministic()
}

func (m *memoryCache) Get(_ context.Context, key string) (*optimizer.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.results[key]
	if !ok {
		return nil, utils.ErrCacheMiss
	}
	var result optimizer.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (m *memoryCache) Set(_ context.Context, key string, result *optimizer.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[key] = data
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []optimizer.Progress
}

func (r *recordingPublisher) PublishProgress(p optimizer.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, p)
}

func (r *recordingPublisher) forID(id string) []optimizer.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []optimizer.Progress
	for _, m := range r.messages {
		if m.OptimizationID == id {
			out = append(out, m)
		}
	}
	return out
}

func handlerPlayers() []models.Player {
	p := func(id string, pos models.Position, salary int, proj float64) models.Player {
		return models.Player{ID: id, Position: pos, Team: "T" + id, Opponent: "O" + id, Salary: salary, Projection: proj}
	}
	return []models.Player{
		p("q1", models.PositionQB, 7000, 20),
		p("r1", models.PositionRB, 6000, 15),
		p("r2", models.PositionRB, 6000, 15),
		p("w1", models.PositionWR, 5500, 14),
		p("w2", models.PositionWR, 5500, 14),
		p("w3", models.PositionWR, 5500, 14),
		p("t1", models.PositionTE, 4500, 10),
		p("r3", models.PositionRB, 4000, 8),
		p("d1", models.PositionDEF, 3000, 8),
	}
}

func newCachedOptimizeRouter(cache ResultCache, publisher ProgressPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()
	cfg := &config.Config{
		MaxLineups:               models.MaxNumberOfLineups,
		DefaultNumberOfLineups:   1,
		DefaultMaxPlayerExposure: 100,
		DefaultMinSalaryUsed:     models.MinSalaryDefault,
		DefaultMinUniquePlayers:  3,
		DefaultNewsMode:          string(models.NewsModeOff),
	}
	h := NewOptimizerHandler(nil, services.NewNewsAnalyzer(nil, log), cache, publisher, cfg, log)

	router := gin.New()
	router.POST("/optimize", h.OptimizeLineups)
	return router
}

func postOptimize(t *testing.T, router *gin.Engine, optimizationID string) (optimizer.Result, utils.Meta) {
	t.Helper()
	raw, err := json.Marshal(gin.H{
		"players":         handlerPlayers(),
		"settings":        gin.H{"number_of_lineups": 1, "randomness": 0},
		"optimization_id": optimizationID,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/optimize", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Data optimizer.Result `json:"data"`
		Meta utils.Meta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Data, env.Meta
}

func TestOptimizeLineups_CacheHitAnswersForTheNewRun(t *testing.T) {
	cache := newMemoryCache()
	publisher := &recordingPublisher{}
	router := newCachedOptimizeRouter(cache, publisher)

	first, meta := postOptimize(t, router, "run-1")
	assert.False(t, meta.Cached)
	assert.Equal(t, "run-1", first.OptimizationID)
	require.Len(t, first.Lineups, 1)

	second, meta := postOptimize(t, router, "run-2")
	assert.True(t, meta.Cached)
	assert.Equal(t, "run-2", second.OptimizationID)
	require.Len(t, second.Lineups, 1)
	assert.Equal(t, first.Lineups[0].PlayerIDs(), second.Lineups[0].PlayerIDs())

	frames := publisher.forID("run-2")
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Done)
	assert.Equal(t, 1, frames[0].Accepted)
	assert.Equal(t, 1, frames[0].Target)

	// The uncached run streamed its own progress.
	stored := publisher.forID("run-1")
	require.NotEmpty(t, stored)
	assert.True(t, stored[len(stored)-1].Done)
}
