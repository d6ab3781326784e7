package optimizer

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/logger"
)

// AttemptsPerLineup bounds the retry loop at numberOfLineups * AttemptsPerLineup.
const AttemptsPerLineup = 50

// Progress is published after every accepted lineup and once when the batch ends.
type Progress struct {
	OptimizationID string `json:"optimization_id"`
	Accepted       int    `json:"accepted"`
	Target         int    `json:"target"`
	Attempts       int    `json:"attempts"`
	Done           bool   `json:"done"`
}

type ProgressFunc func(Progress)

// Result is one finished batch, sorted by total projection descending.
type Result struct {
	OptimizationID string               `json:"optimization_id"`
	Lineups        []models.Lineup      `json:"lineups"`
	Requested      int                  `json:"requested"`
	Attempts       int                  `json:"attempts"`
	MaxAttempts    int                  `json:"max_attempts"`
	Exhausted      bool                 `json:"exhausted"`
	Rejections     map[BuildFailure]int `json:"rejections"`
	Feasibility    FeasibilityReport    `json:"feasibility"`
	Duration       time.Duration        `json:"duration_ns"`
}

// Generator runs the bounded retry loop that fills a portfolio.
type Generator struct {
	rng            *rand.Rand
	logger         *logrus.Entry
	progress       ProgressFunc
	optimizationID string
}

type Option func(*Generator)

// WithRand injects the random source. It takes precedence over Settings.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

func WithLogger(entry *logrus.Entry) Option {
	return func(g *Generator) { g.logger = entry }
}

func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) { g.progress = fn }
}

func WithOptimizationID(id string) Option {
	return func(g *Generator) { g.optimizationID = id }
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.optimizationID == "" {
		g.optimizationID = uuid.New().String()
	}
	if g.logger == nil {
		g.logger = logger.WithOptimizationID(g.optimizationID)
	}
	return g
}

func (g *Generator) randSource(settings models.Settings) *rand.Rand {
	if g.rng != nil {
		return g.rng
	}
	if settings.Seed != nil {
		return rand.New(rand.NewSource(*settings.Seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Generate builds up to settings.NumberOfLineups distinct lineups. Falling short
// is not an error: the result simply holds fewer lineups and Exhausted is set.
func (g *Generator) Generate(pool []models.Player, settings models.Settings) *Result {
	start := time.Now()
	maxAttempts := settings.NumberOfLineups * AttemptsPerLineup

	result := &Result{
		OptimizationID: g.optimizationID,
		Lineups:        make([]models.Lineup, 0, settings.NumberOfLineups),
		Requested:      settings.NumberOfLineups,
		MaxAttempts:    maxAttempts,
		Rejections:     make(map[BuildFailure]int),
		Feasibility:    CheckFeasibility(pool, settings),
	}

	log := g.logger.WithFields(logrus.Fields{
		"total_players":      len(pool),
		"eligible_players":   result.Feasibility.EligiblePlayers,
		"num_lineups":        settings.NumberOfLineups,
		"randomness":         settings.Randomness,
		"min_unique_players": settings.MinUniquePlayers,
	})
	log.Info("Starting lineup generation")

	for _, conflict := range result.Feasibility.LockConflicts {
		log.WithFields(logrus.Fields{
			"player_id": conflict.PlayerID,
			"position":  conflict.Position,
		}).Warn("Locked player has no free slot and will not be rostered")
	}
	for _, warning := range result.Feasibility.Warnings {
		log.WithField("warning", warning).Warn("Pool may not support a valid lineup")
	}

	ledger := NewExposureLedger()
	builder := NewBuilder(settings, NewScorer(g.randSource(settings)), log)

	for len(result.Lineups) < settings.NumberOfLineups && result.Attempts < maxAttempts {
		result.Attempts++

		lineup, failure := builder.attempt(pool, result.Lineups, ledger)
		if failure != "" {
			result.Rejections[failure]++
			continue
		}

		result.Lineups = append(result.Lineups, lineup)
		ledger.Record(lineup)
		g.publish(Progress{
			Accepted: len(result.Lineups),
			Target:   settings.NumberOfLineups,
			Attempts: result.Attempts,
		})
	}

	sort.SliceStable(result.Lineups, func(i, j int) bool {
		return result.Lineups[i].TotalProjection > result.Lineups[j].TotalProjection
	})

	result.Exhausted = len(result.Lineups) < settings.NumberOfLineups
	result.Duration = time.Since(start)

	g.publish(Progress{
		Accepted: len(result.Lineups),
		Target:   settings.NumberOfLineups,
		Attempts: result.Attempts,
		Done:     true,
	})

	log.WithFields(logrus.Fields{
		"lineups_generated": len(result.Lineups),
		"attempts":          result.Attempts,
		"exhausted":         result.Exhausted,
		"rejections":        result.Rejections,
		"duration_ms":       result.Duration.Milliseconds(),
	}).Info("Lineup generation completed")

	return result
}

func (g *Generator) publish(p Progress) {
	if g.progress == nil {
		return
	}
	p.OptimizationID = g.optimizationID
	g.progress(p)
}

// OptimizeLineups runs a single batch with default options.
func OptimizeLineups(pool []models.Player, settings models.Settings) *Result {
	return NewGenerator().Generate(pool, settings)
}
