package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/metrics"
)

// NewsRefreshScheduler periodically re-runs news analysis on every stored slate
// whose news mode is auto.
type NewsRefreshScheduler struct {
	store     *SlateStore
	analyzer  *NewsAnalyzer
	logger    *logrus.Logger
	cron      *cron.Cron
	schedule  string
	mu        sync.Mutex
	isRunning bool
}

func NewNewsRefreshScheduler(store *SlateStore, analyzer *NewsAnalyzer, schedule string, logger *logrus.Logger) *NewsRefreshScheduler {
	return &NewsRefreshScheduler{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
		cron:     cron.New(),
		schedule: schedule,
	}
}

func (s *NewsRefreshScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("news refresh scheduler is already running")
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := s.RefreshAll(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled news refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule news refresh: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.WithField("schedule", s.schedule).Info("News refresh scheduler started")
	return nil
}

// Stop waits for a running refresh to finish.
func (s *NewsRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	s.logger.Info("News refresh scheduler stopped")
}

func (s *NewsRefreshScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RefreshAll re-enriches every auto-mode slate and returns how many were updated.
// Hand-set adjustments are kept.
func (s *NewsRefreshScheduler) RefreshAll(ctx context.Context) (int, error) {
	slates, err := s.store.ListSlates(ctx, models.NewsModeAuto)
	if err != nil {
		metrics.RecordNewsRefresh("error")
		return 0, err
	}

	refreshed := 0
	for _, header := range slates {
		if err := s.refresh(ctx, header.ID, models.NewsModeAuto, true); err != nil {
			s.logger.WithError(err).WithField("slate_id", header.ID).Warn("Failed to refresh slate news")
			continue
		}
		refreshed++
	}

	status := "success"
	if refreshed < len(slates) {
		status = "partial"
	}
	metrics.RecordNewsRefresh(status)

	s.logger.WithFields(logrus.Fields{
		"slates":    len(slates),
		"refreshed": refreshed,
	}).Info("News refresh completed")

	return refreshed, nil
}

// RefreshSlate is a user-requested refresh: news analysis for one slate in the given
// mode, replacing any hand-set adjustments. Scheduled runs keep those edits.
func (s *NewsRefreshScheduler) RefreshSlate(ctx context.Context, slateID string, mode models.NewsMode) error {
	return s.refresh(ctx, slateID, mode, false)
}

func (s *NewsRefreshScheduler) refresh(ctx context.Context, slateID string, mode models.NewsMode, keepEdits bool) error {
	return s.store.EnrichPlayers(ctx, slateID, keepEdits, func(players []models.Player) []models.Player {
		return s.analyzer.Analyze(players, mode)
	})
}
