package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/database"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/utils"
)

// SlateStore keeps imported player pools so they can be edited and re-optimized.
// Generated lineups are never stored.
type SlateStore struct {
	db     *database.DB
	logger *logrus.Logger
}

func NewSlateStore(db *database.DB, logger *logrus.Logger) *SlateStore {
	return &SlateStore{db: db, logger: logger}
}

// AutoMigrate creates or updates the slate tables.
func (s *SlateStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&models.SlateRecord{}, &models.PlayerRecord{}); err != nil {
		return fmt.Errorf("failed to migrate slate tables: %w", err)
	}
	return nil
}

func (s *SlateStore) CreateSlate(ctx context.Context, name string, mode models.NewsMode, players []models.Player) (*models.Slate, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: slate has no players", utils.ErrInvalidInput)
	}
	if strings.TrimSpace(name) == "" {
		name = "Untitled slate"
	}
	if mode == "" {
		mode = models.NewsModeAuto
	}

	record := models.SlateRecord{
		ID:       uuid.New().String(),
		Name:     name,
		NewsMode: string(mode),
	}

	seen := make(map[string]bool, len(players))
	for i, p := range players {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %s", utils.ErrInvalidInput, p.ID)
		}
		seen[p.ID] = true

		row, err := models.NewPlayerRecord(record.ID, i, p)
		if err != nil {
			return nil, err
		}
		record.Players = append(record.Players, row)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create slate: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"slate_id": record.ID,
		"players":  len(players),
	}).Info("Slate created")

	return toSlate(record, true)
}

func (s *SlateStore) GetSlate(ctx context.Context, id string) (*models.Slate, error) {
	var record models.SlateRecord
	err := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("slate %s: %w", id, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load slate: %w", err)
	}
	return toSlate(record, true)
}

// ListSlates returns slate headers with player counts, newest first. An empty mode lists all.
func (s *SlateStore) ListSlates(ctx context.Context, mode models.NewsMode) ([]models.Slate, error) {
	var records []models.SlateRecord
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if mode != "" {
		query = query.Where("news_mode = ?", string(mode))
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list slates: %w", err)
	}

	type countRow struct {
		SlateID string
		Count   int
	}
	var counts []countRow
	if err := s.db.WithContext(ctx).Model(&models.PlayerRecord{}).
		Select("slate_id, COUNT(*) AS count").
		Group("slate_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count players: %w", err)
	}
	byID := make(map[string]int, len(counts))
	for _, c := range counts {
		byID[c.SlateID] = c.Count
	}

	slates := make([]models.Slate, 0, len(records))
	for _, r := range records {
		slate, err := toSlate(r, false)
		if err != nil {
			return nil, err
		}
		slate.PlayerCount = byID[r.ID]
		slates = append(slates, *slate)
	}
	return slates, nil
}

// UpdatePlayer applies a lock, exclusion, projection or exposure edit to one player.
func (s *SlateStore) UpdatePlayer(ctx context.Context, slateID, playerID string, update models.PlayerUpdate) (*models.Player, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidInput, err)
	}

	var updated models.Player
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PlayerRecord
		if err := forUpdate(tx).First(&row, "slate_id = ? AND player_id = ?", slateID, playerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("player %s in slate %s: %w", playerID, slateID, utils.ErrNotFound)
			}
			return err
		}

		current, err := row.ToPlayer()
		if err != nil {
			return err
		}
		updated = update.Apply(current)

		next, err := models.NewPlayerRecord(slateID, row.SortOrder, updated)
		if err != nil {
			return err
		}
		next.ID = row.ID
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		return tx.Model(&models.SlateRecord{}).Where("id = ?", slateID).Update("updated_at", time.Now().UTC()).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"slate_id":  slateID,
		"player_id": playerID,
	}).Debug("Player updated")

	return &updated, nil
}

// EnrichPlayers loads a slate's players, passes them through enrich and saves the
// result in one transaction, matching by player id. Players enrich adds are ignored.
// With keepEdits, players whose adjustment was set by hand keep it; otherwise the
// enriched adjustment replaces it and the edit mark is cleared.
func (s *SlateStore) EnrichPlayers(ctx context.Context, slateID string, keepEdits bool, enrich func([]models.Player) []models.Player) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.PlayerRecord
		if err := forUpdate(tx).Where("slate_id = ?", slateID).Order("sort_order ASC").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("slate %s: %w", slateID, utils.ErrNotFound)
		}

		current := make([]models.Player, 0, len(rows))
		existing := make(map[string]models.PlayerRecord, len(rows))
		for _, r := range rows {
			p, err := r.ToPlayer()
			if err != nil {
				return err
			}
			current = append(current, p)
			existing[r.PlayerID] = r
		}

		kept := 0
		for _, p := range enrich(current) {
			row, ok := existing[p.ID]
			if !ok {
				continue
			}
			if keepEdits && row.AdjustmentEdited {
				p.ProjectionAdjustment = row.ProjectionAdjustment
				p.AdjustmentEdited = true
				kept++
			} else {
				p.AdjustmentEdited = false
			}
			next, err := models.NewPlayerRecord(slateID, row.SortOrder, p)
			if err != nil {
				return err
			}
			next.ID = row.ID
			if err := tx.Save(&next).Error; err != nil {
				return fmt.Errorf("failed to save player %s: %w", p.ID, err)
			}
		}

		s.logger.WithFields(logrus.Fields{
			"slate_id":   slateID,
			"players":    len(rows),
			"kept_edits": kept,
			"keep_edits": keepEdits,
		}).Debug("Slate players enriched")

		return tx.Model(&models.SlateRecord{}).Where("id = ?", slateID).Update("updated_at", time.Now().UTC()).Error
	})
}

func (s *SlateStore) DeleteSlate(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slate_id = ?", id).Delete(&models.PlayerRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete players: %w", err)
		}
		res := tx.Delete(&models.SlateRecord{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete slate: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("slate %s: %w", id, utils.ErrNotFound)
		}
		return nil
	})
}

func toSlate(record models.SlateRecord, withPlayers bool) (*models.Slate, error) {
	slate := &models.Slate{
		ID:          record.ID,
		Name:        record.Name,
		NewsMode:    models.NewsMode(record.NewsMode),
		PlayerCount: len(record.Players),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
	if withPlayers {
		slate.Players = make([]models.Player, 0, len(record.Players))
		for _, row := range record.Players {
			p, err := row.ToPlayer()
			if err != nil {
				return nil, err
			}
			slate.Players = append(slate.Players, p)
		}
	}
	return slate, nil
}

// forUpdate row-locks the next read on Postgres. SQLite serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
