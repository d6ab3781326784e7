package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Slate is an imported player pool plus the news mode used when refreshing it.
type Slate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NewsMode    NewsMode  `json:"news_mode"`
	PlayerCount int       `json:"player_count"`
	Players     []Player  `json:"players,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SlateRecord is the stored form of a Slate.
type SlateRecord struct {
	ID        string         `gorm:"primaryKey;size:36"`
	Name      string         `gorm:"not null"`
	NewsMode  string         `gorm:"not null;default:auto;index"`
	Players   []PlayerRecord `gorm:"foreignKey:SlateID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SlateRecord) TableName() string {
	return "slates"
}

// PlayerRecord is one player of a stored slate. SortOrder keeps the import order,
// which decides ties during lineup building.
type PlayerRecord struct {
	ID                   uint   `gorm:"primaryKey"`
	SlateID              string `gorm:"size:36;not null;uniqueIndex:idx_slate_player"`
	PlayerID             string `gorm:"not null;uniqueIndex:idx_slate_player"`
	SortOrder            int    `gorm:"not null"`
	Position             string `gorm:"size:3;not null"`
	FirstName            string
	Nickname             string
	LastName             string
	FPPG                 float64
	Played               int
	Salary               int `gorm:"not null"`
	Game                 string
	Team                 string
	Opponent             string
	InjuryIndicator      string
	InjuryDetails        string
	RosterPosition       string
	Projection           float64
	ProjectionAdjustment float64
	AdjustmentEdited     bool
	IsLocked             bool
	IsExcluded           bool
	ExposureLimit        *float64
	NewsIndicator        string
	NewsItems            datatypes.JSON
}

func (PlayerRecord) TableName() string {
	return "slate_players"
}

// NewPlayerRecord converts a Player for storage.
func NewPlayerRecord(slateID string, order int, p Player) (PlayerRecord, error) {
	items := p.NewsItems
	if items == nil {
		items = []NewsItem{}
	}
	news, err := json.Marshal(items)
	if err != nil {
		return PlayerRecord{}, fmt.Errorf("failed to encode news for player %s: %w", p.ID, err)
	}

	return PlayerRecord{
		SlateID:              slateID,
		PlayerID:             p.ID,
		SortOrder:            order,
		Position:             string(p.Position),
		FirstName:            p.FirstName,
		Nickname:             p.Nickname,
		LastName:             p.LastName,
		FPPG:                 p.FPPG,
		Played:               p.Played,
		Salary:               p.Salary,
		Game:                 p.Game,
		Team:                 p.Team,
		Opponent:             p.Opponent,
		InjuryIndicator:      p.InjuryIndicator,
		InjuryDetails:        p.InjuryDetails,
		RosterPosition:       p.RosterPosition,
		Projection:           p.Projection,
		ProjectionAdjustment: p.ProjectionAdjustment,
		AdjustmentEdited:     p.AdjustmentEdited,
		IsLocked:             p.IsLocked,
		IsExcluded:           p.IsExcluded,
		ExposureLimit:        p.ExposureLimit,
		NewsIndicator:        string(p.NewsIndicator),
		NewsItems:            datatypes.JSON(news),
	}, nil
}

// ToPlayer converts the stored row back into a Player.
func (r PlayerRecord) ToPlayer() (Player, error) {
	var items []NewsItem
	if len(r.NewsItems) > 0 {
		if err := json.Unmarshal(r.NewsItems, &items); err != nil {
			return Player{}, fmt.Errorf("failed to decode news for player %s: %w", r.PlayerID, err)
		}
	}
	if len(items) == 0 {
		items = nil
	}

	return Player{
		ID:                   r.PlayerID,
		Position:             Position(r.Position),
		FirstName:            r.FirstName,
		Nickname:             r.Nickname,
		LastName:             r.LastName,
		FPPG:                 r.FPPG,
		Played:               r.Played,
		Salary:               r.Salary,
		Game:                 r.Game,
		Team:                 r.Team,
		Opponent:             r.Opponent,
		InjuryIndicator:      r.InjuryIndicator,
		InjuryDetails:        r.InjuryDetails,
		RosterPosition:       r.RosterPosition,
		Projection:           r.Projection,
		ProjectionAdjustment: r.ProjectionAdjustment,
		AdjustmentEdited:     r.AdjustmentEdited,
		IsLocked:             r.IsLocked,
		IsExcluded:           r.IsExcluded,
		ExposureLimit:        r.ExposureLimit,
		NewsIndicator:        NewsIndicator(r.NewsIndicator),
		NewsItems:            items,
	}, nil
}

// PlayerUpdate is a partial edit of a stored player. Nil fields are left alone.
type PlayerUpdate struct {
	IsLocked             *bool    `json:"is_locked,omitempty"`
	IsExcluded           *bool    `json:"is_excluded,omitempty"`
	Projection           *float64 `json:"projection,omitempty"`
	ProjectionAdjustment *float64 `json:"projection_adjustment,omitempty"`
	ExposureLimit        *float64 `json:"exposure_limit,omitempty"`

	// ClearExposureLimit reverts the player to the batch-wide default.
	ClearExposureLimit bool `json:"clear_exposure_limit,omitempty"`
}

func (u PlayerUpdate) Validate() error {
	if u.ExposureLimit != nil && (*u.ExposureLimit < 0 || *u.ExposureLimit > 100) {
		return fmt.Errorf("exposure_limit must be between 0 and 100")
	}
	if u.Projection != nil && *u.Projection < 0 {
		return fmt.Errorf("projection must not be negative")
	}
	return nil
}

// Apply returns p with the update applied.
func (u PlayerUpdate) Apply(p Player) Player {
	if u.IsLocked != nil {
		p.IsLocked = *u.IsLocked
	}
	if u.IsExcluded != nil {
		p.IsExcluded = *u.IsExcluded
	}
	if u.Projection != nil {
		p.Projection = *u.Projection
	}
	if u.ProjectionAdjustment != nil {
		p.ProjectionAdjustment = *u.ProjectionAdjustment
		p.AdjustmentEdited = true
	}
	if u.ClearExposureLimit {
		p.ExposureLimit = nil
	} else if u.ExposureLimit != nil {
		limit := *u.ExposureLimit
		p.ExposureLimit = &limit
	}
	return p
}
