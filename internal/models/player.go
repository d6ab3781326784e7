package models

import (
	"strings"
)

// Position is one of the five roster positions a player can be listed at.
type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionDEF Position = "DEF"
)

// InjuryOut marks a player ruled out for the slate.
const InjuryOut = "O"

// ValidPositions lists the positions accepted from an ingested pool.
var ValidPositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionDEF}

// ParsePosition normalizes a raw position string. FanDuel exports defenses as "D".
func ParsePosition(raw string) (Position, bool) {
	p := strings.ToUpper(strings.TrimSpace(raw))
	if p == "D" || p == "DST" {
		p = string(PositionDEF)
	}
	for _, valid := range ValidPositions {
		if Position(p) == valid {
			return valid, true
		}
	}
	return "", false
}

// Player is a candidate in the pool. The optimizer treats it as read-only.
type Player struct {
	ID                   string   `json:"id"`
	Position             Position `json:"position"`
	FirstName            string   `json:"first_name,omitempty"`
	Nickname             string   `json:"nickname,omitempty"`
	LastName             string   `json:"last_name,omitempty"`
	FPPG                 float64  `json:"fppg"`
	Played               int      `json:"played,omitempty"`
	Salary               int      `json:"salary"`
	Game                 string   `json:"game,omitempty"`
	Team                 string   `json:"team,omitempty"`
	Opponent             string   `json:"opponent,omitempty"`
	InjuryIndicator      string   `json:"injury_indicator,omitempty"`
	InjuryDetails        string   `json:"injury_details,omitempty"`
	RosterPosition       string   `json:"roster_position,omitempty"`
	Projection           float64  `json:"projection"`
	ProjectionAdjustment float64  `json:"projection_adjustment"`
	IsLocked             bool     `json:"is_locked"`
	IsExcluded           bool     `json:"is_excluded"`

	// AdjustmentEdited marks a hand-set adjustment that scheduled news refreshes keep.
	AdjustmentEdited bool `json:"adjustment_edited,omitempty"`

	// ExposureLimit is a percentage of the batch. Nil falls back to Settings.MaxPlayerExposure.
	ExposureLimit *float64 `json:"exposure_limit,omitempty"`

	NewsIndicator NewsIndicator `json:"news_indicator,omitempty"`
	NewsItems     []NewsItem    `json:"news_items,omitempty"`
}

// EffectiveProjection is the unperturbed score used for lineup totals.
func (p Player) EffectiveProjection() float64 {
	return p.Projection + p.ProjectionAdjustment
}

// IsEligible reports whether the player can be considered at all.
func (p Player) IsEligible() bool {
	return !p.IsExcluded && p.InjuryIndicator != InjuryOut && p.Salary > 0
}

// Name returns the display name, preferring the export's nickname column.
func (p Player) Name() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ExposureLimitOr resolves the per-player exposure limit against a global default.
func (p Player) ExposureLimitOr(defaultLimit float64) float64 {
	if p.ExposureLimit != nil {
		return *p.ExposureLimit
	}
	return defaultLimit
}
