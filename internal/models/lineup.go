package models

import (
	"time"
)

const (
	// SalaryCap is the FanDuel NFL classic salary cap.
	SalaryCap = 60000
	// MinSalaryDefault is the default salary floor shown to users.
	MinSalaryDefault = 59000
	// LineupSize is the number of roster slots in a lineup.
	LineupSize = 9
)

// SlotName identifies one of the nine roster slots.
type SlotName string

const (
	SlotQB   SlotName = "qb"
	SlotRB1  SlotName = "rb1"
	SlotRB2  SlotName = "rb2"
	SlotWR1  SlotName = "wr1"
	SlotWR2  SlotName = "wr2"
	SlotWR3  SlotName = "wr3"
	SlotTE   SlotName = "te"
	SlotFlex SlotName = "flex"
	SlotDEF  SlotName = "def"
)

// Lineup is a complete nine-player roster. It is never modified after it is built.
type Lineup struct {
	ID              string    `json:"id"`
	QB              Player    `json:"qb"`
	RB1             Player    `json:"rb1"`
	RB2             Player    `json:"rb2"`
	WR1             Player    `json:"wr1"`
	WR2             Player    `json:"wr2"`
	WR3             Player    `json:"wr3"`
	TE              Player    `json:"te"`
	Flex            Player    `json:"flex"`
	DEF             Player    `json:"def"`
	TotalSalary     int       `json:"total_salary"`
	TotalProjection float64   `json:"total_projection"`
	CreatedAt       time.Time `json:"created_at"`
}

// Players returns the roster in export order: QB, RB, RB, WR, WR, WR, TE, FLEX, DEF.
func (l Lineup) Players() []Player {
	return []Player{l.QB, l.RB1, l.RB2, l.WR1, l.WR2, l.WR3, l.TE, l.Flex, l.DEF}
}

// PlayerIDs returns the roster ids in export order.
func (l Lineup) PlayerIDs() []string {
	players := l.Players()
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

// Contains reports whether the player is rostered in any slot.
func (l Lineup) Contains(playerID string) bool {
	for _, p := range l.Players() {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// SharedPlayers counts players that appear in both lineups.
func (l Lineup) SharedPlayers(other Lineup) int {
	ids := make(map[string]struct{}, LineupSize)
	for _, p := range other.Players() {
		ids[p.ID] = struct{}{}
	}
	shared := 0
	for _, p := range l.Players() {
		if _, ok := ids[p.ID]; ok {
			shared++
		}
	}
	return shared
}

// HasQBOppDefConflict reports whether the lineup's defense is facing its own quarterback.
func (l Lineup) HasQBOppDefConflict() bool {
	if l.QB.Opponent == "" || l.DEF.Team == "" {
		return false
	}
	return l.QB.Opponent == l.DEF.Team
}
