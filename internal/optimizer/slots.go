package optimizer

import (
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

// PositionSlot describes one roster slot and the positions it accepts.
type PositionSlot struct {
	SlotName         models.SlotName
	AllowedPositions []models.Position
	Priority         int // Fill order (1 = first)
}

func (s PositionSlot) Accepts(position models.Position) bool {
	for _, allowed := range s.AllowedPositions {
		if allowed == position {
			return true
		}
	}
	return false
}

// FanDuel NFL classic roster. FLEX is filled last so the dedicated slots get first pick.
var nflSlots = []PositionSlot{
	{SlotName: models.SlotQB, AllowedPositions: []models.Position{models.PositionQB}, Priority: 1},
	{SlotName: models.SlotRB1, AllowedPositions: []models.Position{models.PositionRB}, Priority: 2},
	{SlotName: models.SlotRB2, AllowedPositions: []models.Position{models.PositionRB}, Priority: 3},
	{SlotName: models.SlotWR1, AllowedPositions: []models.Position{models.PositionWR}, Priority: 4},
	{SlotName: models.SlotWR2, AllowedPositions: []models.Position{models.PositionWR}, Priority: 5},
	{SlotName: models.SlotWR3, AllowedPositions: []models.Position{models.PositionWR}, Priority: 6},
	{SlotName: models.SlotTE, AllowedPositions: []models.Position{models.PositionTE}, Priority: 7},
	{SlotName: models.SlotDEF, AllowedPositions: []models.Position{models.PositionDEF}, Priority: 8},
	{
		SlotName:         models.SlotFlex,
		AllowedPositions: []models.Position{models.PositionRB, models.PositionWR, models.PositionTE},
		Priority:         9,
	},
}

// GetPositionSlots returns the slots in fill order.
func GetPositionSlots() []PositionSlot {
	slots := make([]PositionSlot, len(nflSlots))
	copy(slots, nflSlots)
	return slots
}

// lockChains lists, per position, the slots a locked player may occupy in order.
var lockChains = map[models.Position][]models.SlotName{
	models.PositionQB:  {models.SlotQB},
	models.PositionRB:  {models.SlotRB1, models.SlotRB2, models.SlotFlex},
	models.PositionWR:  {models.SlotWR1, models.SlotWR2, models.SlotWR3, models.SlotFlex},
	models.PositionTE:  {models.SlotTE, models.SlotFlex},
	models.PositionDEF: {models.SlotDEF},
}

// minimumByPosition is the dedicated-slot demand; flex adds one more RB, WR or TE.
var minimumByPosition = map[models.Position]int{
	models.PositionQB:  1,
	models.PositionRB:  2,
	models.PositionWR:  3,
	models.PositionTE:  1,
	models.PositionDEF: 1,
}
