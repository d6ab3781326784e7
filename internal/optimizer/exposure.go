package optimizer

import (
	"math"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

// ExposureLedger counts, per player id, the accepted lineups of the current batch
// that roster the player. Only the Generator records into it.
type ExposureLedger map[string]int

func NewExposureLedger() ExposureLedger {
	return make(ExposureLedger)
}

// Record charges every player of an accepted lineup.
func (l ExposureLedger) Record(lineup models.Lineup) {
	for _, id := range lineup.PlayerIDs() {
		l[id]++
	}
}

func (l ExposureLedger) Count(playerID string) int {
	return l[playerID]
}

// MaxAppearances converts a percentage limit into a lineup count for a batch of n:
// ceil(limit/100 * n). Computed as limit*n/100 so whole-number products stay exact.
func MaxAppearances(limitPercent float64, numberOfLineups int) int {
	if limitPercent <= 0 || numberOfLineups <= 0 {
		return 0
	}
	return int(math.Ceil(limitPercent * float64(numberOfLineups) / 100))
}

// Allows reports whether the player may appear in one more lineup.
func (l ExposureLedger) Allows(player models.Player, settings models.Settings) bool {
	limit := player.ExposureLimitOr(settings.MaxPlayerExposure)
	return l[player.ID] < MaxAppearances(limit, settings.NumberOfLineups)
}
