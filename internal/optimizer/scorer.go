package optimizer

import (
	"math"
	"math/rand"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

// Scorer ranks candidates for a slot. With randomness above zero every call
// draws a fresh perturbation, so the same player can score differently per slot.
type Scorer struct {
	rng *rand.Rand
}

func NewScorer(rng *rand.Rand) *Scorer {
	return &Scorer{rng: rng}
}

// Score returns projection + adjustment, perturbed by up to randomness percent
// of itself in either direction and clamped at zero.
func (s *Scorer) Score(player models.Player, randomness float64) float64 {
	base := player.EffectiveProjection()
	if randomness == 0 {
		return base
	}

	u := s.rng.Float64()*2 - 1
	return math.Max(0, base+u*(randomness/100)*base)
}
