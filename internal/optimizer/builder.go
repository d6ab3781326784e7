package optimizer

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

// BuildFailure names why an attempt produced no lineup. Callers treat every
// failure the same way; the reason only feeds logs and counters.
type BuildFailure string

const (
	FailureNoCandidate    BuildFailure = "no_candidate"
	FailureOverCap        BuildFailure = "over_cap"
	FailureUnderMinSalary BuildFailure = "under_min_salary"
	FailureNotUnique      BuildFailure = "not_unique"
)

// partialLineup is a lineup under construction. A slot is empty until set.
type partialLineup struct {
	slots  map[models.SlotName]models.Player
	used   map[string]bool
	salary int
}

func newPartialLineup() *partialLineup {
	return &partialLineup{
		slots: make(map[models.SlotName]models.Player, models.LineupSize),
		used:  make(map[string]bool, models.LineupSize),
	}
}

func (p *partialLineup) isFilled(slot models.SlotName) bool {
	_, ok := p.slots[slot]
	return ok
}

func (p *partialLineup) assign(slot models.SlotName, player models.Player) {
	p.slots[slot] = player
	p.charge(player)
}

// charge spends the player's salary and takes them out of the candidate pool
// without seating them.
func (p *partialLineup) charge(player models.Player) {
	p.used[player.ID] = true
	p.salary += player.Salary
}

func (p *partialLineup) complete() bool {
	return len(p.slots) == models.LineupSize
}

// resolve turns a complete partial lineup into an immutable Lineup.
func (p *partialLineup) resolve() models.Lineup {
	lineup := models.Lineup{
		ID:        uuid.New().String(),
		QB:        p.slots[models.SlotQB],
		RB1:       p.slots[models.SlotRB1],
		RB2:       p.slots[models.SlotRB2],
		WR1:       p.slots[models.SlotWR1],
		WR2:       p.slots[models.SlotWR2],
		WR3:       p.slots[models.SlotWR3],
		TE:        p.slots[models.SlotTE],
		Flex:      p.slots[models.SlotFlex],
		DEF:       p.slots[models.SlotDEF],
		CreatedAt: time.Now().UTC(),
	}
	for _, player := range lineup.Players() {
		lineup.TotalSalary += player.Salary
		lineup.TotalProjection += player.EffectiveProjection()
	}
	return lineup
}

// LockConflict is a locked player that could not be seated because every slot
// its position may occupy was already taken by earlier locks.
type LockConflict struct {
	PlayerID string          `json:"player_id"`
	Name     string          `json:"name,omitempty"`
	Position models.Position `json:"position"`
}

// eligiblePlayers drops excluded, ruled-out and zero-salary players, keeping input order.
func eligiblePlayers(pool []models.Player) []models.Player {
	eligible := make([]models.Player, 0, len(pool))
	for _, p := range pool {
		if p.IsEligible() {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

// assignLocks charges every locked player against the budget, then seats them in
// input order along their position's slot chain. Locks that find no free slot
// stay charged and are returned as conflicts.
func assignLocks(partial *partialLineup, eligible []models.Player) []LockConflict {
	var conflicts []LockConflict
	for _, p := range eligible {
		if !p.IsLocked {
			continue
		}
		partial.charge(p)
		placed := false
		for _, slot := range lockChains[p.Position] {
			if !partial.isFilled(slot) {
				partial.slots[slot] = p
				placed = true
				break
			}
		}
		if !placed {
			conflicts = append(conflicts, LockConflict{PlayerID: p.ID, Name: p.Name(), Position: p.Position})
		}
	}
	return conflicts
}

// Builder assembles one lineup per call with a greedy slot-by-slot fill.
type Builder struct {
	settings models.Settings
	scorer   *Scorer
	logger   *logrus.Entry
}

func NewBuilder(settings models.Settings, scorer *Scorer, logger *logrus.Entry) *Builder {
	return &Builder{settings: settings, scorer: scorer, logger: logger}
}

// Build attempts one lineup against the batch so far. The ledger is only read.
func (b *Builder) Build(pool []models.Player, accepted []models.Lineup, ledger ExposureLedger) (models.Lineup, bool) {
	lineup, failure := b.attempt(pool, accepted, ledger)
	return lineup, failure == ""
}

func (b *Builder) attempt(pool []models.Player, accepted []models.Lineup, ledger ExposureLedger) (models.Lineup, BuildFailure) {
	eligible := eligiblePlayers(pool)

	partial := newPartialLineup()
	assignLocks(partial, eligible)

	// Locks are seated above regardless of exposure.
	available := make([]models.Player, 0, len(eligible))
	for _, p := range eligible {
		if ledger.Allows(p, b.settings) {
			available = append(available, p)
		}
	}

	for _, slot := range nflSlots {
		if partial.isFilled(slot.SlotName) {
			continue
		}

		remaining := models.SalaryCap - partial.salary
		var best models.Player
		var bestScore float64
		found := false

		for _, p := range available {
			if partial.used[p.ID] || !slot.Accepts(p.Position) || p.Salary > remaining {
				continue
			}
			score := b.scorer.Score(p, b.settings.Randomness)
			if !found || score > bestScore {
				best = p
				bestScore = score
				found = true
			}
		}

		if !found {
			b.logger.WithFields(logrus.Fields{
				"slot":             slot.SlotName,
				"remaining_salary": remaining,
			}).Debug("No candidate fits slot")
			return models.Lineup{}, FailureNoCandidate
		}
		partial.assign(slot.SlotName, best)
	}

	if !partial.complete() {
		return models.Lineup{}, FailureNoCandidate
	}
	if partial.salary > models.SalaryCap {
		b.logger.WithField("total_salary", partial.salary).Debug("Lineup over salary cap")
		return models.Lineup{}, FailureOverCap
	}
	if b.settings.EnforceMinSalary && partial.salary < b.settings.MinSalaryUsed {
		b.logger.WithFields(logrus.Fields{
			"total_salary": partial.salary,
			"min_salary":   b.settings.MinSalaryUsed,
		}).Debug("Lineup under salary floor")
		return models.Lineup{}, FailureUnderMinSalary
	}

	lineup := partial.resolve()
	for _, prior := range accepted {
		if models.LineupSize-lineup.SharedPlayers(prior) < b.settings.MinUniquePlayers {
			b.logger.WithField("duplicate_of", prior.ID).Debug("Lineup too similar to accepted lineup")
			return models.Lineup{}, FailureNotUnique
		}
	}

	return lineup, ""
}
