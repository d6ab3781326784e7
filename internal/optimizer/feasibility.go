package optimizer

import (
	"fmt"
	"sort"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

// FeasibilityReport summarizes structural problems in a pool before a batch runs.
// It never changes which lineups are produced.
type FeasibilityReport struct {
	EligiblePlayers int                     `json:"eligible_players"`
	PositionCounts  map[models.Position]int `json:"position_counts"`
	LockedSalary    int                     `json:"locked_salary"`
	LockConflicts   []LockConflict          `json:"lock_conflicts,omitempty"`
	Warnings        []string                `json:"warnings,omitempty"`
}

// Feasible is false when no attempt can possibly succeed.
func (r FeasibilityReport) Feasible() bool {
	return len(r.Warnings) == 0
}

// CheckFeasibility inspects the eligible pool for empty positions, lock conflicts
// and salary problems that would make every attempt fail.
func CheckFeasibility(pool []models.Player, settings models.Settings) FeasibilityReport {
	eligible := eligiblePlayers(pool)
	report := FeasibilityReport{
		EligiblePlayers: len(eligible),
		PositionCounts:  make(map[models.Position]int),
	}

	byPosition := make(map[models.Position][]models.Player)
	for _, p := range eligible {
		report.PositionCounts[p.Position]++
		if settings.NumberOfLineups > 0 && !p.IsLocked &&
			MaxAppearances(p.ExposureLimitOr(settings.MaxPlayerExposure), settings.NumberOfLineups) == 0 {
			continue
		}
		byPosition[p.Position] = append(byPosition[p.Position], p)
	}

	for _, pos := range models.ValidPositions {
		if have, need := len(byPosition[pos]), minimumByPosition[pos]; have < need {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("need at least %d usable %s, have %d", need, pos, have))
		}
	}
	flexPool := len(byPosition[models.PositionRB]) + len(byPosition[models.PositionWR]) + len(byPosition[models.PositionTE])
	if flexPool < 7 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("need at least 7 usable RB/WR/TE to fill flex, have %d", flexPool))
	}

	partial := newPartialLineup()
	report.LockConflicts = assignLocks(partial, eligible)
	report.LockedSalary = partial.salary
	if partial.salary > models.SalaryCap {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("locked players cost %d, over the %d cap", partial.salary, models.SalaryCap))
	}

	if cheapest, ok := cheapestRosterSalary(byPosition, partial); ok && cheapest > models.SalaryCap {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("cheapest possible roster costs %d, over the %d cap", cheapest, models.SalaryCap))
	}

	return report
}

// cheapestRosterSalary fills the open slots with the cheapest unused players.
func cheapestRosterSalary(byPosition map[models.Position][]models.Player, locked *partialLineup) (int, bool) {
	sorted := make(map[models.Position][]models.Player, len(byPosition))
	for pos, players := range byPosition {
		cp := make([]models.Player, len(players))
		copy(cp, players)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].Salary < cp[j].Salary })
		sorted[pos] = cp
	}

	used := make(map[string]bool, len(locked.used))
	for id := range locked.used {
		used[id] = true
	}
	total := locked.salary

	for _, slot := range nflSlots {
		if locked.isFilled(slot.SlotName) {
			continue
		}
		var pick *models.Player
		for _, pos := range slot.AllowedPositions {
			for i := range sorted[pos] {
				p := &sorted[pos][i]
				if used[p.ID] {
					continue
				}
				if pick == nil || p.Salary < pick.Salary {
					pick = p
				}
				break
			}
		}
		if pick == nil {
			return 0, false
		}
		used[pick.ID] = true
		total += pick.Salary
	}
	return total, true
}
