package services

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
)

// PlayerExposure is how often a player was rostered across a batch.
type PlayerExposure struct {
	PlayerID   string          `json:"player_id"`
	PlayerName string          `json:"player_name"`
	Position   models.Position `json:"position"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

// CalculateExposures counts appearances per player, highest percentage first.
func CalculateExposures(lineups []models.Lineup) []PlayerExposure {
	if len(lineups) == 0 {
		return []PlayerExposure{}
	}

	byID := make(map[string]*PlayerExposure)
	order := make([]string, 0)
	for _, lineup := range lineups {
		for _, p := range lineup.Players() {
			exp, ok := byID[p.ID]
			if !ok {
				exp = &PlayerExposure{PlayerID: p.ID, PlayerName: p.Name(), Position: p.Position}
				byID[p.ID] = exp
				order = append(order, p.ID)
			}
			exp.Count++
		}
	}

	exposures := make([]PlayerExposure, 0, len(order))
	for _, id := range order {
		exp := byID[id]
		exp.Percentage = float64(exp.Count) / float64(len(lineups)) * 100
		exposures = append(exposures, *exp)
	}

	sort.SliceStable(exposures, func(i, j int) bool {
		return exposures[i].Count > exposures[j].Count
	})
	return exposures
}

// PortfolioSummary aggregates a batch for display.
type PortfolioSummary struct {
	Lineups            int     `json:"lineups"`
	MaxProjection      float64 `json:"max_projection"`
	MinProjection      float64 `json:"min_projection"`
	AvgProjection      float64 `json:"avg_projection"`
	ProjectionStdDev   float64 `json:"projection_std_dev"`
	AvgSalary          float64 `json:"avg_salary"`
	MinSalary          int     `json:"min_salary"`
	MaxSalary          int     `json:"max_salary"`
	AvgRemainingSalary float64 `json:"avg_remaining_salary"`
	UniquePlayers      int     `json:"unique_players"`
	QBOppDefConflicts  int     `json:"qb_opp_def_conflicts"`
}

// SummarizePortfolio computes batch statistics. An empty batch yields a zero summary.
func SummarizePortfolio(lineups []models.Lineup) PortfolioSummary {
	summary := PortfolioSummary{Lineups: len(lineups)}
	if len(lineups) == 0 {
		return summary
	}

	projections := make([]float64, len(lineups))
	salaries := make([]float64, len(lineups))
	players := make(map[string]struct{})
	for i, l := range lineups {
		projections[i] = l.TotalProjection
		salaries[i] = float64(l.TotalSalary)
		for _, id := range l.PlayerIDs() {
			players[id] = struct{}{}
		}
		if l.HasQBOppDefConflict() {
			summary.QBOppDefConflicts++
		}
	}

	summary.MaxProjection = floats.Max(projections)
	summary.MinProjection = floats.Min(projections)
	if len(lineups) > 1 {
		summary.AvgProjection, summary.ProjectionStdDev = stat.MeanStdDev(projections, nil)
	} else {
		summary.AvgProjection = projections[0]
	}
	summary.AvgSalary = stat.Mean(salaries, nil)
	summary.MinSalary = int(floats.Min(salaries))
	summary.MaxSalary = int(floats.Max(salaries))
	summary.AvgRemainingSalary = float64(models.SalaryCap) - summary.AvgSalary
	summary.UniquePlayers = len(players)

	return summary
}
