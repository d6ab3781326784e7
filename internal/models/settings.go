package models

import (
	"fmt"
	"strings"
)

// NewsMode controls how enrichment adjustments reach the optimizer.
type NewsMode string

const (
	NewsModeAuto      NewsMode = "auto"
	NewsModeSuggested NewsMode = "suggested"
	NewsModeOff       NewsMode = "off"
)

const (
	MaxNumberOfLineups = 150
	MaxRandomness      = 20
)

// Settings tunes a single optimization batch.
type Settings struct {
	NumberOfLineups   int      `json:"number_of_lineups"`
	MaxPlayerExposure float64  `json:"max_player_exposure"`
	MinSalaryUsed     int      `json:"min_salary_used"`
	Randomness        float64  `json:"randomness"`
	MinUniquePlayers  int      `json:"min_unique_players"`
	AllowQBWithOppDef bool     `json:"allow_qb_with_opp_def"`
	NewsMode          NewsMode `json:"news_mode"`

	// EnforceMinSalary rejects lineups below MinSalaryUsed. Off by default.
	EnforceMinSalary bool `json:"enforce_min_salary"`

	// Seed pins the random source so a batch can be reproduced.
	Seed *int64 `json:"seed,omitempty"`
}

// DefaultSettings mirrors the defaults offered to users.
func DefaultSettings() Settings {
	return Settings{
		NumberOfLineups:   20,
		MaxPlayerExposure: 100,
		MinSalaryUsed:     MinSalaryDefault,
		Randomness:        5,
		MinUniquePlayers:  3,
		AllowQBWithOppDef: false,
		NewsMode:          NewsModeAuto,
	}
}

// IsDeterministic reports whether two runs over the same pool produce the same batch.
func (s Settings) IsDeterministic() bool {
	return s.Randomness == 0 || s.Seed != nil
}

// Validate checks that every field is inside its supported range.
func (s Settings) Validate() error {
	var problems []string

	if s.NumberOfLineups < 1 || s.NumberOfLineups > MaxNumberOfLineups {
		problems = append(problems, fmt.Sprintf("number_of_lineups must be between 1 and %d", MaxNumberOfLineups))
	}
	if s.MaxPlayerExposure < 0 || s.MaxPlayerExposure > 100 {
		problems = append(problems, "max_player_exposure must be between 0 and 100")
	}
	if s.MinSalaryUsed < 0 || s.MinSalaryUsed > SalaryCap {
		problems = append(problems, fmt.Sprintf("min_salary_used must be between 0 and %d", SalaryCap))
	}
	if s.Randomness < 0 || s.Randomness > MaxRandomness {
		problems = append(problems, fmt.Sprintf("randomness must be between 0 and %d", MaxRandomness))
	}
	if s.MinUniquePlayers < 1 || s.MinUniquePlayers > LineupSize {
		problems = append(problems, fmt.Sprintf("min_unique_players must be between 1 and %d", LineupSize))
	}
	switch s.NewsMode {
	case "", NewsModeAuto, NewsModeSuggested, NewsModeOff:
	default:
		problems = append(problems, "news_mode must be one of auto, suggested, off")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}
	return nil
}
