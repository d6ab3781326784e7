package services

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/nfl-dfs-optimizer/internal/models"
	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/logger"
)

// Teams playing in open-air stadiums, where wind can suppress passing games.
var outdoorTeams = map[string]bool{
	"BUF": true, "GB": true, "CHI": true, "NE": true, "CLE": true, "PIT": true, "DEN": true,
	"KC": true, "TEN": true, "JAX": true, "CAR": true, "WAS": true, "PHI": true, "NYG": true,
	"NYJ": true, "MIA": true, "BAL": true, "CIN": true, "SF": true, "SEA": true, "TB": true,
}

// defenseRankings ranks opposing defenses against each position. 32 allows the most points.
var defenseRankings = map[models.Position]map[string]int{
	models.PositionQB: {"CAR": 30, "DEN": 28, "NE": 25, "LV": 24, "NYG": 22, "BUF": 5, "SF": 3, "DAL": 4},
	models.PositionRB: {"LAC": 29, "DET": 27, "MIA": 26, "HOU": 24, "TB": 22, "NO": 3, "BAL": 4, "SF": 5},
	models.PositionWR: {"CAR": 32, "NYG": 30, "DEN": 28, "CIN": 26, "TEN": 25, "BUF": 4, "SF": 2, "NE": 6},
	models.PositionTE: {"MIN": 30, "KC": 28, "SEA": 27, "DET": 25, "CLE": 23, "PHI": 3, "SF": 4, "CHI": 5},
}

const (
	goodMatchupRank = 24
	badMatchupRank  = 6
)

// NewsAnalyzer produces simulated news signals and projection adjustments.
// It is safe for concurrent use.
type NewsAnalyzer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
	logger *logrus.Logger
}

func NewNewsAnalyzer(rng *rand.Rand, log *logrus.Logger) *NewsAnalyzer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &NewsAnalyzer{
		rng:    rng,
		now:    func() time.Time { return time.Now().UTC() },
		logger: log,
	}
}

type playerAnalysis struct {
	indicator  models.NewsIndicator
	adjustment float64
	items      []models.NewsItem
}

// Analyze returns enriched copies of players; the input slice is left untouched.
// In auto mode adjustments are applied, in suggested mode only the news and indicator
// are attached, and off returns the players unchanged.
func (a *NewsAnalyzer) Analyze(players []models.Player, mode models.NewsMode) []models.Player {
	out := make([]models.Player, len(players))
	copy(out, players)
	if mode == models.NewsModeOff {
		return out
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	flagged := 0
	for i := range out {
		analysis := a.analyzePlayer(out[i])

		out[i].NewsItems = analysis.items
		out[i].NewsIndicator = ""
		if len(analysis.items) > 0 {
			out[i].NewsIndicator = analysis.indicator
			flagged++
		}
		if mode != models.NewsModeSuggested {
			out[i].ProjectionAdjustment = analysis.adjustment
		}
	}

	a.logger.WithFields(logrus.Fields{
		"players":   len(out),
		"flagged":   flagged,
		"news_mode": mode,
	}).Debug("News analysis complete")

	return out
}

func (a *NewsAnalyzer) newsItem(p models.Player, kind, text, source string, sentiment models.Sentiment, impact float64) models.NewsItem {
	return models.NewsItem{
		ID:        fmt.Sprintf("news-%s-%s", p.ID, kind),
		PlayerID:  p.ID,
		Text:      text,
		Source:    source,
		Timestamp: a.now(),
		Sentiment: sentiment,
		Impact:    impact,
	}
}

func (a *NewsAnalyzer) analyzePlayer(p models.Player) playerAnalysis {
	var res playerAnalysis
	r := a.rng

	weatherRisk := outdoorTeams[p.Team] && r.Float64() > 0.7

	rank := defenseRankings[p.Position][p.Opponent]
	goodMatchup := rank >= goodMatchupRank
	badMatchup := rank > 0 && rank <= badMatchupRank

	if goodMatchup && !weatherRisk && r.Float64() > 0.4 {
		if r.Float64() > 0.5 {
			res.indicator = models.NewsSmash
			res.adjustment = 3.0 + r.Float64()*2
		} else {
			res.indicator = models.NewsUpgrade
			res.adjustment = 1.5 + r.Float64()*2
		}
		allowed := 20 + r.Float64()*15
		res.items = append(res.items, a.newsItem(p, "matchup",
			fmt.Sprintf("Facing %s defense allowing most %s points (%.1f PPG)", p.Opponent, p.Position, allowed),
			"Matchup Analysis", models.SentimentPositive, res.adjustment*0.5))
	} else if badMatchup && r.Float64() > 0.5 {
		res.indicator = models.NewsDowngrade
		res.adjustment = -1.0 - r.Float64()*2
		res.items = append(res.items, a.newsItem(p, "matchup",
			fmt.Sprintf("Tough matchup against %s - top 5 defense vs %ss", p.Opponent, p.Position),
			"Matchup Analysis", models.SentimentNegative, res.adjustment))
	}

	if weatherRisk && (p.Position == models.PositionQB || p.Position == models.PositionWR || p.Position == models.PositionTE) {
		if res.indicator == "" || res.indicator == models.NewsUpgrade {
			res.indicator = models.NewsWeatherRisk
		}
		weather := -1.0 - r.Float64()*1.5
		res.adjustment += weather
		wind := 12 + r.Intn(10)
		res.items = append(res.items, a.newsItem(p, "weather",
			fmt.Sprintf("Outdoor game with %dmph wind expected", wind),
			"Weather Report", models.SentimentNegative, weather))
	}

	if r.Float64() > 0.85 {
		if r.Float64() > 0.4 {
			if r.Float64() > 0.5 {
				if res.indicator == "" {
					res.indicator = models.NewsUpgrade
				}
				role := 1.5 + r.Float64()*2
				res.adjustment += role
				res.items = append(res.items, a.newsItem(p, "role",
					"Teammate ruled OUT - increased target share expected",
					"Injury Report", models.SentimentPositive, role))
			}
		} else {
			res.indicator = models.NewsMonitor
			res.items = append(res.items, a.newsItem(p, "injury",
				"Questionable designation - monitor practice reports",
				"Injury Report", models.SentimentNeutral, 0))
		}
	}

	if p.Position == models.PositionDEF && r.Float64() > 0.7 && r.Float64() > 0.5 {
		res.indicator = models.NewsUpgrade
		res.adjustment = 1.5 + r.Float64()*1.5
		res.items = append(res.items, a.newsItem(p, "opp",
			fmt.Sprintf("Facing %s - high turnover rate offense", p.Opponent),
			"Opponent Analysis", models.SentimentPositive, res.adjustment))
	}

	res.adjustment = math.Round(res.adjustment*10) / 10
	return res
}

// IndicatorLabel is the human-readable name of a news indicator.
func IndicatorLabel(indicator models.NewsIndicator) string {
	switch indicator {
	case models.NewsSmash:
		return "Smash Spot"
	case models.NewsUpgrade:
		return "Upgrade"
	case models.NewsMonitor:
		return "Monitor"
	case models.NewsDowngrade:
		return "Downgrade"
	case models.NewsWeatherRisk:
		return "Weather Risk"
	default:
		return ""
	}
}
