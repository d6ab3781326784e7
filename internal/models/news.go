package models

import "time"

type NewsIndicator string

const (
	NewsSmash       NewsIndicator = "smash"
	NewsUpgrade     NewsIndicator = "upgrade"
	NewsMonitor     NewsIndicator = "monitor"
	NewsDowngrade   NewsIndicator = "downgrade"
	NewsWeatherRisk NewsIndicator = "weather_risk"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// NewsItem is a single piece of rationale attached to a player during enrichment.
type NewsItem struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Sentiment Sentiment `json:"sentiment"`
	Impact    float64   `json:"impact"`
}
