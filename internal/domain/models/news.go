package models

import "time"

type Impact string

const (
	ImpactLow    Impact = "LOW"
	ImpactMedium Impact = "MEDIUM"
	ImpactHigh   Impact = "HIGH"
)

type Action string

const (
	ActionLong    Action = "LONG"
	ActionShort   Action = "SHORT"
	ActionNeutral Action = "NEUTRAL"
)

// NewsItem is a scored headline. Symbols and Topics are deduplicated and
// keep their first-seen order.
type NewsItem struct {
	Title          string    `json:"title"`
	Source         string    `json:"source,omitempty"`
	Impact         Impact    `json:"impact"`
	SentimentScore float64   `json:"sentiment_score"`
	Action         Action    `json:"action"`
	Symbols        []string  `json:"symbols,omitempty"`
	Topics         []string  `json:"topics,omitempty"`
	PublishedAt    time.Time `json:"published_at,omitempty"`
	ObservedAt     time.Time `json:"observed_at,omitempty"`
}

// Mentions reports whether the item lists symbol.
func (n NewsItem) Mentions(symbol string) bool {
	for _, s := range n.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
