package models

import "time"

// Decision is the engine's verdict for a symbol.
type Decision string

const (
	DecisionBuy     Decision = "BUY"
	DecisionSell    Decision = "SELL"
	DecisionNeutral Decision = "NEUTRAL"
)

// Signal is one row of the engine's analysis results.
type Signal struct {
	Symbol              string    `json:"symbol"`
	DisplayName         string    `json:"display_name,omitempty"`
	Decision            Decision  `json:"decision"`
	EntryPrice          float64   `json:"entry_price"`
	StopLoss            float64   `json:"stop_loss"`
	TakeProfit          float64   `json:"take_profit"`
	RRRatio             float64   `json:"rr_ratio"`
	Confidence          float64   `json:"confidence"`
	PresentedConfidence *float64  `json:"presented_confidence,omitempty"`
	LowConfidence       bool      `json:"low_confidence"`
	TechnicalScore      float64   `json:"technical_score"`
	SentimentScore      float64   `json:"sentiment_score"`
	Reasoning           string    `json:"reasoning,omitempty"`
	UserMessage         string    `json:"user_message,omitempty"`
	ObservedAt          time.Time `json:"observed_at,omitempty"`
}

// Actionable reports whether the signal asks for a position.
func (s Signal) Actionable() bool {
	return s.Decision == DecisionBuy || s.Decision == DecisionSell
}
