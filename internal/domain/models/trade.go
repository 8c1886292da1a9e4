package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// OpenTrade is a live position. The backend re-sends it on every price
// tick; it is keyed by Symbol.
type OpenTrade struct {
	Symbol        string          `json:"symbol"`
	Direction     Direction       `json:"direction"`
	Lot           float64         `json:"lot"`
	EntryPrice    float64         `json:"entry_price"`
	StopLoss      float64         `json:"stop_loss"`
	TakeProfit    float64         `json:"take_profit"`
	CurrentPrice  *float64        `json:"current_price,omitempty"`
	UnrealizedUSD decimal.Decimal `json:"unrealized_usd"`
	OpenedAt      time.Time       `json:"opened_at,omitempty"`
}

// ClosedTrade never changes once reported.
type ClosedTrade struct {
	Symbol      string          `json:"symbol"`
	Direction   Direction       `json:"direction"`
	Lot         float64         `json:"lot"`
	EntryPrice  float64         `json:"entry_price"`
	ClosedAt    time.Time       `json:"closed_at"`
	RealizedUSD decimal.Decimal `json:"realized_usd"`
}

// Won reports a positive realized result.
func (t ClosedTrade) Won() bool {
	return t.RealizedUSD.IsPositive()
}
