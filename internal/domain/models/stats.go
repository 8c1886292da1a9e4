package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats is the engine's own account summary.
type Stats struct {
	TotalTrades int             `json:"total_trades"`
	SuccessRate float64         `json:"success_rate"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	OpenCount   int             `json:"open_count"`
	FreeBalance decimal.Decimal `json:"free_balance"`
}

type APIState string

const (
	APIUnknown APIState = "unknown"
	APIOnline  APIState = "online"
	APIOffline APIState = "offline"
)

// APIStatus is the engine reachability as seen through the status source.
type APIStatus struct {
	State     APIState  `json:"state"`
	Running   *bool     `json:"running,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
}
