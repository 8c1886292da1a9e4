package usecase

import (
	"fmt"
	"strings"

	"EngineMirror/internal/domain/models"
	"EngineMirror/pkg/util"

	"github.com/shopspring/decimal"
)

type tradeRow struct {
	Symbol        string              `json:"symbol" validate:"required"`
	Direction     string              `json:"direction" validate:"required"`
	Lot           num                 `json:"lot"`
	PositionSize  num                 `json:"position_size"`
	Entry         num                 `json:"entry"`
	EntryPrice    num                 `json:"entry_price"`
	StopLoss      num                 `json:"stop_loss"`
	TakeProfit    num                 `json:"take_profit"`
	CurrentPrice  num                 `json:"current_price"`
	ProfitAmount  decimal.NullDecimal `json:"profit_amount"`
	UnrealizedUSD decimal.NullDecimal `json:"unrealized_usd"`
	RealizedUSD   decimal.NullDecimal `json:"realized_usd"`
	Status        string              `json:"status"`
	OpenedAt      string              `json:"opened_at"`
	Timestamp     string              `json:"timestamp"`
	ClosedAt      string              `json:"closed_at"`
}

func (r tradeRow) lot() float64 {
	return firstNum(r.Lot, r.PositionSize).or(0)
}

func (r tradeRow) entry() float64 {
	return firstNum(r.EntryPrice, r.Entry).or(0)
}

// DecodeOpenTrades decodes /api/trades/open.
func DecodeOpenTrades(body []byte) (models.Payload, error) {
	rows, err := decodeList[tradeRow](body)
	if err != nil {
		return nil, err
	}

	trades := make([]models.OpenTrade, 0, len(rows))
	for i, row := range rows {
		if row.Status != "" && !strings.EqualFold(row.Status, "OPEN") {
			return nil, fmt.Errorf("row %d: status %q in open trades", i, row.Status)
		}
		dir, err := parseDirection(row.Direction)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		trades = append(trades, models.OpenTrade{
			Symbol:        strings.TrimSpace(row.Symbol),
			Direction:     dir,
			Lot:           row.lot(),
			EntryPrice:    row.entry(),
			StopLoss:      row.StopLoss.or(0),
			TakeProfit:    row.TakeProfit.or(0),
			CurrentPrice:  row.CurrentPrice.ptr(),
			UnrealizedUSD: firstDecimal(row.UnrealizedUSD, row.ProfitAmount),
			OpenedAt:      optionalTime(firstString(row.OpenedAt, row.Timestamp)),
		})
	}
	return models.OpenTradesPayload{Trades: trades}, nil
}

// DecodeClosedTrades decodes /api/trades/closed. closed_at is required
// since closed trades are ordered by it.
func DecodeClosedTrades(body []byte) (models.Payload, error) {
	rows, err := decodeList[tradeRow](body)
	if err != nil {
		return nil, err
	}

	trades := make([]models.ClosedTrade, 0, len(rows))
	for i, row := range rows {
		if row.Status != "" && !strings.EqualFold(row.Status, "CLOSED") {
			return nil, fmt.Errorf("row %d: status %q in closed trades", i, row.Status)
		}
		dir, err := parseDirection(row.Direction)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		closedAt, ok := util.ParseTime(row.ClosedAt)
		if !ok {
			return nil, fmt.Errorf("row %d: closed_at %q is not a timestamp", i, row.ClosedAt)
		}
		trades = append(trades, models.ClosedTrade{
			Symbol:      strings.TrimSpace(row.Symbol),
			Direction:   dir,
			Lot:         row.lot(),
			EntryPrice:  row.entry(),
			ClosedAt:    closedAt,
			RealizedUSD: firstDecimal(row.RealizedUSD, row.ProfitAmount),
		})
	}
	return models.ClosedTradesPayload{Trades: trades}, nil
}

func parseDirection(raw string) (models.Direction, error) {
	d := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(d, "BUY"), d == "LONG":
		return models.DirectionBuy, nil
	case strings.Contains(d, "SELL"), d == "SHORT":
		return models.DirectionSell, nil
	default:
		return "", fmt.Errorf("direction %q is not BUY or SELL", raw)
	}
}

func firstDecimal(ds ...decimal.NullDecimal) decimal.Decimal {
	for _, d := range ds {
		if d.Valid {
			return d.Decimal
		}
	}
	return decimal.Zero
}
