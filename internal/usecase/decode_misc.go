package usecase

import (
	"errors"
	"strings"

	"EngineMirror/internal/domain/models"

	"github.com/shopspring/decimal"
)

type statsDTO struct {
	TotalTrades *int                `json:"total_trades" validate:"omitempty,min=0"`
	SuccessRate num                 `json:"success_rate"`
	TotalProfit decimal.NullDecimal `json:"total_profit"`
	OpenCount   *int                `json:"open_count" validate:"omitempty,min=0"`
	FreeBalance decimal.NullDecimal `json:"free_balance"`
}

// DecodeStats decodes /api/stats. total_trades is the one field the engine
// always sends; without it the body is not a stats document.
func DecodeStats(body []byte) (models.Payload, error) {
	var dto statsDTO
	if err := decodeStrict(body, &dto); err != nil {
		return nil, err
	}
	if err := validate.Struct(&dto); err != nil {
		return nil, err
	}
	if dto.TotalTrades == nil {
		return nil, errors.New("total_trades missing")
	}

	stats := models.Stats{
		TotalTrades: *dto.TotalTrades,
		SuccessRate: clamp(dto.SuccessRate.or(0), 0, 100),
		TotalProfit: firstDecimal(dto.TotalProfit),
		FreeBalance: firstDecimal(dto.FreeBalance),
	}
	if dto.OpenCount != nil {
		stats.OpenCount = *dto.OpenCount
	}
	return models.StatsPayload{Stats: stats}, nil
}

type statusDTO struct {
	OK        flexBool `json:"ok"`
	Running   flexBool `json:"running"`
	Timestamp string   `json:"timestamp"`
}

// DecodeStatus decodes /api/status. Reaching this point already means the
// backend answered 2xx; the body only adds detail.
func DecodeStatus(body []byte) (models.Payload, error) {
	var dto statusDTO
	if err := decodeStrict(body, &dto); err != nil {
		return nil, err
	}
	return models.StatusPayload{
		OK:        !dto.OK.set || dto.OK.v,
		Running:   dto.Running.ptr(),
		Timestamp: optionalTime(dto.Timestamp),
	}, nil
}

type terminalDTO struct {
	Logs   *[]string `json:"logs"`
	Offset *int64    `json:"offset" validate:"omitempty,min=0"`
}

// DecodeTerminal decodes /api/terminal. Trailing newlines from the
// engine's readlines() are stripped.
func DecodeTerminal(body []byte) (models.Payload, error) {
	var dto terminalDTO
	if err := decodeStrict(body, &dto); err != nil {
		return nil, err
	}
	if err := validate.Struct(&dto); err != nil {
		return nil, err
	}
	if dto.Logs == nil {
		return nil, errors.New("logs missing")
	}

	lines := make([]string, 0, len(*dto.Logs))
	for _, l := range *dto.Logs {
		lines = append(lines, strings.TrimRight(l, "\r\n"))
	}
	p := models.TerminalPayload{Lines: lines}
	if dto.Offset != nil {
		off := uint64(*dto.Offset)
		p.Offset = &off
	}
	return p, nil
}
