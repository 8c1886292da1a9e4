package usecase

import (
	"fmt"
	"strings"

	"EngineMirror/internal/domain/models"
)

type signalFields struct {
	Symbol              string   `json:"symbol"`
	Decision            string   `json:"decision"`
	EntryPrice          num      `json:"entry_price"`
	Entry               num      `json:"entry"`
	CurrentPrice        num      `json:"current_price"`
	StopLoss            num      `json:"stop_loss"`
	TakeProfit          num      `json:"take_profit"`
	RRRatio             num      `json:"rr_ratio"`
	Confidence          num      `json:"confidence"`
	PresentedConfidence num      `json:"presented_confidence"`
	LowConfidence       flexBool `json:"low_confidence"`
	TechnicalScore      num      `json:"technical_score"`
	TechScore           num      `json:"tech_score"`
	SentimentScore      num      `json:"sentiment_score"`
	Reasoning           string   `json:"reasoning"`
	UserMessage         string   `json:"user_message"`
	Timestamp           string   `json:"timestamp"`
}

// signalRow is either a flat signal or the wrapped form
// {symbol, display_name, timestamp, data:{...}}.
type signalRow struct {
	signalFields
	DisplayName string        `json:"display_name"`
	Data        *signalFields `json:"data"`
}

// DecodeSignals decodes /api/results.
func DecodeSignals(body []byte) (models.Payload, error) {
	rows, err := decodeList[signalRow](body)
	if err != nil {
		return nil, err
	}

	signals := make([]models.Signal, 0, len(rows))
	for i, row := range rows {
		f := row.signalFields
		if row.Data != nil {
			f = *row.Data
			f.Symbol = firstString(f.Symbol, row.Symbol)
			f.Timestamp = firstString(row.Timestamp, f.Timestamp)
		}
		if err := validate.Var(f.Symbol, "required"); err != nil {
			return nil, fmt.Errorf("row %d: symbol: %w", i, err)
		}
		signals = append(signals, toSignal(f, row.DisplayName))
	}
	return models.SignalsPayload{Signals: signals}, nil
}

func toSignal(f signalFields, displayName string) models.Signal {
	s := models.Signal{
		Symbol:         strings.TrimSpace(f.Symbol),
		DisplayName:    strings.TrimSpace(displayName),
		Decision:       ParseDecision(f.Decision),
		EntryPrice:     firstNum(f.EntryPrice, f.Entry, f.CurrentPrice).or(0),
		StopLoss:       f.StopLoss.or(0),
		TakeProfit:     f.TakeProfit.or(0),
		RRRatio:        clamp(f.RRRatio.or(0), 0, 1e6),
		Confidence:     clamp(firstNum(f.Confidence, f.PresentedConfidence).or(0), 0, 100),
		LowConfidence:  f.LowConfidence.v,
		TechnicalScore: clamp(firstNum(f.TechnicalScore, f.TechScore).or(0), 0, 100),
		SentimentScore: clamp(f.SentimentScore.or(0), 0, 100),
		Reasoning:      firstString(f.Reasoning, f.UserMessage),
		UserMessage:    strings.TrimSpace(f.UserMessage),
		ObservedAt:     optionalTime(f.Timestamp),
	}
	if p := f.PresentedConfidence.ptr(); p != nil {
		v := clamp(*p, 0, 100)
		s.PresentedConfidence = &v
	}
	if s.DisplayName == "" {
		s.DisplayName = s.Symbol
	}
	return s
}

// ParseDecision maps the engine's free-form decision to BUY, SELL or
// NEUTRAL. Anything containing BUY or SELL (STRONG_BUY, SELL_LIMIT) counts;
// PASS, WAIT, BEKLE and empty are NEUTRAL.
func ParseDecision(raw string) models.Decision {
	d := strings.ToUpper(raw)
	switch {
	case strings.Contains(d, "BUY"):
		return models.DecisionBuy
	case strings.Contains(d, "SELL"):
		return models.DecisionSell
	default:
		return models.DecisionNeutral
	}
}
