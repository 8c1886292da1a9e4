package usecase

import (
	"fmt"
	"strings"

	"EngineMirror/internal/domain/models"
)

type newsRow struct {
	Title          string  `json:"title" validate:"required"`
	Source         string  `json:"source"`
	Impact         string  `json:"impact"`
	ImpactLevel    string  `json:"impact_level"`
	Sentiment      num     `json:"sentiment"`
	SentimentScore num     `json:"sentiment_score"`
	Action         string  `json:"action"`
	Symbols        strList `json:"symbols"`
	Topics         strList `json:"topics"`
	PublishedAt    string  `json:"published_at"`
	Timestamp      string  `json:"timestamp"`
	CreatedAt      string  `json:"created_at"`
}

// DecodeNews decodes /api/news. An impact outside LOW/MEDIUM/HIGH fails
// the whole response; a missing impact is MEDIUM.
func DecodeNews(body []byte) (models.Payload, error) {
	rows, err := decodeList[newsRow](body)
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(rows))
	for i, row := range rows {
		impact, err := parseImpact(firstString(row.Impact, row.ImpactLevel))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		items = append(items, models.NewsItem{
			Title:          strings.TrimSpace(row.Title),
			Source:         strings.TrimSpace(row.Source),
			Impact:         impact,
			SentimentScore: clamp(firstNum(row.SentimentScore, row.Sentiment).or(0), -100, 100),
			Action:         parseAction(row.Action),
			Symbols:        row.Symbols,
			Topics:         row.Topics,
			PublishedAt:    optionalTime(row.PublishedAt),
			ObservedAt:     optionalTime(firstString(row.Timestamp, row.CreatedAt)),
		})
	}
	return models.NewsPayload{Items: items}, nil
}

func parseImpact(raw string) (models.Impact, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return models.ImpactMedium, nil
	case "LOW":
		return models.ImpactLow, nil
	case "MEDIUM":
		return models.ImpactMedium, nil
	case "HIGH":
		return models.ImpactHigh, nil
	default:
		return "", fmt.Errorf("impact %q is not LOW, MEDIUM or HIGH", raw)
	}
}

func parseAction(raw string) models.Action {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LONG", "BUY":
		return models.ActionLong
	case "SHORT", "SELL":
		return models.ActionShort
	default:
		return models.ActionNeutral
	}
}
