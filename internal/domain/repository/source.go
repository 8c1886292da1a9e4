package repository

import (
	"strings"

	"EngineMirror/internal/domain/models"
)

// IsValidSource returns true if id names a polled endpoint.
func IsValidSource(id models.SourceID) bool {
	for _, s := range models.AllSources() {
		if s == id {
			return true
		}
	}
	return false
}

// ParseSourceID accepts the canonical id as well as a few spellings used
// by the backend paths ("results", "terminal", "open", "closed").
func ParseSourceID(s string) (models.SourceID, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "results":
		return models.SourceSignals, true
	case "terminal", "logs":
		return models.SourceTerminal, true
	case "open", "trades_open":
		return models.SourceOpenTrades, true
	case "closed", "trades_closed":
		return models.SourceClosedTrades, true
	}
	id := models.SourceID(s)
	return id, IsValidSource(id)
}
