package repository

import (
	"testing"

	"EngineMirror/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceID(t *testing.T) {
	tests := []struct {
		in   string
		want models.SourceID
		ok   bool
	}{
		{"signals", models.SourceSignals, true},
		{" Results ", models.SourceSignals, true},
		{"terminal", models.SourceTerminal, true},
		{"terminal-log", models.SourceTerminal, true},
		{"closed", models.SourceClosedTrades, true},
		{"stats", models.SourceStats, true},
		{"candles", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSourceID(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
