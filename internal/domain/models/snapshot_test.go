package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotWithLogs(seqs ...uint64) *Snapshot {
	s := EmptySnapshot()
	for _, q := range seqs {
		s.Logs = append(s.Logs, LogLine{Text: "line", Severity: SeverityInfo, Sequence: q})
	}
	return s
}

func TestLogsSince(t *testing.T) {
	s := snapshotWithLogs(3, 4, 7, 9)

	tests := []struct {
		after uint64
		want  []uint64
	}{
		{0, []uint64{3, 4, 7, 9}},
		{3, []uint64{4, 7, 9}},
		{5, []uint64{7, 9}},
		{9, nil},
		{100, nil},
	}
	for _, tt := range tests {
		var got []uint64
		for _, l := range s.LogsSince(tt.after) {
			got = append(got, l.Sequence)
		}
		assert.Equal(t, tt.want, got, "after=%d", tt.after)
	}
	assert.Equal(t, uint64(9), s.HighestSequence())
	assert.Equal(t, uint64(0), EmptySnapshot().HighestSequence())
}

func TestSameContentIgnoresVersionAndSources(t *testing.T) {
	a := EmptySnapshot()
	a.Signals = []Signal{{Symbol: "EURUSD", Decision: DecisionBuy, Confidence: 70}}
	a.Stats = &Stats{TotalTrades: 2, TotalProfit: decimal.RequireFromString("10.5")}

	b := a.Clone()
	b.Version = a.Version + 1
	b.Sources[SourceSignals] = SourceStatus{ID: SourceSignals, State: StateOK, Generation: 4}

	assert.True(t, a.SameContent(b))

	b.Signals = []Signal{{Symbol: "EURUSD", Decision: DecisionSell, Confidence: 70}}
	assert.False(t, a.SameContent(b))
}

func TestCloneDetachesSources(t *testing.T) {
	a := EmptySnapshot()
	a.Sources[SourceNews] = SourceStatus{ID: SourceNews, State: StateOK}

	b := a.Clone()
	b.Sources[SourceNews] = SourceStatus{ID: SourceNews, State: StateError}

	assert.Equal(t, StateOK, a.Source(SourceNews).State)
	assert.Equal(t, StateIdle, a.Source(SourceStats).State)
}

func TestOpenTradeLookup(t *testing.T) {
	s := EmptySnapshot()
	s.OpenTrades = []OpenTrade{{Symbol: "XAUUSD", Lot: 0.1}, {Symbol: "BTC-USD", Lot: 0.2}}

	tr, ok := s.OpenTrade("BTC-USD")
	require.True(t, ok)
	assert.Equal(t, 0.2, tr.Lot)

	_, ok = s.OpenTrade("ETH-USD")
	assert.False(t, ok)
}

func TestFetchErrorKinds(t *testing.T) {
	err := error(&FetchError{Kind: ErrHTTPStatus, Source: SourceStats, StatusCode: 503, Err: assert.AnError})
	assert.True(t, IsKind(err, ErrHTTPStatus))
	assert.False(t, IsKind(err, ErrDecode))
	assert.Contains(t, err.Error(), "http status 503")
	assert.ErrorIs(t, err, assert.AnError)

	assert.False(t, NewFetchError(ErrStale, SourceStats, nil).Surfaced())
	assert.True(t, NewFetchError(ErrNetwork, SourceStats, nil).Surfaced())
}

func TestStatusSourceAndPayload(t *testing.T) {
	assert.Contains(t, AllSources(), SourceAPIStatus)
	assert.Equal(t, SourceID("status"), SourceAPIStatus)
	assert.Equal(t, SourceAPIStatus, StatusPayload{}.SourceID())

	s := EmptySnapshot()
	s.Sources[SourceAPIStatus] = SourceStatus{ID: SourceAPIStatus, State: StateOK}
	assert.True(t, s.Source(SourceAPIStatus).Connected())
}
