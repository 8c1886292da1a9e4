package usecase

import (
	"errors"
	"testing"
	"time"

	"EngineMirror/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	return NewStore(NewLogTailer(100), nil, map[models.SourceID]time.Duration{
		models.SourceSignals:   5 * time.Second,
		models.SourceAPIStatus: 3 * time.Second,
	})
}

func accepted(p models.Payload, gen uint64) models.Outcome {
	return models.Outcome{Payload: p, Generation: gen, At: t0}
}

func failed(id models.SourceID, kind models.ErrorKind, gen uint64) models.Outcome {
	return models.Outcome{
		Err:        models.NewFetchError(kind, id, errors.New("connection refused")),
		Generation: gen,
		At:         t0.Add(time.Second),
	}
}

func threeSignals() models.SignalsPayload {
	return models.SignalsPayload{Signals: []models.Signal{
		{Symbol: "GC=F", Decision: models.DecisionBuy, Confidence: 80},
		{Symbol: "EURUSD=X", Decision: models.DecisionSell, Confidence: 60},
		{Symbol: "BTC-USD", Decision: models.DecisionNeutral},
	}}
}

func TestStoreStartsIdle(t *testing.T) {
	s := newTestStore()
	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.Version)
	assert.Equal(t, models.APIUnknown, snap.API.State)
	assert.Equal(t, models.StateIdle, snap.Source(models.SourceSignals).State)
	assert.Equal(t, 5*time.Second, snap.Source(models.SourceSignals).Cadence)
}

func TestStoreErrorKeepsData(t *testing.T) {
	s := newTestStore()
	s.Apply(models.SourceSignals, accepted(threeSignals(), 1))

	snap := s.Apply(models.SourceSignals, failed(models.SourceSignals, models.ErrNetwork, 2))

	require.Len(t, snap.Signals, 3)
	st := snap.Source(models.SourceSignals)
	assert.Equal(t, models.StateError, st.State)
	assert.Equal(t, models.ErrNetwork, st.LastErrorKind)
	assert.Contains(t, st.LastError, "connection refused")
	assert.Equal(t, t0, st.LastSuccessAt, "last success survives the error")
	assert.Equal(t, uint64(2), st.Generation)
	assert.Equal(t, uint64(2), snap.Version)
}

func TestStoreIdempotentContent(t *testing.T) {
	s := newTestStore()
	a := s.Apply(models.SourceSignals, accepted(threeSignals(), 1))
	b := s.Apply(models.SourceSignals, accepted(threeSignals(), 2))

	assert.NotSame(t, a, b)
	assert.True(t, a.SameContent(b))
	assert.Equal(t, a.Version+1, b.Version)
}

func TestStorePartialReplacement(t *testing.T) {
	s := newTestStore()
	a := s.Apply(models.SourceSignals, accepted(threeSignals(), 1))
	b := s.Apply(models.SourceStats, accepted(models.StatsPayload{Stats: models.Stats{TotalTrades: 3}}, 1))

	require.Len(t, b.Signals, 3)
	assert.Same(t, &a.Signals[0], &b.Signals[0], "untouched slice is shared")
	require.NotNil(t, b.Stats)
	assert.Equal(t, 3, b.Stats.TotalTrades)
	assert.Nil(t, a.Stats, "previous snapshot unchanged")
}

func TestStoreStatusFlipsAPI(t *testing.T) {
	s := newTestStore()
	running := true
	snap := s.Apply(models.SourceAPIStatus, accepted(models.StatusPayload{OK: true, Running: &running}, 1))
	assert.Equal(t, models.APIOnline, snap.API.State)

	snap = s.Apply(models.SourceAPIStatus, failed(models.SourceAPIStatus, models.ErrHTTPStatus, 2))
	assert.Equal(t, models.APIOffline, snap.API.State)
	require.NotNil(t, snap.API.Running)
	assert.True(t, *snap.API.Running)

	snap = s.Apply(models.SourceSignals, failed(models.SourceSignals, models.ErrNetwork, 1))
	assert.Equal(t, models.APIOffline, snap.API.State, "other sources do not touch api state")
}

func TestStoreClosedTradesChronological(t *testing.T) {
	s := newTestStore()
	trades := []models.ClosedTrade{
		{Symbol: "C", ClosedAt: t0.Add(2 * time.Hour), RealizedUSD: decimal.NewFromInt(10)},
		{Symbol: "A", ClosedAt: t0},
		{Symbol: "B1", ClosedAt: t0.Add(time.Hour)},
		{Symbol: "B2", ClosedAt: t0.Add(time.Hour)},
	}
	snap := s.Apply(models.SourceClosedTrades, accepted(models.ClosedTradesPayload{Trades: trades}, 1))

	var order []string
	for _, tr := range snap.ClosedTrades {
		order = append(order, tr.Symbol)
	}
	assert.Equal(t, []string{"A", "B1", "B2", "C"}, order)
	assert.Equal(t, "C", trades[0].Symbol, "payload slice not reordered")
}

func TestStoreOpenTradesKeyedBySymbol(t *testing.T) {
	s := newTestStore()
	p1, p2 := 1.0, 2.0
	snap := s.Apply(models.SourceOpenTrades, accepted(models.OpenTradesPayload{Trades: []models.OpenTrade{
		{Symbol: "GC=F", CurrentPrice: &p1},
		{Symbol: "ETH-USD"},
		{Symbol: "GC=F", CurrentPrice: &p2},
	}}, 1))

	require.Len(t, snap.OpenTrades, 2)
	assert.Equal(t, "GC=F", snap.OpenTrades[0].Symbol)
	assert.Equal(t, 2.0, *snap.OpenTrades[0].CurrentPrice)
	assert.Equal(t, "ETH-USD", snap.OpenTrades[1].Symbol)
}

func TestStoreTerminalFeedsTailer(t *testing.T) {
	s := newTestStore()
	s.Apply(models.SourceTerminal, accepted(models.TerminalPayload{Lines: []string{"INFO: a", "ERROR: b"}}, 1))
	snap := s.Apply(models.SourceTerminal, accepted(models.TerminalPayload{Lines: []string{"ERROR: b", "WARNING: c"}}, 2))

	require.Len(t, snap.Logs, 3)
	assert.Equal(t, models.SeverityWarn, snap.Logs[2].Severity)
	assert.Equal(t, []models.LogLine{snap.Logs[2]}, snap.LogsSince(2))
}

func TestStoreStatusNotOKIsOffline(t *testing.T) {
	s := newTestStore()
	p, err := DecodeStatus([]byte(`{"ok":false,"running":false}`))
	require.NoError(t, err)

	snap := s.Apply(models.SourceAPIStatus, accepted(p, 1))
	assert.Equal(t, models.APIOffline, snap.API.State)
	require.NotNil(t, snap.API.Running)
	assert.False(t, *snap.API.Running)
	assert.Equal(t, models.StateOK, snap.Source(models.SourceAPIStatus).State, "the poll itself succeeded")

	p, err = DecodeStatus([]byte(`{"running":true}`))
	require.NoError(t, err)
	snap = s.Apply(models.SourceAPIStatus, accepted(p, 2))
	assert.Equal(t, models.APIOnline, snap.API.State, "missing ok means online")
}

func TestStoreWithoutTailerUsesDefault(t *testing.T) {
	s := NewStore(nil, nil, nil)
	snap := s.Apply(models.SourceTerminal, accepted(models.TerminalPayload{Lines: []string{"INFO: up", "ERROR: down"}}, 1))
	require.Len(t, snap.Logs, 2)
	assert.Equal(t, models.SeverityError, snap.Logs[1].Severity)

	snap = Reconcile(snap, models.SourceTerminal, accepted(models.TerminalPayload{Lines: []string{"ERROR: down", "WARN: slow"}}, 2), nil)
	assert.Equal(t, []uint64{1, 2, 3}, seqs(snap.Logs))
}
