package usecase

import (
	"sort"
	"sync/atomic"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/repository"
)

// Store reconciles accepted outcomes into versioned snapshots. Apply must
// be called from a single goroutine; Snapshot may be called from any.
type Store struct {
	current atomic.Pointer[models.Snapshot]
	tailer  *LogTailer
	metrics repository.Metrics
	now     func() time.Time
}

// NewStore starts from an empty snapshot that already lists every source
// with its cadence so renderers can show "idle" before the first poll. A
// nil tailer gets the default cap.
func NewStore(tailer *LogTailer, metrics repository.Metrics, cadences map[models.SourceID]time.Duration) *Store {
	if tailer == nil {
		tailer = NewLogTailer(0)
	}
	if metrics == nil {
		metrics = repository.NopMetrics{}
	}
	s := &Store{tailer: tailer, metrics: metrics, now: time.Now}

	snap := models.EmptySnapshot()
	for id, cadence := range cadences {
		snap.Sources[id] = models.SourceStatus{ID: id, State: models.StateIdle, Cadence: cadence}
	}
	s.current.Store(snap)
	return s
}

// Snapshot returns the latest published snapshot.
func (s *Store) Snapshot() *models.Snapshot {
	return s.current.Load()
}

// Apply derives the next snapshot from the current one and publishes it.
// Only the slice owned by id is replaced. An error outcome leaves every
// data slice as it was and only updates connectivity.
func (s *Store) Apply(id models.SourceID, o models.Outcome) *models.Snapshot {
	next := Reconcile(s.current.Load(), id, o, s.tailer)
	next.UpdatedAt = s.now()
	s.current.Store(next)

	s.metrics.SetSnapshotVersion(next.Version)
	s.metrics.SetLogLines(len(next.Logs))
	return next
}

// Reconcile is the pure core of Apply: prev is never modified.
func Reconcile(prev *models.Snapshot, id models.SourceID, o models.Outcome, tailer *LogTailer) *models.Snapshot {
	if tailer == nil {
		tailer = NewLogTailer(0)
	}
	next := prev.Clone()
	next.Version = prev.Version + 1

	st := next.Source(id)
	st.ID = id
	st.Generation = o.Generation
	st.LastAttemptAt = o.At
	st.Latency = o.Latency

	if o.Err != nil {
		st.State = models.StateError
		st.LastError = o.Err.Error()
		st.LastErrorKind = o.Err.Kind
		next.Sources[id] = st
		if id == models.SourceAPIStatus {
			next.API = models.APIStatus{
				State:     models.APIOffline,
				Running:   prev.API.Running,
				CheckedAt: o.At,
			}
		}
		return next
	}

	st.State = models.StateOK
	st.LastSuccessAt = o.At
	st.LastError = ""
	st.LastErrorKind = ""
	next.Sources[id] = st

	switch p := o.Payload.(type) {
	case models.SignalsPayload:
		next.Signals = p.Signals
	case models.NewsPayload:
		next.News = p.Items
	case models.OpenTradesPayload:
		next.OpenTrades = uniqueBySymbol(p.Trades)
	case models.ClosedTradesPayload:
		next.ClosedTrades = sortClosed(p.Trades)
	case models.StatsPayload:
		stats := p.Stats
		next.Stats = &stats
	case models.StatusPayload:
		state := models.APIOnline
		if !p.OK {
			state = models.APIOffline
		}
		next.API = models.APIStatus{State: state, Running: p.Running, CheckedAt: o.At}
	case models.TerminalPayload:
		next.Logs = tailer.Merge(prev.Logs, p)
	}
	return next
}

// uniqueBySymbol keeps one trade per symbol at the position the symbol
// first appeared, holding the last row seen for it.
func uniqueBySymbol(trades []models.OpenTrade) []models.OpenTrade {
	index := make(map[string]int, len(trades))
	out := make([]models.OpenTrade, 0, len(trades))
	for _, t := range trades {
		if i, ok := index[t.Symbol]; ok {
			out[i] = t
			continue
		}
		index[t.Symbol] = len(out)
		out = append(out, t)
	}
	return out
}

// sortClosed orders by ClosedAt, most recent last; ties keep arrival order.
func sortClosed(trades []models.ClosedTrade) []models.ClosedTrade {
	out := make([]models.ClosedTrade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ClosedAt.Before(out[j].ClosedAt)
	})
	return out
}
