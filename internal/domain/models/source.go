package models

import "time"

// SourceID names one polled backend endpoint.
type SourceID string

const (
	SourceSignals      SourceID = "signals"
	SourceNews         SourceID = "news"
	SourceAPIStatus    SourceID = "status"
	SourceOpenTrades   SourceID = "trades-open"
	SourceClosedTrades SourceID = "trades-closed"
	SourceStats        SourceID = "stats"
	SourceTerminal     SourceID = "terminal-log"
)

// AllSources lists every source in display order.
func AllSources() []SourceID {
	return []SourceID{
		SourceSignals,
		SourceNews,
		SourceAPIStatus,
		SourceOpenTrades,
		SourceClosedTrades,
		SourceStats,
		SourceTerminal,
	}
}

// SourceState is a step in the per-source polling state machine:
//
//	idle -> fetching -> ok|error -> (tick) fetching ...
//	any  -> stopped
type SourceState string

const (
	StateIdle     SourceState = "idle"
	StateFetching SourceState = "fetching"
	StateOK       SourceState = "ok"
	StateError    SourceState = "error"
	StateStopped  SourceState = "stopped"
)

// SourceStatus is the connectivity metadata published with every snapshot.
type SourceStatus struct {
	ID            SourceID      `json:"id"`
	State         SourceState   `json:"state"`
	Generation    uint64        `json:"generation"`
	LastSuccessAt time.Time     `json:"last_success_at,omitempty"`
	LastAttemptAt time.Time     `json:"last_attempt_at,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
	LastErrorKind ErrorKind     `json:"last_error_kind,omitempty"`
	Latency       time.Duration `json:"latency_ns,omitempty"`
	Cadence       time.Duration `json:"cadence_ns"`
}

// Connected reports whether the most recent accepted attempt succeeded.
func (s SourceStatus) Connected() bool {
	return s.State == StateOK
}
