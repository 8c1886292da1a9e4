package models

import (
	"reflect"
	"sort"
	"time"
)

// Snapshot is the canonical, render-ready view of the engine. A Snapshot
// is never mutated after it is published; every accepted update produces
// a new one that shares the untouched slices with its predecessor.
type Snapshot struct {
	Version      uint64                    `json:"version"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Signals      []Signal                  `json:"signals"`
	News         []NewsItem                `json:"news"`
	OpenTrades   []OpenTrade               `json:"open_trades"`
	ClosedTrades []ClosedTrade             `json:"closed_trades"`
	Stats        *Stats                    `json:"stats"`
	API          APIStatus                 `json:"api"`
	Logs         []LogLine                 `json:"logs"`
	Sources      map[SourceID]SourceStatus `json:"sources"`
}

// EmptySnapshot is the state before any source has answered.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		API:     APIStatus{State: APIUnknown},
		Sources: make(map[SourceID]SourceStatus),
	}
}

// LogsSince returns the retained lines with Sequence > seq. The result
// aliases the snapshot and must not be modified.
func (s *Snapshot) LogsSince(seq uint64) []LogLine {
	i := sort.Search(len(s.Logs), func(i int) bool {
		return s.Logs[i].Sequence > seq
	})
	return s.Logs[i:]
}

// HighestSequence is the sequence of the newest retained line, or 0.
func (s *Snapshot) HighestSequence() uint64 {
	if len(s.Logs) == 0 {
		return 0
	}
	return s.Logs[len(s.Logs)-1].Sequence
}

// OpenTrade looks up a live position by symbol.
func (s *Snapshot) OpenTrade(symbol string) (OpenTrade, bool) {
	for _, t := range s.OpenTrades {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return OpenTrade{}, false
}

// Source returns the connectivity metadata for id.
func (s *Snapshot) Source(id SourceID) SourceStatus {
	if st, ok := s.Sources[id]; ok {
		return st
	}
	return SourceStatus{ID: id, State: StateIdle}
}

// SameContent compares the mirrored data of two snapshots, ignoring
// Version, timestamps and connectivity metadata.
func (s *Snapshot) SameContent(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return reflect.DeepEqual(s.Signals, o.Signals) &&
		reflect.DeepEqual(s.News, o.News) &&
		reflect.DeepEqual(s.OpenTrades, o.OpenTrades) &&
		reflect.DeepEqual(s.ClosedTrades, o.ClosedTrades) &&
		reflect.DeepEqual(s.Stats, o.Stats) &&
		reflect.DeepEqual(s.Logs, o.Logs) &&
		s.API.State == o.API.State &&
		reflect.DeepEqual(s.API.Running, o.API.Running)
}

// Clone returns a shallow copy with its own Sources map, ready for the
// next version.
func (s *Snapshot) Clone() *Snapshot {
	next := *s
	next.Sources = make(map[SourceID]SourceStatus, len(s.Sources))
	for k, v := range s.Sources {
		next.Sources[k] = v
	}
	return &next
}
