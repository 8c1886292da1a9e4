package models

import "time"

// Payload is a decoded, validated response body. Each source produces
// exactly one payload type.
type Payload interface {
	SourceID() SourceID
}

type SignalsPayload struct{ Signals []Signal }

type NewsPayload struct{ Items []NewsItem }

type OpenTradesPayload struct{ Trades []OpenTrade }

type ClosedTradesPayload struct{ Trades []ClosedTrade }

type StatsPayload struct{ Stats Stats }

type StatusPayload struct {
	OK        bool
	Running   *bool
	Timestamp time.Time
}

// TerminalPayload is the raw log window. Offset, when the backend sends
// it, is the sequence number of Lines[0].
type TerminalPayload struct {
	Lines  []string
	Offset *uint64
}

func (SignalsPayload) SourceID() SourceID      { return SourceSignals }
func (NewsPayload) SourceID() SourceID         { return SourceNews }
func (OpenTradesPayload) SourceID() SourceID   { return SourceOpenTrades }
func (ClosedTradesPayload) SourceID() SourceID { return SourceClosedTrades }
func (StatsPayload) SourceID() SourceID        { return SourceStats }
func (StatusPayload) SourceID() SourceID       { return SourceAPIStatus }
func (TerminalPayload) SourceID() SourceID     { return SourceTerminal }

// Outcome is an accepted completion handed to the store. Exactly one of
// Payload and Err is set.
type Outcome struct {
	Payload    Payload
	Err        *FetchError
	Generation uint64
	At         time.Time
	Latency    time.Duration
}
