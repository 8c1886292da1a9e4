package poller

import (
	"context"
	"net/http"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/pkg/config"
)

// Spec describes one polled endpoint.
type Spec struct {
	ID      models.SourceID
	Path    string
	Method  string
	Cadence time.Duration
	Timeout time.Duration
	Enabled bool
}

// RequestTimeout bounds a single request: the configured timeout, never
// longer than the cadence.
func (s Spec) RequestTimeout() time.Duration {
	if s.Timeout <= 0 || s.Timeout > s.Cadence {
		return s.Cadence
	}
	return s.Timeout
}

var endpointPaths = map[models.SourceID]string{
	models.SourceSignals:      "/api/results",
	models.SourceNews:         "/api/news",
	models.SourceAPIStatus:    "/api/status",
	models.SourceOpenTrades:   "/api/trades/open",
	models.SourceClosedTrades: "/api/trades/closed",
	models.SourceStats:        "/api/stats",
	models.SourceTerminal:     "/api/terminal",
}

// SpecsFromConfig builds one Spec per known source, in display order.
func SpecsFromConfig(cfg *config.Config) []Spec {
	specs := make([]Spec, 0, len(endpointPaths))
	for _, id := range models.AllSources() {
		sc := cfg.Sources[string(id)]
		specs = append(specs, Spec{
			ID:      id,
			Path:    endpointPaths[id],
			Method:  http.MethodGet,
			Cadence: sc.Cadence,
			Timeout: sc.Timeout,
			Enabled: sc.IsEnabled(),
		})
	}
	return specs
}

// Cadences maps each spec to its cadence.
func Cadences(specs []Spec) map[models.SourceID]time.Duration {
	out := make(map[models.SourceID]time.Duration, len(specs))
	for _, s := range specs {
		out[s.ID] = s.Cadence
	}
	return out
}

// source is the scheduler's mutable per-endpoint state. Only the event
// loop touches it.
type source struct {
	spec       Spec
	state      models.SourceState
	settled    models.SourceState // last non-fetching state
	generation uint64
	cancel     context.CancelFunc
	inFlight   bool

	lastSuccessAt time.Time
	lastAttemptAt time.Time
	lastErr       *models.FetchError
	latency       time.Duration
	skipped       uint64
	stale         uint64
}

func newSource(spec Spec) *source {
	return &source{spec: spec, state: models.StateIdle, settled: models.StateIdle}
}
