package metrics

import (
	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	polls        *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	skippedTicks *prometheus.CounterVec
	discarded    *prometheus.CounterVec
	sourceUp     *prometheus.GaugeVec
	version      prometheus.Gauge
	logLines     prometheus.Gauge
}

var _ repository.Metrics = (*Recorder)(nil)

// New registers the mirror's collectors with reg. A nil reg means the
// default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		polls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirror_polls_total",
				Help: "Completed polls by source and result",
			},
			[]string{"source", "result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mirror_poll_duration_seconds",
				Help:    "Round trip time of accepted polls",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"source"},
		),
		skippedTicks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirror_skipped_ticks_total",
				Help: "Ticks that fired while a request was still in flight",
			},
			[]string{"source"},
		),
		discarded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirror_discarded_completions_total",
				Help: "Completions dropped without touching the snapshot",
			},
			[]string{"source", "kind"},
		),
		sourceUp: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mirror_source_up",
				Help: "1 if the last accepted poll of the source succeeded",
			},
			[]string{"source"},
		),
		version: f.NewGauge(prometheus.GaugeOpts{
			Name: "mirror_snapshot_version",
			Help: "Version of the latest published snapshot",
		}),
		logLines: f.NewGauge(prometheus.GaugeOpts{
			Name: "mirror_log_lines",
			Help: "Terminal lines currently retained",
		}),
	}
}

func (r *Recorder) RecordPoll(source models.SourceID, result string) {
	r.polls.WithLabelValues(string(source), result).Inc()
}

// RecordLatency records poll latency in seconds.
func (r *Recorder) RecordLatency(source models.SourceID, seconds float64) {
	r.latency.WithLabelValues(string(source)).Observe(seconds)
}

func (r *Recorder) RecordSkippedTick(source models.SourceID) {
	r.skippedTicks.WithLabelValues(string(source)).Inc()
}

func (r *Recorder) RecordStale(source models.SourceID, kind models.ErrorKind) {
	r.discarded.WithLabelValues(string(source), string(kind)).Inc()
}

func (r *Recorder) SetSourceUp(source models.SourceID, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	r.sourceUp.WithLabelValues(string(source)).Set(v)
}

func (r *Recorder) SetSnapshotVersion(version uint64) {
	r.version.Set(float64(version))
}

func (r *Recorder) SetLogLines(n int) {
	r.logLines.Set(float64(n))
}
