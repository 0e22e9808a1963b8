package observability

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	Sequences    *prometheus.CounterVec
	SequenceLen  *prometheus.HistogramVec
	RunsStarted  *prometheus.CounterVec
	RunsFinished *prometheus.CounterVec
	Comparisons  *prometheus.CounterVec
	Swaps        *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	Transitions  *prometheus.CounterVec

	starts sync.Map // run id -> start time of the RunEvent
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Sequences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepviz_sequences_total",
			Help: "Materialized sequences handed out, by algorithm and cache hit.",
		}, []string{"algorithm", "cached"}),
		SequenceLen: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stepviz_sequence_steps",
			Help:    "Number of steps per materialized sequence.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"algorithm"}),
		RunsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepviz_runs_started_total",
			Help: "Live runs started.",
		}, []string{"algorithm"}),
		RunsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepviz_runs_finished_total",
			Help: "Live runs terminated, by status.",
		}, []string{"algorithm", "status"}),
		Comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepviz_run_comparisons_total",
			Help: "Comparisons performed by terminated live runs.",
		}, []string{"algorithm"}),
		Swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepviz_run_swaps_total",
			Help: "Swaps and moves performed by terminated live runs.",
		}, []string{"algorithm"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stepviz_run_duration_seconds",
			Help:    "Wall-clock duration of live runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"algorithm", "status"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stepviz_player_transitions_total",
			Help: "Step player state transitions, by target state.",
		}, []string{"to"}),
	}
	m.registry.MustRegister(
		m.Sequences, m.SequenceLen,
		m.RunsStarted, m.RunsFinished, m.Comparisons, m.Swaps, m.RunDuration,
		m.Transitions,
	)
	return m
}

// Registry exposes the registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequence: func(_ context.Context, e *domain.SequenceEvent) {
			m.Sequences.WithLabelValues(e.Algorithm, strconv.FormatBool(e.Cached)).Inc()
			m.SequenceLen.WithLabelValues(e.Algorithm).Observe(float64(e.Steps))
		},
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.starts.Store(e.RunID, e.Timestamp)
			m.RunsStarted.WithLabelValues(e.Algorithm).Inc()
		},
		OnRunFinish: func(_ context.Context, e *domain.RunEvent) {
			status := string(e.Status)
			m.RunsFinished.WithLabelValues(e.Algorithm, status).Inc()
			m.Comparisons.WithLabelValues(e.Algorithm).Add(float64(e.Stats.Comparisons))
			m.Swaps.WithLabelValues(e.Algorithm).Add(float64(e.Stats.Swaps))
			if v, ok := m.starts.LoadAndDelete(e.RunID); ok {
				d := e.Timestamp.Sub(v.(time.Time))
				m.RunDuration.WithLabelValues(e.Algorithm, status).Observe(d.Seconds())
			}
		},
		OnPlayerState: func(_ context.Context, e *domain.PlayerEvent) {
			m.Transitions.WithLabelValues(e.To).Inc()
		},
	}
}
