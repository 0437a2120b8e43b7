// Package metrics exposes Prometheus instruments for the ranking, scoring and
// session stages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the engine's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	rankCalls        *prometheus.CounterVec
	degradations     *prometheus.CounterVec
	fallbackPassages prometheus.Counter
	evaluationScores prometheus.Histogram
	sessionsCreated  prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rankCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docinsight",
			Name:      "rank_calls_total",
			Help:      "Passage ranking calls by the backend that produced the scores.",
		}, []string{"backend"}),
		degradations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docinsight",
			Name:      "backend_degradations_total",
			Help:      "Ranking calls where the configured backend failed and lexical overlap was used.",
		}, []string{"backend"}),
		fallbackPassages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docinsight",
			Name:      "fallback_passages_total",
			Help:      "Ranking calls where no passage cleared the similarity floor.",
		}),
		evaluationScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docinsight",
			Name:      "evaluation_score",
			Help:      "Distribution of challenge answer scores.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docinsight",
			Name:      "sessions_created_total",
			Help:      "Document sessions created.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.rankCalls, m.degradations, m.fallbackPassages, m.evaluationScores, m.sessionsCreated} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) RecordRank(backend string) {
	if m == nil {
		return
	}
	m.rankCalls.WithLabelValues(backend).Inc()
}

func (m *Metrics) RecordDegradation(backend string) {
	if m == nil {
		return
	}
	m.degradations.WithLabelValues(backend).Inc()
}

func (m *Metrics) RecordFallbackPassage() {
	if m == nil {
		return
	}
	m.fallbackPassages.Inc()
}

func (m *Metrics) RecordEvaluation(score int) {
	if m == nil {
		return
	}
	m.evaluationScores.Observe(float64(score))
}

func (m *Metrics) RecordSession() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}
