// Package metrics holds the Prometheus collectors for statement extraction.
// A nil *Extraction is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statement"

// Extraction groups the counters recorded by one extractor.
type Extraction struct {
	Pages      *prometheus.CounterVec
	Candidates *prometheus.CounterVec
	Skipped    *prometheus.CounterVec
	Duplicates prometheus.Counter
	Duration   prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Extraction {
	m := &Extraction{
		Pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_processed_total",
			Help:      "Pages processed, by extraction strategy.",
		}, []string{"strategy"}),
		Candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate transactions produced, by extraction strategy.",
		}, []string{"strategy"}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Rows or lines discarded, by reason.",
		}, []string{"reason"}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Candidates dropped by deduplication.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Wall time of a full extraction run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Pages, m.Candidates, m.Skipped, m.Duplicates, m.Duration)
	}
	return m
}

func (m *Extraction) PageProcessed(strategy string, candidates int) {
	if m == nil {
		return
	}
	m.Pages.WithLabelValues(strategy).Inc()
	if candidates > 0 {
		m.Candidates.WithLabelValues(strategy).Add(float64(candidates))
	}
}

func (m *Extraction) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.Skipped.WithLabelValues(reason).Inc()
}

func (m *Extraction) DuplicatesDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Duplicates.Add(float64(n))
}

func (m *Extraction) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.Duration.Observe(d.Seconds())
}
