// Package metrics defines the Prometheus collectors of a corpus run. Runs are
// batch jobs, so metrics live in a private registry that can be pushed to a
// Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the collectors for one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	DocumentsTotal    prometheus.Counter
	TokensTotal       prometheus.Counter
	WindowsTotal      prometheus.Counter
	PrunedTotal       prometheus.Counter
	RowsInsertedTotal *prometheus.CounterVec
	TableSize         prometheus.Gauge
	StageDuration     *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates the collectors and registers them in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		DocumentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "poio_documents_total",
				Help: "Total documents ingested.",
			},
		),
		TokensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "poio_tokens_total",
				Help: "Total tokens read from documents.",
			},
		),
		WindowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "poio_ngram_windows_total",
				Help: "Total n-gram windows counted.",
			},
		),
		PrunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "poio_ngrams_pruned_total",
				Help: "Total n-gram entries removed by cutoff.",
			},
		),
		RowsInsertedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poio_rows_inserted_total",
				Help: "Total n-gram rows written by sink.",
			},
			[]string{"sink"},
		),
		TableSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "poio_ngram_table_size",
				Help: "Number of distinct n-grams in the table.",
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "poio_stage_duration_seconds",
				Help:    "Duration of run stages in seconds.",
				Buckets: []float64{0.01, 0.1, 1, 10, 60, 300, 1800, 3600},
			},
			[]string{"stage"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.DocumentsTotal,
		m.TokensTotal,
		m.WindowsTotal,
		m.PrunedTotal,
		m.RowsInsertedTotal,
		m.TableSize,
		m.StageDuration,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddDocument records one ingested document.
func (m *Metrics) AddDocument(tokens, windows int) {
	if m == nil {
		return
	}
	m.DocumentsTotal.Inc()
	m.TokensTotal.Add(float64(tokens))
	m.WindowsTotal.Add(float64(windows))
}

// AddPruned records entries removed by a cutoff.
func (m *Metrics) AddPruned(n int) {
	if m == nil {
		return
	}
	m.PrunedTotal.Add(float64(n))
}

// SetTableSize records the current number of distinct n-grams.
func (m *Metrics) SetTableSize(n int) {
	if m == nil {
		return
	}
	m.TableSize.Set(float64(n))
}

// AddRows records rows written by a sink.
func (m *Metrics) AddRows(sink string, n int) {
	if m == nil {
		return
	}
	m.RowsInsertedTotal.WithLabelValues(sink).Add(float64(n))
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Push sends all collectors to a Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if m == nil {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
