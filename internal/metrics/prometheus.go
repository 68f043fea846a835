package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "doclink"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	stageDuration  *prom.HistogramVec
	stageResults   *prom.CounterVec
	derived        *prom.CounterVec
	diagnostics    *prom.CounterVec
	collectionSize prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg. A
// nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual resolution stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage results by outcome",
	}, []string{"stage", "result"})
	pr.derived = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "derived_doclets_total",
		Help:      "Doclets materialized by resolution, by derivation",
	}, []string{"derivation"})
	pr.diagnostics = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "diagnostics_total",
		Help:      "Diagnostics reported during resolution, by code",
	}, []string{"code"})
	pr.collectionSize = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "collection_doclets",
		Help:      "Number of doclets in the last resolved collection",
	})
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.derived, pr.diagnostics, pr.collectionSize)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) AddDerived(derivation string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.derived.WithLabelValues(derivation).Add(float64(n))
}

func (p *PrometheusRecorder) AddDiagnostics(code string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.diagnostics.WithLabelValues(code).Add(float64(n))
}

func (p *PrometheusRecorder) SetCollectionSize(n int) {
	if p == nil {
		return
	}
	p.collectionSize.Set(float64(n))
}

// WriteTextfile writes the registry in the text exposition format, for a
// node_exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
