package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	sessionWrites *prom.CounterVec
	inFlight      prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "librarybuilder",
			Name:      "build_duration_seconds",
			Help:      "Duration of library build calls",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "librarybuilder",
			Name:      "submission_outcomes_total",
			Help:      "Submissions by terminal outcome",
		}, []string{"outcome"}),
		sessionWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "librarybuilder",
			Name:      "session_writes_total",
			Help:      "Credential persistence attempts by result",
		}, []string{"result"}),
		inFlight: prom.NewGauge(prom.GaugeOpts{
			Namespace: "librarybuilder",
			Name:      "build_in_flight",
			Help:      "1 while a library build is outstanding",
		}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.sessionWrites, pr.inFlight)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncSessionWrite(success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.sessionWrites.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) SetBuildInFlight(inFlight bool) {
	if p == nil {
		return
	}
	if inFlight {
		p.inFlight.Set(1)
		return
	}
	p.inFlight.Set(0)
}
