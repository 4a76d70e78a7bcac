package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// gatheredValue returns the value of the first sample of family name whose labels
// include want, or -1 when absent.
func gatheredValue(t *testing.T, reg *prom.Registry, name string, want map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return -1
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(OutcomeNavigated)
	pr.IncBuildOutcome(OutcomeFailed)
	pr.IncBuildOutcome(OutcomeFailed)
	pr.IncSessionWrite(true)
	pr.SetBuildInFlight(true)

	if got := gatheredValue(t, reg, "librarybuilder_submission_outcomes_total", map[string]string{"outcome": "failed"}); got != 2 {
		t.Fatalf("expected 2 failed outcomes, got %v", got)
	}
	if got := gatheredValue(t, reg, "librarybuilder_build_in_flight", nil); got != 1 {
		t.Fatalf("expected in-flight gauge 1, got %v", got)
	}
	pr.SetBuildInFlight(false)
	if got := gatheredValue(t, reg, "librarybuilder_build_in_flight", nil); got != 0 {
		t.Fatalf("expected in-flight gauge 0, got %v", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveBuildDuration(time.Second)
	pr.IncBuildOutcome(OutcomeFaulted)
	pr.IncSessionWrite(false)
	pr.SetBuildInFlight(true)
}

func TestHTTPHandler(t *testing.T) {
	reg := NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome(OutcomeRejected)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "librarybuilder_submission_outcomes_total") {
		t.Fatalf("expected outcome counter in scrape output")
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("expected runtime collector in scrape output")
	}
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
