// Package metrics records policy evaluations as Prometheus metrics.
//
// A Recorder owns its own registry, so several recorders (one per test, one
// per server) never collide. It implements policy.Observer.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/depgate/depgate/pkg/defaults"
	"github.com/depgate/depgate/pkg/policy"
)

var _ policy.Observer = (*Recorder)(nil)

// Recorder collects evaluation metrics.
type Recorder struct {
	registry *prometheus.Registry

	evaluationsTotal *prometheus.CounterVec
	rulesTotal       *prometheus.CounterVec
	packagesTotal    prometheus.Counter

	lastPass         prometheus.Gauge
	lastPackages     prometheus.Gauge
	evaluationTime   prometheus.Histogram
	ruleEvaluateTime *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with a private registry.
func NewRecorder() (*Recorder, error) {
	ns := defaults.MetricsNamespace
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "evaluations_total",
			Help:      "Policy evaluations by outcome",
		}, []string{"result"}),
		rulesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rule_results_total",
			Help:      "Rule outcomes by rule label, action and result",
		}, []string{"rule", "action", "result"}),
		packagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "packages_evaluated_total",
			Help:      "Package records evaluated across all runs",
		}),
		lastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "last_verdict_pass",
			Help:      "1 if the most recent verdict passed, 0 otherwise",
		}),
		lastPackages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "last_verdict_packages",
			Help:      "Number of packages in the most recent evaluation",
		}),
		evaluationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "evaluation_duration_seconds",
			Help:      "Time to evaluate a rule set",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ruleEvaluateTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "rule_duration_seconds",
			Help:      "Time to evaluate a single rule",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.1},
		}, []string{"action"}),
	}

	collectors := []prometheus.Collector{
		r.evaluationsTotal,
		r.rulesTotal,
		r.packagesTotal,
		r.lastPass,
		r.lastPackages,
		r.evaluationTime,
		r.ruleEvaluateTime,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return r, nil
}

// ObserveRule records one rule outcome.
func (r *Recorder) ObserveRule(ra policy.RuleAction, elapsed time.Duration) {
	r.rulesTotal.WithLabelValues(ra.Label, string(ra.Action), result(ra.Pass)).Inc()
	r.ruleEvaluateTime.WithLabelValues(string(ra.Action)).Observe(elapsed.Seconds())
}

// ObserveVerdict records one completed evaluation.
func (r *Recorder) ObserveVerdict(v *policy.Verdict, packages int, elapsed time.Duration) {
	r.evaluationsTotal.WithLabelValues(result(v.Pass)).Inc()
	r.packagesTotal.Add(float64(packages))
	r.lastPackages.Set(float64(packages))
	if v.Pass {
		r.lastPass.Set(1)
	} else {
		r.lastPass.Set(0)
	}
	r.evaluationTime.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// WriteTextfile writes the current metrics to path, for node_exporter's
// textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

func result(pass bool) string {
	return strconv.FormatBool(pass)
}
