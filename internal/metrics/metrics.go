// Package metrics exposes Prometheus counters for the submission pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var submissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "refonte",
	Name:      "submissions_total",
	Help:      "Quiz submissions by outcome and failed stage.",
}, []string{"outcome", "stage"})

// ObserveSubmission counts one submission attempt.
func ObserveSubmission(outcome, stage string) {
	submissions.WithLabelValues(outcome, stage).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
