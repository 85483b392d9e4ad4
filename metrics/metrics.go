// Package metrics exposes Prometheus instrumentation for the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// SubmissionsTotal counts processed submissions by outcome:
	// scored, duplicate, undecodable, no_shape, error.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circler_submissions_total",
		Help: "Total submissions processed, partitioned by outcome",
	}, []string{"outcome"})

	// ChallengesFiredTotal counts day-boundary challenge events, manual
	// triggers included.
	ChallengesFiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "circler_challenges_fired_total",
		Help: "Total daily challenge events fired",
	})

	// ScoringDuration observes the wall time of the scoring pipeline.
	ScoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "circler_scoring_duration_seconds",
		Help:    "Duration of image scoring in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// Serve starts the metrics HTTP endpoint on addr. It blocks, so callers
// run it in a goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Infof("Metrics endpoint listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Metrics server stopped: %v", err)
	}
}
