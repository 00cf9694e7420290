// Package assist – pipeline metrics
package assist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// repliesTotal counts finished pipeline runs by the path that produced
	// the reply (a classifier name, "entity", or "llm").
	repliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_replies_total",
			Help: "Replies produced by the assistant pipeline, by reply path.",
		},
		[]string{"path"},
	)

	// upstreamErrorsTotal counts failures of external collaborators.
	upstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_upstream_errors_total",
			Help: "Errors returned by upstream providers, by provider.",
		},
		[]string{"provider"},
	)
)

// observeUpstream increments the provider error counter when err wraps an
// UpstreamError.
func observeUpstream(err error) {
	if err == nil {
		return
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		upstreamErrorsTotal.WithLabelValues(ue.Provider).Inc()
	}
}
