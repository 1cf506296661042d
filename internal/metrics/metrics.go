// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Like outcomes
const (
	OutcomeRecorded     = "recorded"
	OutcomeMatched      = "matched"
	OutcomeAlreadyLiked = "already_liked"
	OutcomeFailed       = "failed"
)

var (
	// LikesTotal counts like attempts by outcome
	LikesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campus_match",
		Name:      "likes_total",
		Help:      "Like attempts by outcome.",
	}, []string{"outcome"})

	// MatchesFormed counts match records created
	MatchesFormed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campus_match",
		Name:      "matches_formed_total",
		Help:      "Match records created.",
	})

	// Unmatches counts matches moved to rejected
	Unmatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campus_match",
		Name:      "unmatches_total",
		Help:      "Matches removed by one of their members.",
	})

	// MessagesSent counts stored direct messages
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campus_match",
		Name:      "messages_sent_total",
		Help:      "Direct messages stored.",
	})

	// WSConnections tracks open WebSocket connections
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "campus_match",
		Name:      "ws_connections",
		Help:      "Open WebSocket connections.",
	})
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
