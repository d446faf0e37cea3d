// Package metrics exposes the Prometheus collectors of the user service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IdentityCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_cache_hits_total",
		Help: "Identity lookups answered from memory",
	})

	IdentityCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_cache_misses_total",
		Help: "Identity lookups that went to the store",
	})

	IdentityCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_cache_evictions_total",
		Help: "Users written back and evicted from memory",
	})

	IdentityCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "identity_cache_size",
		Help: "Users currently held in memory",
	})

	NotificationsPushed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_queue_pushed_total",
		Help: "Notifications routed to a recipient by message type and channel",
	}, []string{"type", "channel"})

	CommandResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "command_results_total",
		Help: "Command executions by command and outcome (ok, rejected, fault)",
	}, []string{"command", "outcome"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
