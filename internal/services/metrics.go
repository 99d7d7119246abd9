package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	refreshes      *prometheus.CounterVec
	droppedRefresh prometheus.Counter
	cacheLookups   *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	fetchFailures  *prometheus.CounterVec
}

// NewMetrics registers the widget collectors with reg. A nil reg yields
// working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_widget_refreshes_total",
			Help: "Completed refresh cycles by outcome",
		}, []string{"outcome"}),
		droppedRefresh: factory.NewCounter(prometheus.CounterOpts{
			Name: "weather_widget_refreshes_dropped_total",
			Help: "Refresh requests dropped because a refresh was already in flight",
		}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_widget_cache_lookups_total",
			Help: "Forecast cache lookups by result",
		}, []string{"result"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "weather_widget_fetch_duration_seconds",
			Help:    "Forecast fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_widget_fetch_failures_total",
			Help: "Failed forecast fetches by error kind",
		}, []string{"kind"}),
	}
}
