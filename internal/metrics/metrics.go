// Package metrics exposes Prometheus instruments for the globe engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_fetches_total",
		Help: "Total data source fetches by operation",
	}, []string{"op"})
	FetchFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_fetch_failures_total",
		Help: "Total failed data source fetches by operation",
	}, []string{"op"})
	FetchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "globe_fetch_duration_ms",
		Help:    "Data source fetch duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"op"})
	StaleResponsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_stale_responses_total",
		Help: "Detail responses discarded because the selection moved on",
	}, []string{"op"})
	TicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "globe_ticks_total",
		Help: "Animation ticks consumed",
	})
	VisiblePoints = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_visible_points",
		Help: "Points in the most recently projected frame",
	})
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "globe_stream_clients",
		Help: "Connected SSE render surfaces",
	})
)

func init() {
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(StaleResponsesTotal)
	prometheus.MustRegister(TicksTotal)
	prometheus.MustRegister(VisiblePoints)
	prometheus.MustRegister(StreamClients)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
