package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "modview_http_response_seconds",
			Help:    "http response time.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 30},
		},
	)

	totalHttpRequestsToRoute = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "modview_http_requests_to_route_total", Help: "http requests by code, route and method"},
		[]string{"code", "route", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "modview_http_requests_total", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	stageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "modview_stage_total", Help: "pipeline stages run by view and stage"},
		[]string{"view", "stage"},
	)

	shortCircuitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "modview_short_circuit_total", Help: "stages ended early by a module result"},
		[]string{"view", "stage", "module"},
	)

	storeFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "modview_store_fallback_total", Help: "single-record loads replaced by a new record"},
		[]string{"view", "model", "reason"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToRoute,
		totalHttpRequests,
		stageTotal,
		shortCircuitTotal,
		storeFallbackTotal,
	)
}
