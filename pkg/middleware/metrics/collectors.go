package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dispatch outcome labels.
const (
	OutcomeOK               = "ok"
	OutcomeMalformed        = "malformed_payload"
	OutcomeUnknownRoute     = "unknown_route"
	OutcomeUnknownOperation = "unknown_operation"
	OutcomeHandlerError     = "handler_error"
)

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	dispatchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_requests_total", Help: "dispatch requests by connector, operation, outcome"},
		[]string{"connector", "operation", "outcome"},
	)

	handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "handler_duration_seconds",
			Help:    "connector handler execution time.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"connector", "operation"},
	)
)

// CountDispatch records one dispatch attempt and its outcome.
func CountDispatch(connector, operation, outcome string) {
	dispatchRequests.WithLabelValues(connector, operation, outcome).Inc()
}

// ObserveHandler records one handler invocation's wall time.
func ObserveHandler(connector, operation string, seconds float64) {
	handlerDuration.WithLabelValues(connector, operation).Observe(seconds)
}

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		dispatchRequests,
		handlerDuration,
	)
}
