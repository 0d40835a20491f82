package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeChurn labels predictions that crossed the decision threshold.
	OutcomeChurn = "churn"
	// OutcomeRetain labels predictions below the decision threshold.
	OutcomeRetain = "retain"
	// OutcomeInvalid labels requests rejected by the schema validator.
	OutcomeInvalid = "invalid"
	// OutcomeError labels failed model calls.
	OutcomeError = "error"
)

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "churn_api",
			Name:      "predictions_total",
			Help:      "Total number of prediction requests, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	inferenceDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "churn_api",
			Name:      "inference_seconds",
			Help:      "Validation plus model latency in seconds.",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "churn_api",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, partitioned by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	modelInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "churn_api",
			Name:      "model_info",
			Help:      "Identity of the loaded model artifact; always 1.",
		},
		[]string{"name", "version"},
	)
)

// Register attaches churn-api collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		predictionsTotal,
		inferenceDurationSeconds,
		httpRequestsTotal,
		modelInfo,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePrediction records a prediction outcome. Duration is only observed for requests
// that reached the model.
func ObservePrediction(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeChurn, OutcomeRetain, OutcomeInvalid:
	default:
		outcome = OutcomeError
	}
	predictionsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeInvalid {
		return
	}
	if duration < 0 {
		duration = 0
	}
	inferenceDurationSeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest counts one served HTTP request.
func ObserveHTTPRequest(method, route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// SetModelInfo publishes the loaded artifact identity.
func SetModelInfo(name, version string) {
	modelInfo.Reset()
	modelInfo.WithLabelValues(name, version).Set(1)
}
