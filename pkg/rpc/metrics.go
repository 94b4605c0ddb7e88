package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	transportHTTP = "http"
	transportWS   = "ws"

	outcomeSuccess = "success"
	outcomeRPCErr  = "rpc_error"
	outcomeFailure = "failure"
)

// Metrics holds the Prometheus collectors updated by the transports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	InFlight         prometheus.Gauge
	UnmatchedReplies prometheus.Counter
}

// NewMetrics registers the collectors on registry, or on the default
// registerer when registry is nil.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tm2_client_rpc_requests_total",
			Help: "The total number of JSON-RPC calls by transport, method and outcome",
		}, []string{"transport", "method", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tm2_client_rpc_request_duration_seconds",
			Help:    "Round-trip time of JSON-RPC calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"transport", "method"}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tm2_client_ws_inflight_requests",
			Help: "The current number of websocket calls awaiting a response",
		}),
		UnmatchedReplies: factory.NewCounter(prometheus.CounterOpts{
			Name: "tm2_client_ws_unmatched_responses_total",
			Help: "Responses discarded because no pending call had their id",
		}),
	}
}

func (m *Metrics) observe(transport, method string, res *Response, err error, started time.Time) {
	if m == nil {
		return
	}

	outcome := outcomeSuccess
	switch {
	case err != nil:
		outcome = outcomeFailure
	case res.Err() != nil:
		outcome = outcomeRPCErr
	}

	m.Requests.WithLabelValues(transport, method, outcome).Inc()
	m.RequestDuration.WithLabelValues(transport, method).Observe(time.Since(started).Seconds())
}

func (m *Metrics) inFlight(delta float64) {
	if m == nil {
		return
	}
	m.InFlight.Add(delta)
}

func (m *Metrics) unmatched() {
	if m == nil {
		return
	}
	m.UnmatchedReplies.Inc()
}
