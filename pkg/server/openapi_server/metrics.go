package openapi_server

import (
	"github.com/natevvv/indoor-routing/pkg/graph/path"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of the api, registered on the registerer given to NewMetrics
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	settledNodes prometheus.Histogram
	relaxedEdges prometheus.Histogram
	unreachable  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "indoor_routing",
			Name:      "requests_total",
			Help:      "Handled api requests by route and status code.",
		}, []string{"route", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "indoor_routing",
			Name:      "request_duration_seconds",
			Help:      "Latency of the api requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		settledNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "indoor_routing",
			Name:      "search_settled_nodes",
			Help:      "Settled nodes per path search.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		relaxedEdges: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "indoor_routing",
			Name:      "search_relaxed_edges",
			Help:      "Relaxed edges per path search.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		unreachable: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "indoor_routing",
			Name:      "unreachable_total",
			Help:      "Searches which found no path.",
		}),
	}
}

// observeSearch records the KPIs of a finished search. A nil receiver records nothing.
func (m *Metrics) observeSearch(kpis path.KPIs, found bool) {
	if m == nil {
		return
	}
	m.settledNodes.Observe(float64(kpis.SettledNodes))
	m.relaxedEdges.Observe(float64(kpis.RelaxedEdges))
	if !found {
		m.unreachable.Inc()
	}
}

func (m *Metrics) observeRequest(route string, code string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, code).Inc()
	m.duration.WithLabelValues(route).Observe(seconds)
}
