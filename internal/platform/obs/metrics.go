package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	PlannedDays     *prometheus.CounterVec
	PlanDuration    prometheus.Histogram
	TravelFallbacks prometheus.Counter
	DroppedStops    prometheus.Counter
	PlanCollisions  prometheus.Counter
	FatigueUpdates  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PlannedDays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "planned_days_total",
				Help:      "Trip days finalized, by outcome.",
			},
			[]string{"outcome"},
		),
		PlanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_duration_seconds",
				Help:      "Wall time of a full trip planning run.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		TravelFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "travel_edge_fallbacks_total",
				Help:      "Travel graph edges replaced by the fixed estimate.",
			},
		),
		DroppedStops: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_stops_total",
				Help:      "Stops dropped because they could not fit opening hours.",
			},
		),
		PlanCollisions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plan_collisions_total",
				Help:      "Place ids found in more than one day of a finished trip.",
			},
		),
		FatigueUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fatigue_updates_total",
				Help:      "Fatigue samples applied, by energy estimation tier.",
			},
			[]string{"tier"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		m.PlannedDays,
		m.PlanDuration,
		m.TravelFallbacks,
		m.DroppedStops,
		m.PlanCollisions,
		m.FatigueUpdates,
		m.HTTPRequests,
	)

	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
