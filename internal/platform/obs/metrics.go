package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// OperationDuration tracks obs.Time spans.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "planner_operation_duration_seconds", Help: "Duration of timed internal operations.", Buckets: prometheus.DefBuckets},
		[]string{"op"},
	)

	// PlansTotal counts produced plans by transport mode and matrix source.
	PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_plans_total", Help: "Plans produced by mode and matrix source."},
		[]string{"mode", "source"},
	)
	// PlanFailures counts rejected planning requests by error kind.
	PlanFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_plan_failures_total", Help: "Planning requests that produced no plan."},
		[]string{"kind"},
	)
	// RoutingFallbacks counts matrices produced by the great-circle estimator.
	RoutingFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_routing_fallbacks_total", Help: "Routing provider failures recovered by the estimator."},
		[]string{"mode"},
	)
	// ScheduleWarnings counts early/late arrivals emitted in schedules.
	ScheduleWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_schedule_warnings_total", Help: "Schedule entries flagged with a warning."},
		[]string{"kind"},
	)
	// Deliveries counts itinerary delivery outcomes.
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "planner_deliveries_total", Help: "Itinerary deliveries by status."},
		[]string{"status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OperationDuration)
		Registry.MustRegister(PlansTotal)
		Registry.MustRegister(PlanFailures)
		Registry.MustRegister(RoutingFallbacks)
		Registry.MustRegister(ScheduleWarnings)
		Registry.MustRegister(Deliveries)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
