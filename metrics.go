package pennon

import (
	"strings"
	"time"

	"github.com/open-feature/go-sdk/openfeature"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric label values for the evaluated value kind.
const (
	kindLabelBoolean = "boolean"
	kindLabelString  = "string"
	kindLabelFloat   = "float"
	kindLabelInt     = "int"
	kindLabelObject  = "object"
)

// Metric label values for Init results.
const (
	initResultReady          = "ready"
	initResultTimeout        = "timeout"
	initResultFatal          = "fatal"
	initResultInvalidContext = "invalid_context"
)

const outcomeSuccess = "success"

// providerMetrics holds the Prometheus collectors for one provider
// instance. The collectors are registered on the Registerer supplied in
// ProviderConfig under a constant instance_id label, so several provider
// instances can share one Registerer; with none supplied they still record,
// they are just never scraped.
type providerMetrics struct {
	evaluations     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	initializations *prometheus.CounterVec
	events          *prometheus.CounterVec
	eventsDropped   prometheus.Counter
}

func newProviderMetrics(reg prometheus.Registerer, instanceID string) *providerMetrics {
	m := &providerMetrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pennon_provider_evaluations_total",
			Help: "Total number of flag evaluations by value kind and outcome.",
		}, []string{"kind", "outcome"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pennon_provider_evaluation_duration_seconds",
			Help:    "Flag evaluation latency in seconds by value kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),

		initializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pennon_provider_init_total",
			Help: "Total number of provider initializations by result.",
		}, []string{"result"}),

		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pennon_provider_events_total",
			Help: "Total number of lifecycle events emitted by type.",
		}, []string{"type"}),

		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pennon_provider_events_dropped_total",
			Help: "Total number of lifecycle events dropped because a subscriber channel was full.",
		}),
	}

	if reg != nil {
		prometheus.WrapRegistererWith(prometheus.Labels{"instance_id": instanceID}, reg).MustRegister(
			m.evaluations,
			m.duration,
			m.initializations,
			m.events,
			m.eventsDropped,
		)
	}

	return m
}

// recordEvaluation increments the evaluation counter and observes latency.
func (m *providerMetrics) recordEvaluation(kind, outcome string, elapsed time.Duration) {
	m.evaluations.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// recordInit increments the initialization counter with the given result.
func (m *providerMetrics) recordInit(result string) {
	m.initializations.WithLabelValues(result).Inc()
}

// recordEvent increments the event counter and adds any dropped deliveries.
func (m *providerMetrics) recordEvent(eventType string, dropped int) {
	m.events.WithLabelValues(eventType).Inc()
	if dropped > 0 {
		m.eventsDropped.Add(float64(dropped))
	}
}

// outcomeLabel maps a resolution detail to the metrics outcome label. The
// SDK keeps the error code private, so it is read back from the rendered
// "CODE: message" form.
func outcomeLabel(detail openfeature.ProviderResolutionDetail) string {
	errStr := detail.ResolutionError.Error()
	if errStr == "" || errStr == ": " {
		return outcomeSuccess
	}
	if code, _, found := strings.Cut(errStr, ":"); found && code != "" {
		return strings.ToLower(code)
	}
	return "error"
}
