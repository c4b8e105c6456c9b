package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Phone edit results used as the "result" label.
const (
	PhoneAccepted = "accepted"
	PhoneRejected = "rejected"
)

// Metrics holds Prometheus metrics for address lookups and phone formatting.
// All methods are safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// Provider calls
	Lookups             *prometheus.CounterVec
	LookupDuration      prometheus.Histogram
	SuggestionsReturned prometheus.Histogram

	// Search controller
	GateRejections prometheus.Counter
	StaleResponses prometheus.Counter
	Selections     prometheus.Counter

	// Phone field
	PhoneEdits *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "addresscomplete"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		Lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "lookup",
				Name:      "requests_total",
				Help:      "Total AddressComplete Find calls",
			},
			[]string{"outcome"}, // outcome: success, failure
		),
		LookupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "lookup",
				Name:      "duration_seconds",
				Help:      "AddressComplete Find call duration",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		SuggestionsReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "lookup",
				Name:      "suggestions",
				Help:      "Number of suggestions returned per successful Find call",
				Buckets:   []float64{0, 1, 2, 5, 7, 10, 15, 25},
			},
		),
		GateRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "gate_rejections_total",
				Help:      "Queries too short to trigger a lookup",
			},
		),
		StaleResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "stale_responses_total",
				Help:      "Lookup results discarded because a newer query had already landed",
			},
		),
		Selections: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "selections_total",
				Help:      "Suggestions selected by the user",
			},
		),
		PhoneEdits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "phone",
				Name:      "edits_total",
				Help:      "Phone field edits",
			},
			[]string{"result"}, // result: accepted, rejected
		),
	}
}

// ObserveLookup records one provider call.
func (m *Metrics) ObserveLookup(outcome string, d time.Duration, suggestions int) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		m.SuggestionsReturned.Observe(float64(suggestions))
	}
}

// GateRejected records a query that was too short to search.
func (m *Metrics) GateRejected() {
	if m == nil {
		return
	}
	m.GateRejections.Inc()
}

// StaleDiscarded records a lookup result that arrived after a newer one.
func (m *Metrics) StaleDiscarded() {
	if m == nil {
		return
	}
	m.StaleResponses.Inc()
}

// Selected records a suggestion selection.
func (m *Metrics) Selected() {
	if m == nil {
		return
	}
	m.Selections.Inc()
}

// PhoneEdited records a phone field edit.
func (m *Metrics) PhoneEdited(result string) {
	if m == nil {
		return
	}
	m.PhoneEdits.WithLabelValues(result).Inc()
}
