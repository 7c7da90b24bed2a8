package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// AI metrics
	AICalls   *prometheus.CounterVec
	AILatency *prometheus.HistogramVec

	// Consultation lifecycle metrics
	Transitions *prometheus.CounterVec

	// Translation metrics
	TranslatedFields     prometheus.Counter
	TranslationFallbacks prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// View cache metrics
	CacheLookups *prometheus.CounterVec
}

// New creates the metrics without registering them.
func New(namespace string) *Metrics {
	return &Metrics{
		AICalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_calls_total",
			Help:      "Total number of generative and speech-to-text calls",
		}, []string{"operation", "status"}),
		AILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_call_duration_seconds",
			Help:      "Duration of generative and speech-to-text calls",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32},
		}, []string{"operation"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consultation_transitions_total",
			Help:      "Consultation status transitions by target status and outcome",
		}, []string{"to", "outcome"}),
		TranslatedFields: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_fields_total",
			Help:      "Total number of fields sent for translation",
		}),
		TranslationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_fallbacks_total",
			Help:      "Fields returned untranslated after a provider failure",
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_cache_lookups_total",
			Help:      "View cache lookups by view and result",
		}, []string{"view", "result"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.AICalls,
		m.AILatency,
		m.Transitions,
		m.TranslatedFields,
		m.TranslationFallbacks,
		m.DatabaseOperations,
		m.DatabaseLatency,
		m.CacheLookups,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) ObserveAICall(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.AICalls.WithLabelValues(operation, status(err)).Inc()
	m.AILatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveTransition(to string, ok bool) {
	if m == nil {
		return
	}
	outcome := "applied"
	if !ok {
		outcome = "rejected"
	}
	m.Transitions.WithLabelValues(to, outcome).Inc()
}

func (m *Metrics) ObserveTranslation(fallback bool) {
	if m == nil {
		return
	}
	m.TranslatedFields.Inc()
	if fallback {
		m.TranslationFallbacks.Inc()
	}
}

func (m *Metrics) ObserveDB(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.DatabaseOperations.WithLabelValues(operation, status(err)).Inc()
	m.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveCache(view string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(view, result).Inc()
}
