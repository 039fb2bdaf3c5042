package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Metrics holds the API client metrics.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	HistoryPages    prometheus.Counter
}

// NewMetrics creates the metrics on a private registry so that several
// clients in one process do not collide on the default registerer.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		HistoryPages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_pages_total",
				Help:      "Total number of operation history pages fetched",
			},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.HistoryPages,
	)

	return m
}

// LogSummary writes one debug line per request counter.
func (m *Metrics) LogSummary(logger zerolog.Logger) {
	families, err := m.Registry.Gather()
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to gather metrics")
		return
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			ev := logger.Debug().Str("metric", family.GetName())
			for _, label := range metric.GetLabel() {
				ev = ev.Str(label.GetName(), label.GetValue())
			}
			switch {
			case metric.GetCounter() != nil:
				ev.Float64("value", metric.GetCounter().GetValue()).Msg("Metric")
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				ev.Uint64("count", h.GetSampleCount()).
					Float64("sum_seconds", h.GetSampleSum()).
					Msg("Metric")
			default:
				ev.Msg("Metric")
			}
		}
	}
}
