package metrics

import (
	"net/http"
	"time"

	"github.com/KevinKickass/OpenIOLink/internal/pdi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "openiolink"

// Decode outcomes.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeError   = "error"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	DecodesTotal    *prometheus.CounterVec
	FieldFailures   *prometheus.CounterVec
	DecodeDuration  *prometheus.HistogramVec
	SpecsRegistered prometheus.Gauge
	LiveClients     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		DecodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decode",
				Name:      "total",
				Help:      "Decoded process data buffers by spec and outcome (ok, partial, error)",
			},
			[]string{"spec", "outcome"},
		),

		FieldFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decode",
				Name:      "field_failures_total",
				Help:      "Fields that could not be decoded, by spec and error kind",
			},
			[]string{"spec", "kind"},
		),

		DecodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "decode",
				Name:      "duration_seconds",
				Help:      "Time spent decoding one buffer",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"spec"},
		),

		SpecsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "specs",
				Name:      "registered",
				Help:      "Device specifications currently registered",
			},
		),

		LiveClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "live",
				Name:      "clients",
				Help:      "Connected websocket clients",
			},
		),
	}

	m.registry.MustRegister(
		m.DecodesTotal,
		m.FieldFailures,
		m.DecodeDuration,
		m.SpecsRegistered,
		m.LiveClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveDecode records one decode call. res may be nil when err is set.
func (m *Metrics) ObserveDecode(spec string, res *pdi.Result, err error, took time.Duration) {
	m.DecodeDuration.WithLabelValues(spec).Observe(took.Seconds())

	switch {
	case err != nil || res == nil:
		m.DecodesTotal.WithLabelValues(spec, OutcomeError).Inc()
	case res.OK():
		m.DecodesTotal.WithLabelValues(spec, OutcomeOK).Inc()
	default:
		m.DecodesTotal.WithLabelValues(spec, OutcomePartial).Inc()
		for _, f := range res.Failures {
			m.FieldFailures.WithLabelValues(spec, f.Kind()).Inc()
		}
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
