package fitkit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus collectors updated by a Decoder.
type Metrics struct {
	decodesTotal      *prometheus.CounterVec
	decodeDuration    prometheus.Histogram
	messagesTotal     *prometheus.CounterVec
	bytesTotal        prometheus.Counter
	integrityFailures prometheus.Counter
}

// NewMetrics creates the decoder metrics and registers them with reg.
// A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		decodesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fit_decodes_total",
				Help: "Total number of FIT decode runs",
			},
			[]string{"status"},
		),
		decodeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fit_decode_duration_seconds",
				Help:    "FIT decode duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fit_messages_total",
				Help: "Total number of decoded FIT messages after filtering",
			},
			[]string{"message"},
		),
		bytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fit_bytes_total",
				Help: "Total number of FIT bytes submitted for decoding",
			},
		),
		integrityFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fit_integrity_failures_total",
				Help: "Total number of files failing the integrity check",
			},
		),
	}
}

func (m *Metrics) recordDecode(size int, messages map[string]int, took time.Duration, err error) {
	if m == nil {
		return
	}
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.decodesTotal.WithLabelValues(status).Inc()
	m.decodeDuration.Observe(took.Seconds())
	m.bytesTotal.Add(float64(size))
	for key, n := range messages {
		m.messagesTotal.WithLabelValues(key).Add(float64(n))
	}
}

func (m *Metrics) recordIntegrityFailure() {
	if m == nil {
		return
	}
	m.integrityFailures.Inc()
}
