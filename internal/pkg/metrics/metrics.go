package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ConsumerMetrics counts event outcomes in the checkout projection consumer.
type ConsumerMetrics struct {
	Processed  *prometheus.CounterVec
	Dropped    *prometheus.CounterVec
	Duplicates prometheus.Counter
	ApplyMS    *prometheus.HistogramVec
}

func NewConsumerMetrics(service string) *ConsumerMetrics {
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nocart",
		Subsystem: service,
		Name:      "events_processed_total",
		Help:      "Events folded into the checkout projection.",
	}, []string{"event_name"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nocart",
		Subsystem: service,
		Name:      "events_dropped_total",
		Help:      "Events dropped as unprocessable.",
	}, []string{"reason"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nocart",
		Subsystem: service,
		Name:      "events_duplicate_total",
		Help:      "Redelivered events suppressed by the idempotency ledger.",
	})
	applyMS := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nocart",
		Subsystem: service,
		Name:      "event_apply_duration_ms",
		Help:      "Fold latency per event in milliseconds.",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
	}, []string{"event_name"})

	prometheus.MustRegister(processed, dropped, duplicates, applyMS)
	return &ConsumerMetrics{Processed: processed, Dropped: dropped, Duplicates: duplicates, ApplyMS: applyMS}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
