// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"
	"time"

	"github.com/orderup/order-producer/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	AnomalyDuplicate   = "duplicate"
	AnomalyLateArrival = "late_arrival"
	AnomalyReorder     = "reorder"
)

var (
	initOnce sync.Once

	runsTotalCounter        prometheus.Counter
	eventsGeneratedCounter  *prometheus.CounterVec
	anomaliesInjectedVec    *prometheus.CounterVec
	messagesDeliveredTotal  prometheus.Counter
	messagesFailedTotal     prometheus.Counter
	publishLatencyHistogram prometheus.Histogram
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		runsTotalCounter = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "simulation_runs_total",
				Help: "Total number of completed simulation runs.",
			},
		)

		eventsGeneratedCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_generated_total",
				Help: "Total number of lifecycle events generated, by event type.",
			},
			[]string{"event_type"},
		)

		anomaliesInjectedVec = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anomalies_injected_total",
				Help: "Total number of injected stream anomalies, by kind.",
			},
			[]string{"kind"},
		)

		messagesDeliveredTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "messages_delivered_total",
				Help: "Total number of messages acknowledged by the broker.",
			},
		)

		messagesFailedTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "messages_failed_total",
				Help: "Total number of messages that failed delivery.",
			},
		)

		publishLatencyHistogram = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "publish_latency_seconds",
				Help:    "Latency of publish calls in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		)

		prometheus.MustRegister(
			runsTotalCounter,
			eventsGeneratedCounter,
			anomaliesInjectedVec,
			messagesDeliveredTotal,
			messagesFailedTotal,
			publishLatencyHistogram,
		)

		// Pre-seed label values so counters are visible at /metrics
		// before the first increment.
		for _, et := range []domain.EventType{
			domain.EventOrderCreated,
			domain.EventOrderItemAdded,
			domain.EventOrderItemRemoved,
			domain.EventOrderUpdated,
			domain.EventOrderConfirmed,
			domain.EventOrderCancelled,
			domain.EventOrderCompleted,
		} {
			eventsGeneratedCounter.WithLabelValues(string(et))
		}

		for _, kind := range []string{AnomalyDuplicate, AnomalyLateArrival, AnomalyReorder} {
			anomaliesInjectedVec.WithLabelValues(kind)
		}
	})
}

func IncRuns() {
	Init()
	runsTotalCounter.Inc()
}

func IncEventGenerated(eventType domain.EventType) {
	Init()
	eventsGeneratedCounter.WithLabelValues(string(eventType)).Inc()
}

func AddAnomalies(kind string, n int) {
	Init()
	anomaliesInjectedVec.WithLabelValues(kind).Add(float64(n))
}

func AddDelivered(n int) {
	Init()
	messagesDeliveredTotal.Add(float64(n))
}

func AddFailed(n int) {
	Init()
	messagesFailedTotal.Add(float64(n))
}

func ObservePublishLatency(d time.Duration) {
	Init()
	publishLatencyHistogram.Observe(d.Seconds())
}
