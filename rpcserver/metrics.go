package rpcserver

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Prometheus instrumentation surface for the booking RPC
// facade, grounded in observability.ModuleMetrics' lazily-registered
// CounterVec/GaugeVec shape.
type Metrics struct {
	reservationsCreated prometheus.Counter
	disputesOpened      prometheus.Counter
	disputesResolved    prometheus.Counter
	vaultTakes          *prometheus.CounterVec
	openDisputes        prometheus.Gauge
}

var (
	metricsOnce sync.Once
	registry    *Metrics
)

// NewMetrics returns the process-wide, lazily-registered Metrics instance.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		registry = &Metrics{
			reservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "bookingd",
				Subsystem: "reservation",
				Name:      "created_total",
				Help:      "Total reservations admitted.",
			}),
			disputesOpened: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "bookingd",
				Subsystem: "dispute",
				Name:      "opened_total",
				Help:      "Total disputes started.",
			}),
			disputesResolved: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "bookingd",
				Subsystem: "dispute",
				Name:      "resolved_total",
				Help:      "Total disputes reaching quorum and terminating.",
			}),
			vaultTakes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "bookingd",
				Subsystem: "vault",
				Name:      "takes_total",
				Help:      "Total vault drains, segmented by reason.",
			}, []string{"reason"}),
			openDisputes: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "bookingd",
				Subsystem: "dispute",
				Name:      "open",
				Help:      "Disputes currently awaiting quorum.",
			}),
		}
		prometheus.MustRegister(
			registry.reservationsCreated,
			registry.disputesOpened,
			registry.disputesResolved,
			registry.vaultTakes,
			registry.openDisputes,
		)
	})
	return registry
}

func (m *Metrics) observeEventType(eventType string) {
	switch eventType {
	case "booking.reservation.created":
		m.reservationsCreated.Inc()
	case "booking.reservation.dispute_started":
		m.disputesOpened.Inc()
		m.openDisputes.Inc()
	case "booking.reservation.dispute_terminated":
		m.disputesResolved.Inc()
		m.openDisputes.Dec()
	case "booking.reservation.refunded":
		m.vaultTakes.WithLabelValues("refund").Inc()
	case "booking.reservation.paid":
		m.vaultTakes.WithLabelValues("payment").Inc()
	}
}
