package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	BookingsTotal       *prometheus.CounterVec
	CancellationsTotal  prometheus.Counter
	ReactivationsTotal  prometheus.Counter
	CompletionsTotal    prometheus.Counter
	SweptTotal          prometheus.Counter
	RecordsFailedTotal  prometheus.Counter
	AuditDroppedTotal   prometheus.Counter
	SlotsCreatedTotal   prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		BookingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome.",
		}, []string{"outcome"}),

		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Total appointments cancelled.",
		}),

		ReactivationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "reactivations_total",
			Help:      "Total cancelled appointments reactivated.",
		}),

		CompletionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "completions_total",
			Help:      "Total appointments completed by a doctor.",
		}),

		SweptTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "booking",
			Name:      "swept_total",
			Help:      "Total past-due appointments auto-completed by the sweep.",
		}),

		RecordsFailedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "records",
			Name:      "failed_total",
			Help:      "Medical-record creation requests that failed. Alert if growing.",
		}),

		AuditDroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "dropped_total",
			Help:      "Audit entries dropped due to full buffer.",
		}),

		SlotsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "slots",
			Name:      "created_total",
			Help:      "Total slots created by doctors.",
		}),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
