package dispatch

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	requests  *prometheus.CounterVec
	duration  prometheus.Histogram
	failures  *prometheus.CounterVec
	abandoned prometheus.Counter
	dropped   prometheus.Counter
	gatherer  prometheus.Gatherer
}

// NewMetrics registers the dispatcher collectors with reg. A nil reg gets a
// private registry. Collectors already registered with reg are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	} else {
		gatherer = prometheus.DefaultGatherer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeworker_requests_total",
				Help: "Total number of dispatched requests by response status.",
			},
			[]string{"code"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edgeworker_request_duration_seconds",
				Help:    "Duration of dispatched requests.",
				Buckets: prometheus.DefBuckets,
			},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgeworker_failures_total",
				Help: "Requests answered with a failure response, by failure kind.",
			},
			[]string{"kind"},
		),
		abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edgeworker_abandoned_total",
			Help: "Requests cancelled before a response was produced.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edgeworker_diag_dropped_total",
			Help: "Diagnostic records dropped because the queue was full.",
		}),
		gatherer: gatherer,
	}

	m.requests = register(reg, m.requests)
	m.duration = register(reg, m.duration)
	m.failures = register(reg, m.failures)
	m.abandoned = register(reg, m.abandoned)
	m.dropped = register(reg, m.dropped)
	return m
}

// register adds c to reg. Dispatchers sharing a registry share the collector
// registered first.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	panic(err)
}

func (m *Metrics) observe(status int, elapsed time.Duration) {
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) failure(err error) {
	m.failures.WithLabelValues(failureKind(err)).Inc()
}

// Gatherer exposes the registry the collectors live in.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Handler returns the Prometheus metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
