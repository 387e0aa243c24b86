package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ANIKETSHETTY47/meter-compare/internal/domain"
)

const metricPrefix = "meter_compare_"

type Metrics struct {
	registry        *prometheus.Registry
	compareDuration *prometheus.HistogramVec
	compareErrors   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		compareDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "compare_duration_seconds",
			Help:    "Time spent computing a compare pair",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		compareErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "compare_errors_total",
			Help: "Failed compare computations by error kind",
		}, []string{"kind", "error"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.compareDuration,
		m.compareErrors,
	)
	return m
}

// ObserveCompare records one compare call for an entity kind.
func (m *Metrics) ObserveCompare(kind domain.EntityKind, started time.Time, err error) {
	if m == nil {
		return
	}
	m.compareDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
	if err != nil {
		m.compareErrors.WithLabelValues(string(kind), domain.ErrorKind(err)).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
