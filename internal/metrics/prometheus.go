package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "enroll"

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry             *prometheus.Registry
	registrations        *prometheus.CounterVec
	registrationDuration prometheus.Histogram
	eventsPublished      *prometheus.CounterVec
}

// NewPrometheus registers the application collectors plus Go runtime
// and process collectors on a fresh registry.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		registrationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registration_duration_seconds",
			Help:      "Time spent in the registration workflow.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "user.registered events by publish status.",
		}, []string{"status"}),
	}
}

// IncRegistration increments the registrations counter.
func (p *PrometheusRecorder) IncRegistration(outcome string) {
	p.registrations.WithLabelValues(outcome).Inc()
}

// ObserveRegistrationDuration records workflow duration.
func (p *PrometheusRecorder) ObserveRegistrationDuration(duration time.Duration) {
	p.registrationDuration.Observe(duration.Seconds())
}

// IncEventPublished increments the events counter.
func (p *PrometheusRecorder) IncEventPublished(status string) {
	p.eventsPublished.WithLabelValues(status).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
