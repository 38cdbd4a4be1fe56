package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters on a private registry, so several
// handlers (one per test) never collide on registration.
type Metrics struct {
	registry       *prometheus.Registry
	renders        *prometheus.CounterVec
	saves          *prometheus.CounterVec
	invalidDomains prometheus.Counter
	requests       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shrtfly_renders_total",
				Help: "Render hook evaluations by hook and whether anything was emitted",
			},
			[]string{"hook", "emitted"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shrtfly_settings_saves_total",
				Help: "Settings form submissions by result",
			},
			[]string{"result"},
		),
		invalidDomains: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shrtfly_invalid_domains_total",
				Help: "Domain entries rejected while saving settings",
			},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shrtfly_http_requests_total",
				Help: "HTTP requests by status code",
			},
			[]string{"code"},
		),
	}
	m.registry.MustRegister(m.renders, m.saves, m.invalidDomains, m.requests)
	return m
}

func (m *Metrics) observeRender(hook string, emitted bool) {
	m.renders.WithLabelValues(hook, strconv.FormatBool(emitted)).Inc()
}

func (m *Metrics) observeSave(result string, invalid int) {
	m.saves.WithLabelValues(result).Inc()
	if invalid > 0 {
		m.invalidDomains.Add(float64(invalid))
	}
}

func (m *Metrics) observeRequest(status int) {
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
