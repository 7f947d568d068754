package proxy

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts proxy and remote-fetch outcomes on its own registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	pdfBytes prometheus.Histogram
	remote   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackmd",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Backend requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		pdfBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hackmd",
			Subsystem: "proxy",
			Name:      "pdf_bytes",
			Help:      "Size of PDFs served by the embed proxy.",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 7),
		}),
		remote: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackmd",
			Subsystem: "remote",
			Name:      "fetch_total",
			Help:      "oEmbed and Gist lookups by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

// ObserveRequest counts one request to endpoint.
func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	m.requests.WithLabelValues(endpoint, outcome).Inc()
}

// ObservePDF records the size of a served PDF.
func (m *Metrics) ObservePDF(size int) {
	m.pdfBytes.Observe(float64(size))
}

// ObserveRemote counts one remote lookup. It matches the remote client's
// fetch hook signature.
func (m *Metrics) ObserveRemote(kind, outcome string) {
	m.remote.WithLabelValues(kind, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
