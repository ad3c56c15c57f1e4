package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the stitching pipeline.
type Metrics struct {
	registry               *prometheus.Registry
	resolveHopsTotal       prometheus.Counter
	fetchRetriesTotal      prometheus.Counter
	fragmentsStitchedTotal prometheus.Counter
	fragmentBytesTotal     prometheus.Counter
	activeDownloads        prometheus.Gauge
}

// New creates and registers the pipeline metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	resolveHopsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "liv1_resolve_hops_total",
		Help: "Total number of manifest resolution hops taken",
	})
	fetchRetriesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "liv1_fetch_retries_total",
		Help: "Total number of transport-level fetch retries",
	})
	fragmentsStitchedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "liv1_fragments_stitched_total",
		Help: "Total number of fragments fetched and decoded",
	})
	fragmentBytesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "liv1_fragment_bytes_total",
		Help: "Total bytes of fragment payload downloaded",
	})
	activeDownloads := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "liv1_active_downloads",
		Help: "Number of downloads currently running",
	})

	registry.MustRegister(
		resolveHopsTotal,
		fetchRetriesTotal,
		fragmentsStitchedTotal,
		fragmentBytesTotal,
		activeDownloads,
	)

	return &Metrics{
		registry:               registry,
		resolveHopsTotal:       resolveHopsTotal,
		fetchRetriesTotal:      fetchRetriesTotal,
		fragmentsStitchedTotal: fragmentsStitchedTotal,
		fragmentBytesTotal:     fragmentBytesTotal,
		activeDownloads:        activeDownloads,
	}
}

// IncResolveHops increments the resolution hop counter.
func (m *Metrics) IncResolveHops() {
	m.resolveHopsTotal.Inc()
}

// IncFetchRetries increments the fetch retry counter.
func (m *Metrics) IncFetchRetries() {
	m.fetchRetriesTotal.Inc()
}

// IncFragmentsStitched increments the stitched fragment counter.
func (m *Metrics) IncFragmentsStitched() {
	m.fragmentsStitchedTotal.Inc()
}

// AddFragmentBytes adds n to the downloaded payload counter.
func (m *Metrics) AddFragmentBytes(n int64) {
	m.fragmentBytesTotal.Add(float64(n))
}

// SetActiveDownloads sets the running download gauge.
func (m *Metrics) SetActiveDownloads(n int) {
	m.activeDownloads.Set(float64(n))
}

// Handler returns an http.Handler that serves the registry in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
