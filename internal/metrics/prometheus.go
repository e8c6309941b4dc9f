// Package metrics records chart statistics with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements astrochart.Metrics on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	layoutPasses *prometheus.HistogramVec
	aspects      *prometheus.CounterVec
	renders      *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		layoutPasses: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astrochart_layout_passes",
				Help:    "Collision fixes needed to lay out chart points",
				Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"chart"},
		),
		aspects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrochart_aspects_total",
				Help: "Total number of aspects found",
			},
			[]string{"chart"},
		),
		renders: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astrochart_render_duration_seconds",
				Help:    "Duration of SVG rendering in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"chart"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrochart_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"kind"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrochart_cache_lookups_total",
				Help: "Render cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveLayoutPasses records how many resolver passes a chart needed.
func (r *Recorder) ObserveLayoutPasses(chart string, passes int) {
	r.layoutPasses.WithLabelValues(chart).Observe(float64(passes))
}

// AddAspects counts aspects found for a chart.
func (r *Recorder) AddAspects(chart string, n int) {
	r.aspects.WithLabelValues(chart).Add(float64(n))
}

// ObserveRender records render latency.
func (r *Recorder) ObserveRender(chart string, d time.Duration) {
	r.renders.WithLabelValues(chart).Observe(d.Seconds())
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry for the node exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
