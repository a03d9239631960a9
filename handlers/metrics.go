package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the registry served on /metrics.
var Metrics = prometheus.NewRegistry()

var (
	reportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mtc_reports_generated_total",
		Help: "Certificates generated, by output format and outcome.",
	}, []string{"format", "outcome"})

	reportGenerationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mtc_report_generation_seconds",
		Help:    "Time spent rendering a certificate.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	spectroDecodes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mtc_spectro_decodes_total",
		Help: "Spectrometer uploads decoded, by the engine that read them.",
	}, []string{"engine"})
)

func init() {
	Metrics.MustRegister(reportsGenerated, reportGenerationSeconds, spectroDecodes)
}

// MetricsHandler exposes the registry in the Prometheus text format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Metrics, promhttp.HandlerOpts{})
}

// observeGeneration records one certificate render.
func observeGeneration(format string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	reportsGenerated.WithLabelValues(format, outcome).Inc()
	reportGenerationSeconds.WithLabelValues(format).Observe(time.Since(start).Seconds())
}
