// Package metrics exposes validation run metrics on a dedicated prometheus
// registry, served over HTTP or written as a node-exporter textfile.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyeh/noharmcheck/internal/report"
)

const (
	namespace = "noharm"
	subsystem = "validator"
)

// Collector holds all metrics of the validator.
type Collector struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	fileIssues   *prometheus.CounterVec
	fileWarnings *prometheus.CounterVec
	records      *prometheus.CounterVec

	parseDuration      *prometheus.HistogramVec
	validationDuration prometheus.Histogram
}

// NewCollector creates a collector registered on its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Validation runs by overall status",
		}, []string{"status"}),
		fileIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "file_issues_total",
			Help:      "Blocking issues reported per category",
		}, []string{"category"}),
		fileWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "file_warnings_total",
			Help:      "Non-blocking warnings reported per category",
		}, []string{"category"}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_total",
			Help:      "Records parsed per category",
		}, []string{"category"}),
		parseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "parse_duration_seconds",
			Help:      "Duration of parsing one file",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"format"}),
		validationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validation_duration_seconds",
			Help:      "Duration of validating one batch",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveValidation records the duration of one engine run.
func (c *Collector) ObserveValidation(d time.Duration) {
	c.validationDuration.Observe(d.Seconds())
}

// RecordReport counts a finished run: its status, per-category issues,
// warnings and records, and the parse duration of every embedded file.
func (c *Collector) RecordReport(r *report.Report) {
	c.runs.WithLabelValues(string(r.Summary.Status)).Inc()

	for cat, fr := range r.Files {
		c.fileIssues.WithLabelValues(string(cat)).Add(float64(len(fr.Issues)))
		c.fileWarnings.WithLabelValues(string(cat)).Add(float64(len(fr.Warnings)))
		c.records.WithLabelValues(string(cat)).Add(float64(fr.RecordCount))
	}
	for _, pf := range r.Parsed {
		if pf != nil {
			c.parseDuration.WithLabelValues(string(pf.Format)).Observe(pf.Duration.Seconds())
		}
	}
}

// Handler serves the collector's registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes all metrics to path for the node-exporter textfile
// collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
