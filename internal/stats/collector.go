package stats

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediasort/internal/media"
	"mediasort/internal/queue"
)

const namespace = "mediasort"

// QueueSource exposes queue occupancy.
type QueueSource interface {
	Snapshot() queue.Snapshot
}

// Collector exports placement counters and queue gauges to Prometheus. The
// counters stay the source of truth; the collector reads them on scrape.
type Collector struct {
	counters *Counters
	queue    QueueSource

	placements *prometheus.Desc
	buffered   *prometheus.Desc
	capacity   *prometheus.Desc
	records    *prometheus.Desc
	admissions *prometheus.Desc

	processing *prometheus.HistogramVec
	failures   *prometheus.CounterVec
}

// NewCollector builds a collector. q may be nil when no queue is running.
func NewCollector(counters *Counters, q QueueSource) *Collector {
	return &Collector{
		counters: counters,
		queue:    q,
		placements: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "placements_total"),
			"Files moved into a category root",
			[]string{"category"}, nil,
		),
		buffered: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "queue", "buffered"),
			"Paths waiting in the ingestion queue",
			nil, nil,
		),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "queue", "capacity"),
			"Ingestion queue capacity",
			nil, nil,
		),
		records: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "queue", "admission_records"),
			"Entries in the admission dedup record",
			nil, nil,
		),
		admissions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "queue", "admissions_total"),
			"Admission attempts by outcome",
			[]string{"outcome"}, nil,
		),
		processing: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processing_duration_seconds",
				Help:      "Time from pop to placement per item",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"category"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Items that failed processing by error class",
			},
			[]string{"class"},
		),
	}
}

// ObserveProcessing records how long one item took.
func (c *Collector) ObserveProcessing(category media.Category, d time.Duration) {
	if c == nil {
		return
	}
	c.processing.WithLabelValues(string(category)).Observe(d.Seconds())
}

// ObserveFailure counts a failed item by error class.
func (c *Collector) ObserveFailure(class string) {
	if c == nil {
		return
	}
	if class == "" {
		class = "unknown"
	}
	c.failures.WithLabelValues(class).Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.placements
	ch <- c.buffered
	ch <- c.capacity
	ch <- c.records
	ch <- c.admissions
	c.processing.Describe(ch)
	c.failures.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.counters.Snapshot()
	for _, category := range media.Categories {
		ch <- prometheus.MustNewConstMetric(c.placements, prometheus.CounterValue, float64(snap.Get(category)), string(category))
	}
	if c.queue != nil {
		q := c.queue.Snapshot()
		ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(q.Buffered))
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(q.Capacity))
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(q.Records))
		ch <- prometheus.MustNewConstMetric(c.admissions, prometheus.CounterValue, float64(q.Admitted), "admitted")
		ch <- prometheus.MustNewConstMetric(c.admissions, prometheus.CounterValue, float64(q.Duplicates), "duplicate")
		ch <- prometheus.MustNewConstMetric(c.admissions, prometheus.CounterValue, float64(q.Dropped), "dropped")
	}
	c.processing.Collect(ch)
	c.failures.Collect(ch)
}

// NewRegistry returns a registry holding the collector plus the Go runtime
// and process collectors.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		c,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
