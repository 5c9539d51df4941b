// Package metrics exposes storage engine events as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusObserver implements storage.MetricsObserver
type PrometheusObserver struct {
	registry *prometheus.Registry

	opLatency     *prometheus.HistogramVec
	operations    *prometheus.CounterVec
	flushLatency  prometheus.Histogram
	flushBytes    prometheus.Counter
	flushes       *prometheus.CounterVec
	verifications *prometheus.CounterVec
	collections   prometheus.Gauge
}

// NewPrometheusObserver registers the engine metrics, plus the Go runtime
// and process collectors, on a private registry.
func NewPrometheusObserver() *PrometheusObserver {
	o := &PrometheusObserver{
		registry: prometheus.NewRegistry(),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hippodb_operation_latency_seconds",
			Help:    "Latency of storage engine operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hippodb_operations_total",
			Help: "Storage engine operations by collection",
		}, []string{"op", "collection", "status"}),
		flushLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hippodb_flush_latency_seconds",
			Help:    "Time to write and publish a collection artifact",
			Buckets: prometheus.DefBuckets,
		}),
		flushBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hippodb_flush_bytes_total",
			Help: "Bytes written to collection artifacts",
		}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hippodb_flushes_total",
			Help: "Collection artifact writes",
		}, []string{"status"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hippodb_verifications_total",
			Help: "Background artifact verifications",
		}, []string{"collection", "status"}),
		collections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hippodb_collections",
			Help: "Number of collections",
		}),
	}

	o.registry.MustRegister(
		o.opLatency,
		o.operations,
		o.flushLatency,
		o.flushBytes,
		o.flushes,
		o.verifications,
		o.collections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return o
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (o *PrometheusObserver) OnOperation(op, collection string, d time.Duration, err error) {
	s := status(err)
	o.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	o.operations.WithLabelValues(op, collection, s).Inc()
}

func (o *PrometheusObserver) OnFlush(collection string, d time.Duration, bytes int64, err error) {
	o.flushes.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	o.flushLatency.Observe(d.Seconds())
	o.flushBytes.Add(float64(bytes))
}

func (o *PrometheusObserver) OnVerify(collection string, err error) {
	o.verifications.WithLabelValues(collection, status(err)).Inc()
}

func (o *PrometheusObserver) OnCollections(count int) {
	o.collections.Set(float64(count))
}

// Registry returns the registry holding the engine metrics.
func (o *PrometheusObserver) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (o *PrometheusObserver) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
