// Package metrics exposes monitor activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
)

// Scan kinds recorded by ObserveScan.
const (
	ScanFull     = "full"
	ScanNotified = "notified"
)

// Metrics counts published events and scan activity. It is a
// monitor.Listener, so registering it with a Monitor is enough to count
// events.
type Metrics struct {
	gatherer  prometheus.Gatherer
	events    *prometheus.CounterVec
	scans     *prometheus.CounterVec
	durations *prometheus.HistogramVec
	monitored prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pollwatch_events_total",
			Help: "Monitor events published, by operation.",
		}, []string{"op"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pollwatch_scans_total",
			Help: "Scans performed, by kind.",
		}, []string{"kind"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pollwatch_scan_duration_seconds",
			Help:    "Time spent per scan, by kind.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"kind"}),
		monitored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pollwatch_monitored_paths",
			Help: "Paths currently held in monitor snapshots.",
		}),
	}

	for _, c := range []prometheus.Collector{m.events, m.scans, m.durations, m.monitored} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// OnEvent implements monitor.Listener.
func (m *Metrics) OnEvent(e monitor.FileEvent) error {
	m.events.WithLabelValues(e.Op.String()).Inc()
	return nil
}

// ObserveScan records one scan of the given kind.
func (m *Metrics) ObserveScan(kind string, took time.Duration) {
	m.scans.WithLabelValues(kind).Inc()
	m.durations.WithLabelValues(kind).Observe(took.Seconds())
}

// SetMonitored sets the monitored path gauge.
func (m *Metrics) SetMonitored(n int) {
	m.monitored.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
