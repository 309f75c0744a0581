// Package metrics exposes Prometheus counters for matched links and
// download outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "w1r3catcher"

type Metrics struct {
	messagesTotal  prometheus.Counter
	matchesTotal   *prometheus.CounterVec
	downloadsTotal *prometheus.CounterVec
	fileSizeBytes  prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Chat messages handled by the pipeline.",
		}),
		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Links to watched domains found in chat messages.",
		}, []string{"domain"}),
		downloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Finished download attempts by status and error kind.",
		}, []string{"status", "kind"}),
		fileSizeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_size_bytes",
			Help:      "Size of stored files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 10, 7), // 1KB .. 1GB
		}),
	}

	reg.MustRegister(m.messagesTotal, m.matchesTotal, m.downloadsTotal, m.fileSizeBytes)

	return m
}

func (m *Metrics) Message() {
	m.messagesTotal.Inc()
}

func (m *Metrics) Matched(domain string) {
	m.matchesTotal.WithLabelValues(domain).Inc()
}

func (m *Metrics) Succeeded(size int64) {
	m.downloadsTotal.WithLabelValues("success", "").Inc()
	m.fileSizeBytes.Observe(float64(size))
}

func (m *Metrics) Failed(kind string) {
	m.downloadsTotal.WithLabelValues("error", kind).Inc()
}
