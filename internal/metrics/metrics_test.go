package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Message()
	m.Message()
	m.Matched("w1r3.net")
	m.Matched("w1r3.net")
	m.Matched("0x0.st")
	m.Succeeded(2048)
	m.Failed("http")
	m.Failed("http")
	m.Failed("transport")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.messagesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.matchesTotal.WithLabelValues("w1r3.net")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matchesTotal.WithLabelValues("0x0.st")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloadsTotal.WithLabelValues("success", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.downloadsTotal.WithLabelValues("error", "http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.downloadsTotal.WithLabelValues("error", "transport")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fileSizeBytes))
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
