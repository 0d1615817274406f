// Package metrics exposes Prometheus counters for sticker operations and the
// health/metrics HTTP endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; calls become no-ops.
type Metrics struct {
	Transcodes        *prometheus.CounterVec
	TranscodeDuration *prometheus.HistogramVec
	PackOps           *prometheus.CounterVec
	QueueEnqueued     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transcodes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stickers_transcodes_total",
			Help: "Transcode attempts by source kind and result",
		}, []string{"kind", "result"}),
		TranscodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stickers_transcode_duration_seconds",
			Help:    "Time spent transcoding one attachment",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),
		PackOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stickers_pack_operations_total",
			Help: "Pack operations by type and outcome",
		}, []string{"op", "outcome"}),
		QueueEnqueued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stickers_tasks_enqueued_total",
			Help: "Tasks handed to the worker queue",
		}, []string{"task", "result"}),
	}
}

func (m *Metrics) ObserveTranscode(kind, format string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.TranscodeDuration.WithLabelValues(format).Observe(d.Seconds())
	}
	m.Transcodes.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObservePackOp(op, outcome string) {
	if m == nil {
		return
	}
	m.PackOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveEnqueue(task string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.QueueEnqueued.WithLabelValues(task, result).Inc()
}
