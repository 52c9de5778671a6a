// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/vue-bridge/internal/sensor"
	"github.com/tamzrod/vue-bridge/internal/vue"
)

// NewRegistry creates a dedicated registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler exposing reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// VueMetrics are the driver's own series.
// It also implements sensor.Output so every published value becomes a gauge.
type VueMetrics struct {
	Ticks        *prometheus.CounterVec // labels: outcome
	FramesLost   prometheus.Counter
	LastSequence prometheus.Gauge
	SensorValue  *prometheus.GaugeVec // labels: sensor, unit
}

// NewVueMetrics registers and returns the driver metrics.
func NewVueMetrics(reg prometheus.Registerer) *VueMetrics {
	m := &VueMetrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vue_ticks_total",
			Help: "Polling ticks by outcome.",
		}, []string{"outcome"}),
		FramesLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vue_frames_lost_total",
			Help: "Frames inferred lost from sequence gaps.",
		}),
		LastSequence: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vue_last_sequence",
			Help: "Sequence number of the last accepted frame.",
		}),
		SensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vue_sensor_value",
			Help: "Last published value per sensor.",
		}, []string{"sensor", "unit"}),
	}
	reg.MustRegister(m.Ticks, m.FramesLost, m.LastSequence, m.SensorValue)
	return m
}

// ObserveTick records one tick result.
func (m *VueMetrics) ObserveTick(res vue.TickResult) {
	m.Ticks.WithLabelValues(res.Outcome.String()).Inc()
	if res.Outcome != vue.OutcomeAccepted {
		return
	}
	m.LastSequence.Set(float64(res.Sequence))
	if res.Gap > 0 {
		m.FramesLost.Add(float64(res.Gap))
	}
}

// Write implements sensor.Output.
func (m *VueMetrics) Write(meta sensor.Meta, _ time.Time, v float64) error {
	m.SensorValue.WithLabelValues(meta.Name, meta.Unit).Set(v)
	return nil
}
