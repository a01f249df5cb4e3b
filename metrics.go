package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pick counters. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Picks counts resolved pick attempts by outcome code ("ok" on success).
	Picks *prometheus.CounterVec

	// Mounts counts overlay mounts by overlay kind and outcome.
	Mounts *prometheus.CounterVec

	// CaptureDuration tracks how long one screen capture takes.
	CaptureDuration prometheus.Histogram
}

// NewMetrics registers the pick metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Picks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpick_picks_total",
			Help: "Total pick attempts by outcome",
		}, []string{"outcome"}),
		Mounts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpick_overlay_mounts_total",
			Help: "Total overlay mounts by overlay and outcome",
		}, []string{"overlay", "outcome"}),
		CaptureDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelpick_capture_duration_seconds",
			Help:    "Screen capture duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) picked(err error) {
	if m == nil {
		return
	}
	m.Picks.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) mounted(overlay string, err error) {
	if m == nil {
		return
	}
	m.Mounts.WithLabelValues(overlay, outcome(err)).Inc()
}

func (m *Metrics) captured(d time.Duration) {
	if m == nil {
		return
	}
	m.CaptureDuration.Observe(d.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return ErrorCode(err)
}
