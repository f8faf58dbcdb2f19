/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the process's Prometheus collectors. Constructed once and
// passed to components explicitly; there is no global registry use.
type Metrics struct {
	registry *prometheus.Registry

	RoundsStarted      prometheus.Counter
	RoundsFailed       prometheus.Counter
	IntervalsCompleted prometheus.Counter
	CaptureFailures    prometheus.Counter
	PacketsSent        prometheus.Counter
	TriggersReceived   prometheus.Counter
	ScheduleOverruns   prometheus.Counter
	RoundDuration      prometheus.Histogram
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stressfleet_rounds_started_total",
			Help: "Rounds the executor has begun.",
		}),
		RoundsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stressfleet_rounds_failed_total",
			Help: "Rounds aborted before completing their sweep.",
		}),
		IntervalsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stressfleet_intervals_completed_total",
			Help: "Interval steps that produced a result row.",
		}),
		CaptureFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stressfleet_capture_failures_total",
			Help: "Interval steps whose sent-packet count could not be parsed.",
		}),
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stressfleet_packets_sent_total",
			Help: "Packets the emission tool reported sending.",
		}),
		TriggersReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stressfleet_triggers_received_total",
			Help: "Trigger messages accepted by the gateway.",
		}),
		ScheduleOverruns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stressfleet_schedule_overruns_total",
			Help: "Rounds that finished after their successor's start time.",
		}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stressfleet_round_duration_seconds",
			Help:    "Wall-clock duration of completed rounds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	m.registry.MustRegister(
		m.RoundsStarted,
		m.RoundsFailed,
		m.IntervalsCompleted,
		m.CaptureFailures,
		m.PacketsSent,
		m.TriggersReceived,
		m.ScheduleOverruns,
		m.RoundDuration,
	)
	return m
}

// Handler exposes the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
