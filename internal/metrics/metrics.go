// Package metrics exposes the daemon's prometheus instrumentation.
// Collectors register on the default registry; the HTTP façade serves
// them at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesWritten counts transport writes that reached the device.
	// The "family" label carries the light's product name.
	FramesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "busylightd_frames_written_total",
		Help: "Completed transport writes per product name.",
	}, []string{"family"})

	// WriteErrors counts transport writes that failed after the
	// transient retry.
	WriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "busylightd_write_errors_total",
		Help: "Failed transport writes per product name.",
	}, []string{"family"})

	// KeepalivesSent counts keep-alive refresh frames.
	KeepalivesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "busylightd_keepalives_sent_total",
		Help: "Keep-alive frames sent per product name.",
	}, []string{"family"})

	// LightsOpen is the number of currently claimed devices.
	LightsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "busylightd_lights_open",
		Help: "Currently open lights.",
	})

	// EffectsRunning is the number of live effect tasks.
	EffectsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "busylightd_effects_running",
		Help: "Currently running effect tasks.",
	})

	// PollCycles counts registry enumeration passes.
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "busylightd_poll_cycles_total",
		Help: "Registry enumeration passes.",
	})

	// LogSinkErrors counts failed log writes per sink (stdout,
	// journal, buffer).
	LogSinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "busylightd_log_sink_errors_total",
		Help: "Failed log writes per sink.",
	}, []string{"sink"})

	// LogEntriesDropped counts ring-buffer entries evicted to make room,
	// whether or not a reader saw them.
	LogEntriesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "busylightd_log_entries_dropped_total",
		Help: "Log entries evicted from the ring buffer.",
	})
)
