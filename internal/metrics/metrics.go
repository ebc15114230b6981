// Package metrics exposes a minimal Prometheus surface over process
// lifecycle events: how many processes have been spawned, how many are
// currently running, and how their exit codes are distributed. It is a
// thin, dependency-injected wrapper around github.com/prometheus/client_golang
// — a dependency the teacher repository does not declare; this package is
// where it is exercised.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is injected into the Process Manager so it can report lifecycle
// events without this package reaching back into procmanager.
type Recorder struct {
	spawned   prometheus.Counter
	active    prometheus.Gauge
	exitCodes *prometheus.CounterVec
	stopped   *prometheus.CounterVec
	registry  *prometheus.Registry
}

// New constructs a Recorder backed by a private registry, so repeated
// construction in tests never collides with the default global registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		spawned: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "oscmdmcp_processes_spawned_total",
			Help: "Total number of processes started by the Process Manager.",
		}),
		active: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "oscmdmcp_processes_active",
			Help: "Number of processes currently in the RUNNING state.",
		}),
		exitCodes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "oscmdmcp_process_exit_codes_total",
			Help: "Count of terminated processes by exit code.",
		}, []string{"exit_code"}),
		stopped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "oscmdmcp_process_stops_total",
			Help: "Count of explicit Stop calls by whether they were forced.",
		}, []string{"force"}),
	}
	return r
}

// Spawned records a successful process start.
func (r *Recorder) Spawned() {
	r.spawned.Inc()
	r.active.Inc()
}

// Terminated records a process leaving the RUNNING state, with its final
// exit code (or -1 for timeout/no exit code available).
func (r *Recorder) Terminated(exitCode int) {
	r.active.Dec()
	r.exitCodes.WithLabelValues(formatExitCode(exitCode)).Inc()
}

// Stopped records an explicit Stop call.
func (r *Recorder) Stopped(force bool) {
	label := "false"
	if force {
		label = "true"
	}
	r.stopped.WithLabelValues(label).Inc()
}

// Handler returns the /metrics HTTP handler for this Recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func formatExitCode(code int) string {
	if code < 0 {
		return "timeout"
	}
	return strconv.Itoa(code)
}
