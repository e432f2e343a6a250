package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	runsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "started_total",
			Help:      "Number of successfully launched runs.",
		}, []string{"program"},
	)
	runsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "finished_total",
			Help:      "Number of runs that reached a terminal state.",
		}, []string{"program", "state"},
	)
	launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "launch_failures_total",
			Help:      "Number of runs that failed before spawning.",
		}, []string{"program"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "state_transitions_total",
			Help:      "Number of lifecycle state transitions.",
		}, []string{"program", "from", "to"},
	)
	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of finished runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}, []string{"program"},
	)
	runCPUPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "cpu_percent",
			Help:      "CPU usage percentage for live runs.",
		}, []string{"program", "run_id"},
	)
	runMemoryRSS = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "memory_rss_bytes",
			Help:      "Resident memory for live runs.",
		}, []string{"program", "run_id"},
	)
	runThreads = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "proverd",
			Subsystem: "run",
			Name:      "num_threads",
			Help:      "Thread count for live runs.",
		}, []string{"program", "run_id"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{
		runsStarted, runsFinished, launchFailures, stateTransitions,
		runDuration, runCPUPercent, runMemoryRSS, runThreads,
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the
// DefaultGatherer. The caller is responsible for wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncStarted(program string) {
	if regOK.Load() {
		runsStarted.WithLabelValues(program).Inc()
	}
}

func IncFinished(program, state string) {
	if regOK.Load() {
		runsFinished.WithLabelValues(program, state).Inc()
	}
}

func IncLaunchFailure(program string) {
	if regOK.Load() {
		launchFailures.WithLabelValues(program).Inc()
	}
}

func RecordStateTransition(program, from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(program, from, to).Inc()
	}
}

func ObserveDuration(program string, seconds float64) {
	if regOK.Load() {
		runDuration.WithLabelValues(program).Observe(seconds)
	}
}

func SetUsage(program string, runID uint64, cpuPercent float64, rss uint64, threads int32) {
	if regOK.Load() {
		id := strconv.FormatUint(runID, 10)
		runCPUPercent.WithLabelValues(program, id).Set(cpuPercent)
		runMemoryRSS.WithLabelValues(program, id).Set(float64(rss))
		runThreads.WithLabelValues(program, id).Set(float64(threads))
	}
}

// DeleteUsage drops the per-run gauges once a run is finished so label
// cardinality stays bounded by the number of live runs.
func DeleteUsage(program string, runID uint64) {
	if regOK.Load() {
		id := strconv.FormatUint(runID, 10)
		runCPUPercent.DeleteLabelValues(program, id)
		runMemoryRSS.DeleteLabelValues(program, id)
		runThreads.DeleteLabelValues(program, id)
	}
}
