package host

import (
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSet holds the Prometheus instruments SPEC_FULL.md §4.4
// documents. They are populated from counters the Ringbuffer, Atom
// Channel, and Worker Pump already maintain — no additional locking on
// the hot path, since Prometheus counters are lock-free atomics.
type metricsSet struct {
	registry *prometheus.Registry

	ringbufferOverflow    prometheus.Counter
	workerResponseDropped prometheus.Counter
	callbackXrun          prometheus.Counter
	atomStagingPending    prometheus.Gauge

	resourceCPUPercent prometheus.Gauge
	resourceRSSBytes   prometheus.Gauge
}

func newMetricsSet() *metricsSet {
	m := &metricsSet{
		registry: prometheus.NewRegistry(),
		ringbufferOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lv2host_ringbuffer_overflow_total",
			Help: "DSP->UI atom events dropped because the outbound ringbuffer was full.",
		}),
		workerResponseDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lv2host_worker_response_dropped_total",
			Help: "Worker responses discarded because they exceeded the delivery scratch capacity.",
		}),
		callbackXrun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lv2host_callback_xrun_total",
			Help: "Audio callbacks rejected for an invalid frame count.",
		}),
		atomStagingPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lv2host_atom_staging_pending",
			Help: "1 if any input atom channel currently has an unread staged or queued message.",
		}),
		resourceCPUPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lv2host_worker_process_cpu_percent",
			Help: "CPU percent sampled from the worker's owning process.",
		}),
		resourceRSSBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lv2host_worker_process_rss_bytes",
			Help: "Resident set size sampled from the worker's owning process.",
		}),
	}
	m.registry.MustRegister(
		m.ringbufferOverflow,
		m.workerResponseDropped,
		m.callbackXrun,
		m.atomStagingPending,
		m.resourceCPUPercent,
		m.resourceRSSBytes,
	)
	return m
}

// Metrics returns the Prometheus registry the (out-of-scope) host
// application can mount behind its own /metrics endpoint.
func (h *Host) Metrics() *prometheus.Registry {
	return h.metrics.registry
}

// Healthz returns a healthcheck.Handler with liveness checks for the
// worker thread and the shutdown flag. The host core never serves HTTP
// itself; the caller mounts this handler.
func (h *Host) Healthz() healthcheck.Handler {
	health := healthcheck.NewHandler()
	health.AddLivenessCheck("worker-alive", func() error {
		if h.pump == nil {
			return nil // no work interface, nothing to check
		}
		if !h.healthWorkerOK.Load() {
			return errWorkerNotRunning
		}
		return nil
	})
	health.AddLivenessCheck("no-shutdown-signaled", func() error {
		if h.shutdown.Load() {
			return errShutdownSignaled
		}
		return nil
	})
	return health
}

var (
	errWorkerNotRunning = httpCheckError("worker thread is not running")
	errShutdownSignaled = httpCheckError("shutdown has been signaled")
)

type httpCheckError string

func (e httpCheckError) Error() string { return string(e) }
