package host

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

const defaultResourceSampleInterval = 5 * time.Second

// startResourceSampler launches a best-effort background sampler that
// reports this process's CPU/RSS on a slow timer, feeding the
// Prometheus registry. It exists to spot a worker thread wedging before
// it blocks Stop, per the design note about a misbehaving worker that
// never yields.
func (h *Host) startResourceSampler() {
	if h.resourceStop != nil {
		return
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		h.logger.WithError(err).Warn("resource sampler: could not attach to process")
		return
	}

	interval := h.resourceInterval
	if interval <= 0 {
		interval = defaultResourceSampleInterval
	}

	h.resourceStop = make(chan struct{})
	h.resourceWG.Add(1)
	go func() {
		defer h.resourceWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.resourceStop:
				return
			case <-ticker.C:
				h.sampleOnce(proc)
			}
		}
	}()
}

func (h *Host) sampleOnce(proc *process.Process) {
	if cpu, err := proc.CPUPercent(); err == nil {
		h.metrics.resourceCPUPercent.Set(cpu)
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		h.metrics.resourceRSSBytes.Set(float64(mem.RSS))
	}
}

func (h *Host) stopResourceSampler() {
	if h.resourceStop == nil {
		return
	}
	close(h.resourceStop)
	h.resourceWG.Wait()
	h.resourceStop = nil
}
