package host

import (
	"unsafe"

	"github.com/kestrelaudio/lv2host/pkg/driver"
	"github.com/kestrelaudio/lv2host/pkg/midi"
	"github.com/kestrelaudio/lv2host/pkg/port"
)

// stereoChannels is the shipped configuration per spec.md §4.4.2: the
// callback always carries two interleaved channels.
const stereoChannels = 2

// allocateScratch preallocates the per-channel de-interleave/
// re-interleave scratch, called once from Start (control thread),
// never from Process. Input and output get distinct backing arrays so
// an in-place filter's output connection never aliases its input.
func (h *Host) allocateScratch(channels, maxFrames int) {
	if h.scratchReady {
		return
	}
	h.scratchIn = make([][]float32, channels)
	h.scratchOut = make([][]float32, channels)
	for i := 0; i < channels; i++ {
		h.scratchIn[i] = make([]float32, maxFrames)
		h.scratchOut[i] = make([]float32, maxFrames)
	}
	if maxFrames > h.maxBlockFrames {
		h.maxBlockFrames = maxFrames
	}
	h.scratchReady = true
}

// Process is the driver.Callback the host registers with Start. It is
// the only path that may call the plugin's run entry point. Steps
// follow spec.md §4.4.2 in order.
func (h *Host) Process(buf []float32, channels, frames int) driver.Action {
	if h.shutdown.Load() {
		return driver.Stop
	}
	if frames == 0 || frames > h.maxBlockFrames {
		h.metrics.callbackXrun.Inc()
		return driver.Stop
	}
	if !h.scratchReady {
		return driver.Stop
	}

	// 2. De-interleave.
	for c := 0; c < channels && c < len(h.scratchIn); c++ {
		chBuf := h.scratchIn[c]
		for f := 0; f < frames; f++ {
			chBuf[f] = buf[f*channels+c]
		}
	}

	// 3. Connect each audio port to its assigned channel scratch (input
	// ports to scratchIn, output ports to scratchOut).
	for _, p := range h.ports {
		if !p.Class.Has(port.Audio) {
			continue
		}
		ch := h.channelOfPort[p.Index]
		var ptr unsafe.Pointer
		if p.Class.Has(port.Input) {
			if ch >= len(h.scratchIn) {
				ch = 0
			}
			ptr = unsafe.Pointer(&h.scratchIn[ch][0])
		} else {
			if ch >= len(h.scratchOut) {
				ch = 0
			}
			ptr = unsafe.Pointer(&h.scratchOut[ch][0])
		}
		_ = h.handle.Connect(p.Index, ptr)
	}

	// 4. Input event ports: reset, then drain one coalesced message if
	// pending.
	anyPending := false
	for _, p := range h.ports {
		if !p.Class.Has(port.Event) || !p.Class.Has(port.Input) {
			continue
		}
		p.EventBuffer.ResetInput(h.seqURID)
		if msg, ok := p.Channel.TryConsume(); ok {
			p.EventBuffer.AppendEvent(0, msg.Type, msg.Body)
		}
		if p.Channel.StagingPending() {
			anyPending = true
		}
	}
	if anyPending {
		h.metrics.atomStagingPending.Set(1)
	} else {
		h.metrics.atomStagingPending.Set(0)
	}

	// 5. Output event ports: reset to the available-body-capacity
	// convention the plugin ABI expects before run.
	for _, p := range h.ports {
		if !p.Class.Has(port.Event) || !p.Class.Has(port.Output) {
			continue
		}
		p.EventBuffer.ResetOutput(h.seqURID)
	}

	// 6. Run.
	h.handle.Run(frames)

	// 7. Drain worker responses.
	if h.pump != nil {
		h.pump.Drain(h.requiredAtomSize)
		if d := h.pump.Stats().ResponsesDropped; d > 0 {
			h.metrics.workerResponseDropped.Add(float64(d) - h.lastResponsesDropped)
			h.lastResponsesDropped = float64(d)
		}
	}

	// 8. Output event ports: forward produced events to the DSP->UI
	// ringbuffer, then reset for the next callback.
	var outboundDropped uint64
	for _, p := range h.ports {
		if !p.Class.Has(port.Event) || !p.Class.Has(port.Output) {
			continue
		}
		timeline := h.midiTimelines[p.Index]
		p.EventBuffer.Events(func(frame int32, typ uint32, body []byte) {
			p.Channel.PostOutbound(typ, body)
			if timeline != nil && typ == h.midiURID {
				if ev, ok := midi.Decode(frame, body); ok {
					timeline.Add(ev)
				}
			}
		})
		p.EventBuffer.ResetOutput(h.seqURID)
		outboundDropped += p.Channel.DroppedOutbound()
	}
	if d := float64(outboundDropped); d > h.lastOutboundDropped {
		h.metrics.ringbufferOverflow.Add(d - h.lastOutboundDropped)
		h.lastOutboundDropped = d
	}

	// 9. Re-interleave.
	for c := 0; c < channels && c < len(h.scratchOut); c++ {
		chBuf := h.scratchOut[c]
		for f := 0; f < frames; f++ {
			buf[f*channels+c] = chBuf[f]
		}
	}

	return driver.Continue
}
