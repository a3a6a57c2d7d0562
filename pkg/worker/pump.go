// Package worker implements the optional background thread per plugin
// instance that executes long-running plugin work requests handed off
// from the audio thread and funnels responses back on the next audio
// cycle.
package worker

import (
	"encoding/binary"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"

	"github.com/kestrelaudio/lv2host/pkg/ringbuf"
)

// ErrNoSpace is returned by Schedule when the request ringbuffer cannot
// hold the full framed record, and by the respond callback handed to a
// WorkFunc when the response ringbuffer is full.
var ErrNoSpace = errors.New("worker: no space for framed record")

// defaultRingCapacity matches the 8192-byte default spec.md documents
// as matching observed plugin expectations.
const defaultRingCapacity = 8192

// WorkFunc is the plugin's work callback, invoked off the audio thread
// with one request's payload and a respond function it may call zero or
// more times (typically once) to push data back toward the audio
// thread.
type WorkFunc func(req []byte, respond func(resp []byte) error)

// ResponseFunc is the plugin's response callback, invoked on the audio
// thread once per delivered framed response.
type ResponseFunc func(resp []byte)

// Stats exposes the pump's counters for the host's metrics layer.
type Stats struct {
	Scheduled       uint64
	Completed       uint64
	ResponsesSent   uint64
	ResponsesDropped uint64
	WorkPanics      uint64
}

// Pump is the per-plugin-instance worker context.
type Pump struct {
	requests  *ringbuf.Ringbuffer
	responses *ringbuf.Ringbuffer
	scratch   bytebufferpool.Pool

	work     WorkFunc
	respond  ResponseFunc

	running atomic.Bool
	pool    *ants.Pool

	scheduled, completed, sent, dropped, panics atomic.Uint64
}

// New creates a Worker Pump with default (8192-byte) request/response
// ringbuffers. work is the plugin's work callback; respond is invoked on
// the audio thread during Drain.
func New(work WorkFunc, respond ResponseFunc) (*Pump, error) {
	return NewWithCapacity(defaultRingCapacity, defaultRingCapacity, work, respond)
}

// NewWithCapacity creates a Worker Pump with explicit ringbuffer
// capacities (each must be a power of two).
func NewWithCapacity(requestCap, responseCap int, work WorkFunc, respond ResponseFunc) (*Pump, error) {
	reqRB, err := ringbuf.New(requestCap)
	if err != nil {
		return nil, err
	}
	respRB, err := ringbuf.New(responseCap)
	if err != nil {
		return nil, err
	}
	return &Pump{
		requests:  reqRB,
		responses: respRB,
		work:      work,
		respond:   respond,
	}, nil
}

// Start launches the worker goroutine, dispatched through a capacity-1
// ants pool so the pump never leaks a second background goroutine if
// Start is mistakenly called twice.
func (p *Pump) Start() error {
	if p.running.Swap(true) {
		return nil // already running
	}
	pool, err := ants.NewPool(1, ants.WithNonblocking(false))
	if err != nil {
		p.running.Store(false)
		return err
	}
	p.pool = pool
	return p.pool.Submit(p.loop)
}

// Stop clears the running flag, causing the worker loop to exit at its
// next iteration, then blocks until the pool's goroutine has actually
// exited. It must complete before any plugin resource the worker may
// observe is freed.
func (p *Pump) Stop() {
	if !p.running.Swap(false) {
		return
	}
	if p.pool != nil {
		p.pool.Release()
		// Release does not wait for the running task; join it by waiting
		// until the pool's worker goroutine has exited.
		for p.pool.Running() > 0 {
			time.Sleep(time.Millisecond)
		}
		p.pool = nil
	}
}

// Schedule is called from the audio thread (inside run) to hand a work
// request to the worker thread. It writes [size:u32][data] to the
// request ringbuffer.
func (p *Pump) Schedule(data []byte) error {
	frame := len(data) + 4
	if p.requests.WriteSpace() < frame {
		return ErrNoSpace
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(data)))
	p.requests.Write(hdr[:])
	p.requests.Write(data)
	p.scheduled.Add(1)
	return nil
}

// Drain is called from the audio thread after run. It reads every
// complete framed response currently available and invokes respond for
// each. A frame exceeding scratch's capacity is read and discarded
// rather than delivered, per spec. The response body is read into a
// pooled buffer, returned to the pool once respond has consumed it —
// respond must not retain the slice past its call.
func (p *Pump) Drain(scratchMax int) {
	for {
		var hdr [4]byte
		if p.responses.Peek(hdr[:]) < 4 {
			return
		}
		size := int(binary.LittleEndian.Uint32(hdr[:]))
		if p.responses.ReadSpace() < 4+size {
			return // record not fully written yet
		}
		p.responses.Skip(4)
		if size > scratchMax {
			p.discard(size)
			p.dropped.Add(1)
			continue
		}
		scratch := p.scratch.Get()
		scratch.B = growTo(scratch.B, size)
		p.responses.Read(scratch.B)
		p.respond(scratch.B)
		p.scratch.Put(scratch)
	}
}

func (p *Pump) discard(n int) {
	tmp := make([]byte, 4096)
	for n > 0 {
		chunk := n
		if chunk > len(tmp) {
			chunk = len(tmp)
		}
		got := p.responses.Read(tmp[:chunk])
		if got == 0 {
			return
		}
		n -= got
	}
}

// respondFromWorker is handed to the plugin's WorkFunc as its respond
// callback; it writes a framed record into the response ringbuffer.
func (p *Pump) respondFromWorker(resp []byte) error {
	frame := len(resp) + 4
	if p.responses.WriteSpace() < frame {
		return ErrNoSpace
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(resp)))
	p.responses.Write(hdr[:])
	p.responses.Write(resp)
	p.sent.Add(1)
	return nil
}

// loop runs on the dedicated worker goroutine: poll the request
// ringbuffer, backing off briefly (target <=1ms) when empty, and never
// advancing the read index until a full framed record is available.
// The request body is read into a pooled buffer so a steady stream of
// same-sized requests settles into zero allocation once the pool's
// buffer has grown to fit.
func (p *Pump) loop() {
	bo := backoff.NewConstantBackOff(time.Millisecond)

	for p.running.Load() {
		var hdr [4]byte
		if p.requests.Peek(hdr[:]) < 4 {
			time.Sleep(bo.NextBackOff())
			continue
		}
		size := int(binary.LittleEndian.Uint32(hdr[:]))
		if p.requests.ReadSpace() < 4+size {
			time.Sleep(bo.NextBackOff())
			continue
		}
		p.requests.Skip(4)

		scratch := p.scratch.Get()
		scratch.B = growTo(scratch.B, size)
		p.requests.Read(scratch.B)
		p.runWork(scratch.B)
		p.scratch.Put(scratch)
	}
}

// growTo returns b resliced to length n, reusing its backing array when
// it already has the capacity.
func growTo(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}

// runWork invokes the plugin's work function, recovering from a panic so
// a misbehaving plugin cannot take down the worker goroutine (and, by
// extension, eventually Stop's join).
func (p *Pump) runWork(req []byte) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
		}
	}()
	p.work(req, p.respondFromWorker)
	p.completed.Add(1)
}

// Stats returns a snapshot of the pump's counters.
func (p *Pump) Stats() Stats {
	return Stats{
		Scheduled:        p.scheduled.Load(),
		Completed:        p.completed.Load(),
		ResponsesSent:    p.sent.Load(),
		ResponsesDropped: p.dropped.Load(),
		WorkPanics:       p.panics.Load(),
	}
}
