// Package atom implements the per-event-port bidirectional transport
// between the UI thread and the audio thread: a coalescing staging slot
// for UI->DSP messages and a framed ringbuffer for DSP->UI messages.
package atom

import (
	"encoding/binary"
	"errors"
	"sync/atomic"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/kestrelaudio/lv2host/pkg/ringbuf"
)

// ErrTooLarge is returned by Post when the payload exceeds the staging
// buffer's capacity.
var ErrTooLarge = errors.New("atom: payload exceeds staging capacity")

// ErrNoSpace is returned by a Lossless channel's Post when its queue is
// full.
var ErrNoSpace = errors.New("atom: no space in lossless queue")

// Kind selects an Atom Channel's UI->DSP delivery semantics.
type Kind int

const (
	// Coalescing is the default: repeated posts before the audio thread
	// consumes coalesce to last-writer-wins, via a single staging slot
	// guarded by a release/acquire pending flag.
	Coalescing Kind = iota
	// Lossless queues every post (FIFO) and signals NoSpace instead of
	// overwriting when full; the host selects it for MIDI-capable event
	// ports, whose messages must not be dropped.
	Lossless
)

// Message is one inbound payload read from the channel's UI->DSP side.
type Message struct {
	Type uint32
	Body []byte
}

// Channel carries variable-size typed messages in both directions for
// one event port.
type Channel struct {
	kind Kind

	// Coalescing staging slot (UI -> DSP).
	pending   atomic.Bool
	staging   []byte
	stagingTy uint32

	// Lossless queue (UI -> DSP).
	lossless *queue.Queue

	// DSP -> UI framed ringbuffer.
	outbound *ringbuf.Ringbuffer
	dropped  atomic.Uint64

	stagingCap int
}

// losslessCapacity is the number of messages a Lossless channel holds
// before Post returns ErrNoSpace.
const losslessCapacity = 64

// New creates an Atom Channel. stagingCap bounds the Coalescing staging
// payload size; outboundCap is the DSP->UI ringbuffer's byte capacity
// (must be a power of two).
func New(kind Kind, stagingCap, outboundCap int) (*Channel, error) {
	rb, err := ringbuf.New(outboundCap)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		kind:       kind,
		staging:    make([]byte, stagingCap),
		stagingCap: stagingCap,
		outbound:   rb,
	}
	if kind == Lossless {
		c.lossless = queue.New(losslessCapacity)
	}
	return c, nil
}

// Post is called from the UI thread to send a message toward the audio
// thread. For a Coalescing channel, a post before the audio thread
// consumes the prior one overwrites it (last-writer-wins). For a
// Lossless channel, every post is queued and ErrNoSpace is returned if
// the queue already holds losslessCapacity messages or has been disposed.
func (c *Channel) Post(typ uint32, body []byte) error {
	if c.kind == Lossless {
		if len(body) > c.stagingCap {
			return ErrTooLarge
		}
		if c.lossless.Len() >= losslessCapacity {
			return ErrNoSpace
		}
		cp := make([]byte, len(body))
		copy(cp, body)
		if err := c.lossless.Put(Message{Type: typ, Body: cp}); err != nil {
			return ErrNoSpace
		}
		return nil
	}

	if len(body) > c.stagingCap {
		return ErrTooLarge
	}
	// Staging is the sole synchronization point: write payload and type
	// first, then publish with release ordering via the pending flag.
	// Reslice to full capacity before copying, not after — otherwise a
	// post longer than the previous one is silently truncated to the
	// previous post's length.
	c.staging = c.staging[:cap(c.staging)]
	n := copy(c.staging, body)
	c.staging = c.staging[:n]
	c.stagingTy = typ
	c.pending.Store(true)
	return nil
}

// TryConsume is called from the audio thread. If a message is pending
// (or queued, for Lossless), it is returned and the flag is cleared with
// acquire ordering (Coalescing) or the queue item is popped (Lossless).
// ok is false when nothing is available.
func (c *Channel) TryConsume() (msg Message, ok bool) {
	if c.kind == Lossless {
		if c.lossless.Len() == 0 {
			return Message{}, false
		}
		items, err := c.lossless.Get(1)
		if err != nil || len(items) == 0 {
			return Message{}, false
		}
		return items[0].(Message), true
	}

	if !c.pending.Load() {
		return Message{}, false
	}
	msg = Message{Type: c.stagingTy, Body: c.staging}
	c.pending.Store(false)
	return msg, true
}

// PostOutbound is called from the audio thread to enqueue a DSP->UI
// event. The record is framed as [type:u32][size:u32][body]. If it does
// not fit in the outbound ringbuffer it is dropped and counted — outbound
// UI messages are advisory per spec.
func (c *Channel) PostOutbound(typ uint32, body []byte) {
	frameLen := 8 + len(body)
	if c.outbound.WriteSpace() < frameLen {
		c.dropped.Add(1)
		return
	}
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], typ)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(body)))
	c.outbound.Write(hdr[:])
	c.outbound.Write(body)
}

// ReadOutbound is called from the UI thread. It reads and returns one
// complete event, or ok=false if none is available. peek-then-read
// ensures a full framed record is present before anything is consumed
// (no torn records).
func (c *Channel) ReadOutbound() (typ uint32, body []byte, ok bool) {
	var hdr [8]byte
	if c.outbound.Peek(hdr[:]) < 8 {
		return 0, nil, false
	}
	typ = binary.LittleEndian.Uint32(hdr[0:4])
	size := binary.LittleEndian.Uint32(hdr[4:8])
	if c.outbound.ReadSpace() < 8+int(size) {
		return 0, nil, false // full record not yet available
	}
	c.outbound.Skip(8)
	body = make([]byte, size)
	c.outbound.Read(body)
	return typ, body, true
}

// DroppedOutbound returns the count of DSP->UI events dropped because
// they did not fit in the outbound ringbuffer.
func (c *Channel) DroppedOutbound() uint64 {
	return c.dropped.Load()
}

// StagingPending reports whether an unread UI->DSP message is currently
// waiting: the pending flag for Coalescing, or a non-empty queue for
// Lossless. Used by the host's metrics layer; never consumes anything.
func (c *Channel) StagingPending() bool {
	if c.kind == Lossless {
		return c.lossless.Len() > 0
	}
	return c.pending.Load()
}
