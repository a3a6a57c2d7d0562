// Package ringbuf implements a single-producer/single-consumer byte FIFO
// with power-of-two capacity. It is the lock-free primitive shared by the
// atom channel and worker pump transports.
package ringbuf

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ErrBadCapacity is returned by New when capacity is not a power of two.
var ErrBadCapacity = errors.New("ringbuf: capacity must be a power of two")

// Ringbuffer is a fixed-capacity, wait-free byte FIFO. Exactly one
// goroutine may call the producer methods (Write, WriteSpace) and exactly
// one goroutine may call the consumer methods (Read, Peek, ReadSpace);
// the two may be different goroutines running concurrently.
//
// The write and read indices are monotonic counters padded onto separate
// cache lines so the producer and consumer never contend on the same
// cache line (false sharing).
type Ringbuffer struct {
	buf  []byte
	mask uint64

	_ cpu.CacheLinePad
	writeIdx atomic.Uint64
	_        cpu.CacheLinePad
	readIdx atomic.Uint64
	_       cpu.CacheLinePad
}

// New creates a ringbuffer of the given capacity, which must be a power
// of two. It returns ErrBadCapacity otherwise.
func New(capacity int) (*Ringbuffer, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrBadCapacity
	}
	return &Ringbuffer{
		buf:  make([]byte, capacity),
		mask: uint64(capacity - 1),
	}, nil
}

// Capacity returns the ringbuffer's fixed byte capacity.
func (r *Ringbuffer) Capacity() int {
	return len(r.buf)
}

// Reset clears both indices. Only safe when no producer or consumer is
// concurrently accessing the buffer.
func (r *Ringbuffer) Reset() {
	r.writeIdx.Store(0)
	r.readIdx.Store(0)
}

// ReadSpace returns the number of bytes currently available to read.
func (r *Ringbuffer) ReadSpace() int {
	w := r.writeIdx.Load()
	rd := r.readIdx.Load()
	return int(w - rd)
}

// WriteSpace returns the number of bytes currently available to write.
func (r *Ringbuffer) WriteSpace() int {
	return len(r.buf) - r.ReadSpace()
}

// Stats returns the raw monotonic write and read indices, for
// instrumentation; it never blocks and performs only atomic loads.
func (r *Ringbuffer) Stats() (writeIndex, readIndex uint64) {
	return r.writeIdx.Load(), r.readIdx.Load()
}

// Write copies up to len(p) bytes into the buffer and returns the number
// of bytes actually written. It never blocks: if the buffer cannot hold
// all of p, only the bytes that fit are written.
func (r *Ringbuffer) Write(p []byte) int {
	space := r.WriteSpace()
	n := len(p)
	if n > space {
		n = space
	}
	if n == 0 {
		return 0
	}

	w := r.writeIdx.Load()
	start := w & r.mask
	first := uint64(len(r.buf)) - start
	if first >= uint64(n) {
		copy(r.buf[start:start+uint64(n)], p[:n])
	} else {
		copy(r.buf[start:], p[:first])
		copy(r.buf[:uint64(n)-first], p[first:n])
	}

	r.writeIdx.Store(w + uint64(n))
	return n
}

// Peek copies up to len(p) bytes starting at the current read position
// into p without advancing the read index. It returns the number of
// bytes copied.
func (r *Ringbuffer) Peek(p []byte) int {
	available := r.ReadSpace()
	n := len(p)
	if n > available {
		n = available
	}
	if n == 0 {
		return 0
	}

	rd := r.readIdx.Load()
	start := rd & r.mask
	first := uint64(len(r.buf)) - start
	if first >= uint64(n) {
		copy(p[:n], r.buf[start:start+uint64(n)])
	} else {
		copy(p[:first], r.buf[start:])
		copy(p[first:n], r.buf[:uint64(n)-first])
	}
	return n
}

// Read copies up to len(p) bytes out of the buffer, advancing the read
// index by the number of bytes copied, which is returned.
func (r *Ringbuffer) Read(p []byte) int {
	n := r.Peek(p)
	if n == 0 {
		return 0
	}
	r.readIdx.Store(r.readIdx.Load() + uint64(n))
	return n
}

// Skip advances the read index by n bytes without copying, for callers
// that have already inspected the data via Peek. n is clamped to the
// currently available read space.
func (r *Ringbuffer) Skip(n int) int {
	available := r.ReadSpace()
	if n > available {
		n = available
	}
	if n <= 0 {
		return 0
	}
	r.readIdx.Store(r.readIdx.Load() + uint64(n))
	return n
}
