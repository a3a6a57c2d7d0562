package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleAndDrainRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var got [][]byte

	p, err := New(func(req []byte, respond func([]byte) error) {
		out := make([]byte, len(req))
		for i, b := range req {
			out[i] = b ^ 0xFF // bitwise-complement transform
		}
		if err := respond(out); err != nil {
			t.Errorf("respond: %v", err)
		}
	}, func(resp []byte) {
		mu.Lock()
		got = append(got, append([]byte(nil), resp...))
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	if err := p.Schedule([]byte{0x00, 0x0F}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		p.Drain(4096)
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d responses, want 1", len(got))
	}
	want := []byte{0xFF, 0xF0}
	if string(got[0]) != string(want) {
		t.Fatalf("response = %v, want %v", got[0], want)
	}
}

func TestDrainDropsOversizedResponse(t *testing.T) {
	p, err := New(func(req []byte, respond func([]byte) error) {
		_ = respond(make([]byte, 1024))
	}, func(resp []byte) {
		t.Fatal("respond callback should not fire for an oversized response")
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	if err := p.Schedule([]byte{1}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		p.Drain(64)
		if p.Stats().ResponsesDropped > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for oversized response to be dropped")
}

func TestWorkPanicIsRecovered(t *testing.T) {
	p, err := New(func(req []byte, respond func([]byte) error) {
		panic("boom")
	}, func(resp []byte) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	if err := p.Schedule([]byte{1}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if p.Stats().WorkPanics > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for WorkPanics to be recorded")
}

func TestScheduleReturnsErrNoSpaceWhenFull(t *testing.T) {
	p, err := NewWithCapacity(16, 16, func(req []byte, respond func([]byte) error) {}, func(resp []byte) {})
	if err != nil {
		t.Fatalf("NewWithCapacity: %v", err)
	}
	// Do not Start: the request ringbuffer is never drained, so repeated
	// Schedule calls eventually exhaust its capacity.
	var lastErr error
	for i := 0; i < 100; i++ {
		lastErr = p.Schedule([]byte{0, 0, 0})
		if lastErr != nil {
			break
		}
	}
	if lastErr != ErrNoSpace {
		t.Fatalf("Schedule eventually returned %v, want ErrNoSpace", lastErr)
	}
}

func TestStopIsIdempotentAndJoins(t *testing.T) {
	var started, finished atomic.Bool
	p, err := New(func(req []byte, respond func([]byte) error) {
		started.Store(true)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	}, func(resp []byte) {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Schedule([]byte{1}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for !started.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	p.Stop()
	if started.Load() && !finished.Load() {
		t.Fatal("Stop returned while a work call was still running")
	}
	p.Stop() // must not block or panic a second time
}
